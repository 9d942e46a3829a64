package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"trawl/internal/items"
)

const defaultThreadBaseURL = "https://api.openai.com/v1"

const threadSearchPrompt = `Search discussion forums for substantive threads about: %s

Focus on threads from %s to %s. Find %d-%d high-quality, relevant threads.

IMPORTANT: Return ONLY valid JSON in this exact format, no other text:

{
  "items": [
    {
      "title": "Thread title",
      "url": "https://www.reddit.com/r/subreddit/comments/...",
      "subreddit": "subreddit name without r/ prefix",
      "date": "YYYY-MM-DD or null if unknown",
      "engagement": {"score": 450, "num_comments": 120},
      "why_relevant": "Brief explanation of relevance",
      "relevance": 0.85
    }
  ]
}

Rules:
- url MUST be the real thread URL from your search results
- relevance is 0.0 to 1.0 (1.0 = highly relevant)
- engagement can be null if unknown
- Prefer threads with substantive discussion, not link dumps`

// ThreadClient searches discussion forums through a chat-completions API
// with a web-search tool.
type ThreadClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewThreadClient constructs a thread-search client.
func NewThreadClient(apiKey, baseURL, model string, opts ...Option) *ThreadClient {
	s := newSettings(opts...)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultThreadBaseURL
	}
	return &ThreadClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		model:      strings.TrimSpace(model),
		httpClient: s.httpClient,
	}
}

type chatRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	WebSearchOptions map[string]any `json:"web_search_options,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error"`
}

// Search runs one forum-thread search for a topic query over a date window.
func (c *ThreadClient) Search(ctx context.Context, query, from, to, depth string) ([]items.Raw, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("thread search: query required")
	}
	if c.apiKey == "" {
		return nil, errors.New("thread search: api key required")
	}

	bounds := rangeFor(depth)
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf(threadSearchPrompt, query, from, to, bounds.min, bounds.max),
		}},
		WebSearchOptions: map[string]any{},
	}

	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("thread search: build url: %w", err)
	}
	body, err := postJSON(ctx, c.httpClient, endpoint, c.apiKey, request, "thread search")
	if err != nil {
		return nil, err
	}

	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("thread search: decode response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("thread search: api error: %s", strings.TrimSpace(payload.Error.Message))
	}
	if len(payload.Choices) == 0 {
		return nil, nil
	}
	return parseItemsBlock(payload.Choices[0].Message.Content), nil
}
