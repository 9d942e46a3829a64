package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"trawl/internal/items"
)

const defaultPostBaseURL = "https://api.x.ai/v1"

// postSearchPrompt instructs the model to return a strict JSON payload. The
// URL rule is belt-and-suspenders: fabricated status IDs are repaired against
// the API citations afterwards regardless.
const postSearchPrompt = `You have access to real-time post data. Search for posts about: %s

Focus on posts from %s to %s. Find %d-%d high-quality, relevant posts.

IMPORTANT RULES:
1. For EACH post, include an inline citation link so the source can be traced.
2. Return ONLY valid JSON in the exact format below, no other text.
3. The url for each item MUST be the real post URL from your search results. Do NOT fabricate or guess status IDs.

{
  "items": [
    {
      "text": "Post text content (truncated if long)",
      "url": "https://x.com/user/status/...",
      "author_handle": "username",
      "date": "YYYY-MM-DD or null if unknown",
      "is_reply": false,
      "engagement": {"likes": 100, "reposts": 25, "replies": 15, "quotes": 5},
      "why_relevant": "Brief explanation of relevance",
      "relevance": 0.85
    }
  ]
}

Rules:
- relevance is 0.0 to 1.0 (1.0 = highly relevant)
- date must be YYYY-MM-DD format or null
- engagement can be null if unknown
- Prefer posts with substantive content, not just links`

// PostClient searches live posts through a Responses-style API.
type PostClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewPostClient constructs a post-search client.
func NewPostClient(apiKey, baseURL, model string, opts ...Option) *PostClient {
	s := newSettings(opts...)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultPostBaseURL
	}
	return &PostClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		model:      strings.TrimSpace(model),
		httpClient: s.httpClient,
	}
}

// PostResult carries parsed model items together with the citation URLs the
// API itself reported. Only the citation URLs are trustworthy.
type PostResult struct {
	Items     []items.Raw
	Citations []string
}

type responsesRequest struct {
	Model string           `json:"model"`
	Tools []map[string]any `json:"tools"`
	Input []chatMessage    `json:"input"`
}

// Search runs one live post search for a topic query over a date window.
func (c *PostClient) Search(ctx context.Context, query, from, to, depth string) (PostResult, error) {
	var empty PostResult
	query = strings.TrimSpace(query)
	if query == "" {
		return empty, errors.New("post search: query required")
	}
	if c.apiKey == "" {
		return empty, errors.New("post search: api key required")
	}

	bounds := rangeFor(depth)
	tool := map[string]any{"type": "x_search"}
	if from != "" || to != "" {
		params := map[string]any{}
		if from != "" {
			params["from_date"] = from
		}
		if to != "" {
			params["to_date"] = to
		}
		tool["x_search"] = params
	}
	request := responsesRequest{
		Model: c.model,
		Tools: []map[string]any{tool},
		Input: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf(postSearchPrompt, query, from, to, bounds.min, bounds.max),
		}},
	}

	endpoint, err := url.JoinPath(c.baseURL, "/responses")
	if err != nil {
		return empty, fmt.Errorf("post search: build url: %w", err)
	}
	body, err := postJSON(ctx, c.httpClient, endpoint, c.apiKey, request, "post search")
	if err != nil {
		return empty, err
	}
	return parsePostResponse(body)
}
