package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const synthesisPrompt = `You are writing the opening briefing for a daily research note covering %s to %s.

Below are the topics scanned today with their top findings. Write 2-4 sentences
summarizing the most notable developments across all topics. Be specific and
concrete. Plain prose, no markdown headers, no bullet lists.

%s`

// Synthesizer produces the daily briefing paragraph from scan results.
type Synthesizer struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewSynthesizer constructs a briefing synthesizer. It shares the
// chat-completions surface with the thread client.
func NewSynthesizer(apiKey, baseURL, model string, opts ...Option) *Synthesizer {
	s := newSettings(opts...)
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultThreadBaseURL
	}
	return &Synthesizer{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		model:      strings.TrimSpace(model),
		httpClient: s.httpClient,
	}
}

// Briefing generates the daily briefing from a per-topic digest. The digest
// is plain text assembled by the pipeline, one section per topic.
func (s *Synthesizer) Briefing(ctx context.Context, digest, from, to string) (string, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return "", errors.New("synthesis: digest required")
	}
	if s.apiKey == "" {
		return "", errors.New("synthesis: api key required")
	}

	request := chatRequest{
		Model: s.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf(synthesisPrompt, from, to, digest),
		}},
	}

	endpoint, err := url.JoinPath(s.baseURL, "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("synthesis: build url: %w", err)
	}
	body, err := postJSON(ctx, s.httpClient, endpoint, s.apiKey, request, "synthesis")
	if err != nil {
		return "", err
	}

	var payload chatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("synthesis: decode response: %w", err)
	}
	if payload.Error != nil {
		return "", fmt.Errorf("synthesis: api error: %s", strings.TrimSpace(payload.Error.Message))
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("synthesis: empty choices")
	}
	briefing := strings.TrimSpace(payload.Choices[0].Message.Content)
	if briefing == "" {
		return "", errors.New("synthesis: empty content")
	}
	return briefing, nil
}
