package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"trawl/internal/items"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// citationEntry tolerates both the bare-string and object forms the
// citations list has been observed to carry.
type citationEntry struct {
	URL string
}

func (c *citationEntry) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.URL = asString
		return nil
	}
	var asObject struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &asObject); err == nil {
		c.URL = asObject.URL
		return nil
	}
	// Unknown shape: ignore the entry rather than failing the response.
	c.URL = ""
	return nil
}

type responsesPayload struct {
	Citations []citationEntry `json:"citations"`
	Output    []outputItem    `json:"output"`
	Choices   []chatChoice    `json:"choices"`
	Error     *apiError       `json:"error"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []annotation `json:"annotations"`
}

type annotation struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

var itemsBlockPattern = regexp.MustCompile(`\{[\s\S]*"items"[\s\S]*\}`)

func parsePostResponse(body []byte) (PostResult, error) {
	var empty PostResult
	var payload responsesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return empty, fmt.Errorf("post search: decode response: %w", err)
	}
	if payload.Error != nil {
		return empty, fmt.Errorf("post search: api error: %s", strings.TrimSpace(payload.Error.Message))
	}

	result := PostResult{
		Citations: extractCitationURLs(payload),
		Items:     parseItemsBlock(extractOutputText(payload)),
	}
	return result, nil
}

// extractCitationURLs collects real source URLs from the response metadata:
// the top-level citations list and url_citation annotations. The model's
// output text is intentionally never scanned, it may contain fabricated URLs.
func extractCitationURLs(payload responsesPayload) []string {
	seen := make(map[string]struct{})
	var urls []string
	add := func(rawURL string) {
		if rawURL == "" || !strings.Contains(rawURL, "/status/") {
			return
		}
		if _, dup := seen[rawURL]; dup {
			return
		}
		seen[rawURL] = struct{}{}
		urls = append(urls, rawURL)
	}

	for _, cit := range payload.Citations {
		add(cit.URL)
	}
	for _, item := range payload.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			for _, ann := range content.Annotations {
				add(ann.URL)
			}
		}
	}
	return urls
}

// extractOutputText finds the model's text output across the response shapes
// providers have shipped: message content items, bare text items, and the
// older chat-completions choices form.
func extractOutputText(payload responsesPayload) string {
	for _, item := range payload.Output {
		if item.Type == "message" {
			for _, content := range item.Content {
				if content.Type == "output_text" && content.Text != "" {
					return content.Text
				}
			}
			continue
		}
		if item.Text != "" {
			return item.Text
		}
	}
	for _, choice := range payload.Choices {
		if choice.Message.Content != "" {
			return choice.Message.Content
		}
	}
	return ""
}

// parseItemsBlock extracts the {"items": [...]} JSON object from model
// output that may be wrapped in prose or code fences. Anything unparseable
// yields no items rather than an error.
func parseItemsBlock(text string) []items.Raw {
	if text == "" {
		return nil
	}
	block := itemsBlockPattern.FindString(text)
	if block == "" {
		return nil
	}
	var parsed struct {
		Items []items.Raw `json:"items"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil
	}
	return parsed.Items
}
