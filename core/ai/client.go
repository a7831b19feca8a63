// Package ai calls an OpenAI-compatible chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	TopP             float64   `json:"top_p,omitempty"`
	FrequencyPenalty float64   `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64   `json:"presence_penalty,omitempty"`
	Stream           bool      `json:"stream"`
	N                int       `json:"n,omitempty"`
}

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient normalizes apiURL to end in /v1. Generation can take
// minutes, hence the long transport timeout; callers bound the wait with
// their own context deadline.
func NewClient(apiURL, apiKey string) *Client {
	base := strings.TrimRight(apiURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return &Client{
		apiURL:     base,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 600 * time.Second},
	}
}

// ChatCompletion returns the first choice's message content.
func (c *Client) ChatCompletion(ctx context.Context, in ChatRequest) (string, error) {
	bydata, err := json.Marshal(&in)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(bydata))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai api error: %s", string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("unexpected ai response format: %s", string(body))
	}

	return out.Choices[0].Message.Content, nil
}
