package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GenerationError is a terminal non-2xx from the analyze endpoint. It is
// only produced on the primary attempt; fallback polling swallows errors
// and retries.
type GenerationError struct {
	Detail string
}

func (e *GenerationError) Error() string {
	return "strategy generation failed: " + e.Detail
}

type ModelConfig struct {
	Model  string `json:"model"`
	APIURL string `json:"api_url"`
	APIKey string `json:"api_key"`
}

// Client talks to the analyze backend. The HTTP timeout is left to the
// caller's deadline: generation legitimately takes minutes.
type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(host string) *Client {
	return &Client{
		host:       host,
		httpClient: &http.Client{},
	}
}

// Config fetches the server-side model configuration.
func (c *Client) Config(ctx context.Context) (*ModelConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/config", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("config unavailable: %s", resp.Status)
	}

	var out ModelConfig
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

type analyzeRequest struct {
	TokenAddress string    `json:"token_address"`
	Messages     []Message `json:"messages"`
	ModelParams
	Stream bool `json:"stream"`
	N      int  `json:"n"`
}

// Analyze submits the session and returns the generated strategy text.
func (c *Client) Analyze(ctx context.Context, sess *Session) (string, error) {
	bydata, err := json.Marshal(&analyzeRequest{
		TokenAddress: sess.TokenAddress,
		Messages:     sess.Messages,
		ModelParams:  sess.Params,
		Stream:       false,
		N:            1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/analyze", bytes.NewReader(bydata))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{Detail: string(body)}
	}

	var out struct {
		Strategy string `json:"strategy"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode analyze response: %w", err)
	}
	if out.Strategy == "" {
		return "", &GenerationError{Detail: "empty strategy in response"}
	}

	return out.Strategy, nil
}
