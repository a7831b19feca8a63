package strategy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analyze", r.URL.Path)

		var in struct {
			TokenAddress string    `json:"token_address"`
			Messages     []Message `json:"messages"`
			Stream       bool      `json:"stream"`
			N            int       `json:"n"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "TOKEN", in.TokenAddress)
		assert.Len(t, in.Messages, 2)
		assert.False(t, in.Stream)
		assert.Equal(t, 1, in.N)

		json.NewEncoder(w).Encode(map[string]string{"status": "success", "strategy": "scale in below 0.002"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	got, err := c.Analyze(context.Background(), NewStrategySession("TOKEN", DefaultModelParams()))
	require.NoError(t, err)
	assert.Equal(t, "scale in below 0.002", got)
}

func TestAnalyzeNon200IsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "API key not configured"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Analyze(context.Background(), NewStrategySession("TOKEN", DefaultModelParams()))

	var generation *GenerationError
	require.ErrorAs(t, err, &generation)
	assert.Contains(t, generation.Detail, "API key not configured")
}

func TestAnalyzeEmptyStrategyIsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "strategy": ""})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Analyze(context.Background(), NewStrategySession("TOKEN", DefaultModelParams()))

	var generation *GenerationError
	require.ErrorAs(t, err, &generation)
}

func TestConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/config", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"model": "gpt-4o", "api_url": "https://api.openai.com/v1", "api_key": "sk-test"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	cfg, err := c.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
}
