package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SolarisQuests/documentanalysis/internal/extract"
)

type completionRequest struct {
	Model     string  `json:"model"`
	MaxTokens int     `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
}

func newCompletionServer(t *testing.T, content string, got *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestCorrectPageTrimsFirstChoice(t *testing.T) {
	var got completionRequest
	srv := newCompletionServer(t, "\n  {\"invoice\": \"42\"}  \n", &got)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	page := extract.PageText{Index: 3, Text: "invo1ce 42"}
	corrected, err := c.CorrectPage(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 3, corrected.Index)
	assert.Equal(t, `{"invoice": "42"}`, corrected.Text)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 1500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "fixes errors in OCR outputs")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, "invo1ce 42")
}

func TestCorrectPageServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.CorrectPage(context.Background(), extract.PageText{Index: 0, Text: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORRECTION_FAILED")
}

func TestCorrectPageNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)

	_, err := c.CorrectPage(context.Background(), extract.PageText{Index: 1, Text: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
