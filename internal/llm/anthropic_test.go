package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsSystemAndUserPrompt(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","stop_reason":"end_turn",
			"content":[{"type":"text","text":"Title: Lunch\n"},{"type":"text","text":"Duration: 1"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "sk-test", APIURL: srv.URL, Model: "test-model", MaxTokens: 64})
	out, err := c.Complete(context.Background(), "system text", "lunch tomorrow")
	require.NoError(t, err)

	assert.Equal(t, "Title: Lunch\nDuration: 1", out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	assert.Equal(t, "system text", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, apiMessage{Role: "user", Content: "lunch tomorrow"}, got.Messages[0])
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	c := NewAnthropicClient(AnthropicConfig{})
	_, err := c.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCompleteStructuredAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"},"request_id":"req_456"}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "bad", APIURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "authentication_error")
	assert.Contains(t, err.Error(), "request_id=req_456")
}

func TestFormatAPIErrorUnstructured(t *testing.T) {
	err := formatAPIError(502, []byte("upstream timeout\n"))
	require.EqualError(t, err, "API error (status 502): upstream timeout")
}

func TestCompleteEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[],"stop_reason":"max_tokens"}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "k", APIURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestCompleterFunc(t *testing.T) {
	var c Completer = CompleterFunc(func(_ context.Context, system, user string) (string, error) {
		return system + "|" + user, nil
	})
	out, err := c.Complete(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a|b", out)
}
