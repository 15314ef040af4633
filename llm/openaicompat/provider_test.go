package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/types"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Provider) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := New(Config{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "test-model"})
	require.NoError(t, err)
	return srv, p
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestCompleteSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "the methods section"}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 34},
		})
	})

	resp, err := p.Complete(context.Background(), &llm.Request{
		Messages: []llm.Message{
			{Role: llm.ChatRoleSystem, Content: "sys"},
			{Role: llm.ChatRoleUser, Content: "write"},
		},
		MaxTokens:   256,
		Temperature: 0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "the methods section", resp.Content)
	assert.Equal(t, 12, resp.PromptTokens)
	assert.Equal(t, 34, resp.CompletionTokens)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	// The config model fills in when the request does not name one.
	assert.Equal(t, "test-model", gotBody["model"])
}

func TestCompleteRateLimited(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.Complete(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelRateLimited, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestCompleteGatewayTimeout(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	_, err := p.Complete(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelTimeout, types.GetErrorCode(err))
}

func TestCompleteDeadlineExceeded(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	_, err := p.Complete(context.Background(), &llm.Request{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelTimeout, types.GetErrorCode(err))
}

func TestCompleteServerError(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	_, err := p.Complete(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelInvalidResponse, types.GetErrorCode(err))
}

func TestCompleteMalformedBody(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := p.Complete(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelInvalidResponse, types.GetErrorCode(err))
}

func TestCompleteEmptyChoices(t *testing.T) {
	_, p := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := p.Complete(context.Background(), &llm.Request{})
	require.Error(t, err)
	assert.Equal(t, types.ErrModelInvalidResponse, types.GetErrorCode(err))
}
