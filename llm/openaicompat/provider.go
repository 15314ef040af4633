// Package openaicompat provides a minimal client for OpenAI-compatible
// chat completion endpoints (llama.cpp server, vLLM, LM Studio and the
// hosted APIs all speak this dialect). It exists so the CLI has a real
// provider to wire in; the orchestration core only sees llm.Provider.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avelkey/paperflow/llm"
)

// Config configures the client.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/v1".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model is the default model when the request does not name one.
	Model string
	// HTTPClient overrides the default client (used in tests).
	HTTPClient *http.Client
}

// Provider implements llm.Provider over the OpenAI chat completions API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// New creates a Provider from cfg.
func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaicompat: base URL is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "openai-compatible" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete implements llm.Provider. Upstream failures are mapped onto
// the MODEL_* error taxonomy: 429 to rate-limited, deadline hits to
// timeout, unparseable or empty bodies to invalid-response.
func (p *Provider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	ctx, cancel := llm.ApplyTimeout(ctx, req)
	defer cancel()

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	body := chatRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, llm.NewTimeoutError(p.Name(), err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, llm.NewInvalidResponseError(p.Name(), "transport failure").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, llm.NewInvalidResponseError(p.Name(), "read response body").WithCause(err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, llm.NewRateLimitedError(p.Name(), fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, llm.NewTimeoutError(p.Name(), fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, llm.NewInvalidResponseError(p.Name(),
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 256)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, llm.NewInvalidResponseError(p.Name(), "malformed response body").WithCause(err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, llm.NewInvalidResponseError(p.Name(), "response contains no completion")
	}

	return &llm.Response{
		Content:          parsed.Choices[0].Message.Content,
		Model:            parsed.Model,
		Provider:         p.Name(),
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		CreatedAt:        time.Now(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
