package llm

import (
	"context"
	"time"
)

// ChatRole is the role of a message participant in a prompt.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// Message is one turn of a rendered prompt.
type Message struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Request is a single completion request against a provider.
type Request struct {
	Model       string        `json:"model"`
	Messages    []Message     `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	// Timeout is the per-call deadline. Exceeding it surfaces as a
	// MODEL_TIMEOUT error, never as a partial response.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Response is the full completion returned by a provider.
type Response struct {
	Content          string    `json:"content"`
	Model            string    `json:"model,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// Provider is the unified inference adapter interface. Implementations
// must honor ctx cancellation and the per-request timeout, and must map
// upstream failures to *types.Error MODEL_* codes via the constructors
// in this package.
type Provider interface {
	// Complete issues a synchronous completion request.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider's unique identifier.
	Name() string
}

// ApplyTimeout derives a context honoring the request's per-call
// deadline. The returned cancel func must always be called.
func ApplyTimeout(ctx context.Context, req *Request) (context.Context, context.CancelFunc) {
	if req != nil && req.Timeout > 0 {
		return context.WithTimeout(ctx, req.Timeout)
	}
	return context.WithCancel(ctx)
}
