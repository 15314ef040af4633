// MockProvider is the llm.Provider test double.
//
// It supports fixed responses, per-call scripting, and error injection,
// with builder-style configuration.
package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/types"
)

// Call records a single Complete invocation.
type Call struct {
	Request  *llm.Request
	Response *llm.Response
	Error    error
}

// MockProvider is a mock implementation of llm.Provider.
type MockProvider struct {
	mu sync.Mutex

	response  string
	err       error
	failFirst int
	delay     time.Duration

	completeFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)
	roleContent  map[string]string

	callCount int
	calls     []Call
}

// NewMockProvider creates a MockProvider that answers every call with a
// plausible multi-sentence section.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response: "The study used a within-subjects design with repeated measures. " +
			"Data were collected over a 14 day protocol from 48 participants.\n\n" +
			"All analyses were pre-registered before data collection began.",
		roleContent: map[string]string{},
	}
}

// WithResponse sets the fixed response content.
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithRoleResponse sets the response used when the request's system
// message mentions the given section name. Lets one provider serve
// several agents with distinct content.
func (m *MockProvider) WithRoleResponse(role types.Role, response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleContent[string(role)] = response
	return m
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailFirst makes the first n calls fail with err, then succeed.
func (m *MockProvider) WithFailFirst(n int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFirst = n
	m.err = err
	return m
}

// WithDelay adds a context-aware sleep before each response.
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithCompleteFunc installs a custom handler, overriding everything else.
func (m *MockProvider) WithCompleteFunc(fn func(ctx context.Context, req *llm.Request) (*llm.Response, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Complete implements llm.Provider.
func (m *MockProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.callCount++
	count := m.callCount
	fn := m.completeFunc
	delay := m.delay
	failing := m.err != nil && (m.failFirst == 0 || count <= m.failFirst)
	err := m.err
	content := m.contentFor(req)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return m.record(req, nil, ctx.Err())
		case <-time.After(delay):
		}
	}

	if fn != nil {
		resp, err := fn(ctx, req)
		return m.record(req, resp, err)
	}
	if failing {
		return m.record(req, nil, err)
	}

	resp := &llm.Response{
		Content:          content,
		Model:            req.Model,
		Provider:         "mock",
		PromptTokens:     10,
		CompletionTokens: 20,
		CreatedAt:        time.Now(),
	}
	return m.record(req, resp, nil)
}

// contentFor picks the scripted role response whose section name appears
// in the system message, falling back to the fixed response.
func (m *MockProvider) contentFor(req *llm.Request) string {
	for _, msg := range req.Messages {
		if msg.Role != llm.ChatRoleSystem {
			continue
		}
		for role, content := range m.roleContent {
			if strings.Contains(msg.Content, role) {
				return content
			}
		}
	}
	return m.response
}

func (m *MockProvider) record(req *llm.Request, resp *llm.Response, err error) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Request: req, Response: resp, Error: err})
	return resp, err
}

// CallCount returns the number of Complete invocations.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns a copy of the recorded calls.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call{}, m.calls...)
}

// LastCall returns the most recent call, or nil.
func (m *MockProvider) LastCall() *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears recorded calls and injected errors.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callCount = 0
	m.err = nil
	m.failFirst = 0
}

// NewErrorProvider creates a provider that always fails with err.
func NewErrorProvider(err error) *MockProvider {
	return NewMockProvider().WithError(err)
}

// NewFlakyProvider creates a provider that fails the first n calls with
// err, then answers with response.
func NewFlakyProvider(n int, err error, response string) *MockProvider {
	return NewMockProvider().WithResponse(response).WithFailFirst(n, err)
}
