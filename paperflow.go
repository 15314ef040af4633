// Package paperflow provides a top-level convenience entry point for
// running a paper-writing session with minimal boilerplate.
//
// Usage:
//
//	import "github.com/avelkey/paperflow"
//
//	result, err := paperflow.Run(ctx, material,
//	    paperflow.WithOpenAICompatible("http://localhost:8080/v1", "", "llama-3.1-8b-instruct"))
//
// This is a thin wrapper around [coordinator.New]; use the coordinator
// package directly when you need per-role providers, custom retry
// policy, metrics, or telemetry.
package paperflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/avelkey/paperflow/agent"
	"github.com/avelkey/paperflow/coordinator"
	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/llm/openaicompat"
	"github.com/avelkey/paperflow/persistence"
	"github.com/avelkey/paperflow/prompt"
	"github.com/avelkey/paperflow/types"
)

type options struct {
	provider    llm.Provider
	providerErr error
	roles       []types.Role
	budget      int
	logger      *zap.Logger
	checker     coordinator.ConsistencyChecker
	transcript  persistence.TranscriptStore
}

// Option configures the coordinator created by [NewCoordinator].
type Option func(*options)

// WithProvider sets a pre-built inference provider.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithOpenAICompatible creates a provider for an OpenAI-compatible
// endpoint (llama.cpp server, vLLM, hosted APIs).
func WithOpenAICompatible(baseURL, apiKey, model string) Option {
	return func(o *options) {
		p, err := openaicompat.New(openaicompat.Config{BaseURL: baseURL, APIKey: apiKey, Model: model})
		o.provider, o.providerErr = p, err
	}
}

// WithExtendedRoles enables the literature and conclusion sections in
// addition to the methods/results/discussion core.
func WithExtendedRoles() Option {
	return func(o *options) { o.roles = types.ExtendedRoles() }
}

// WithRoundBudget caps coordination rounds per session.
func WithRoundBudget(n int) Option {
	return func(o *options) { o.budget = n }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithChecker replaces the default consistency checker.
func WithChecker(c coordinator.ConsistencyChecker) Option {
	return func(o *options) { o.checker = c }
}

// WithTranscript records accepted contributions to the given store.
func WithTranscript(s persistence.TranscriptStore) Option {
	return func(o *options) { o.transcript = s }
}

// NewCoordinator builds a ready-to-run coordinator with one agent per
// role, all sharing the configured provider and the built-in templates.
// A provider must be specified via [WithProvider] or
// [WithOpenAICompatible].
func NewCoordinator(opts ...Option) (*coordinator.Coordinator, error) {
	o := &options{roles: types.CoreRoles()}
	for _, opt := range opts {
		opt(o)
	}
	if o.providerErr != nil {
		return nil, o.providerErr
	}
	if o.provider == nil {
		return nil, fmt.Errorf("paperflow: an inference provider is required")
	}

	registry := prompt.DefaultRegistry()
	agents := make([]agent.SectionAgent, 0, len(o.roles))
	for _, role := range o.roles {
		a, err := agent.New(agent.Config{Role: role}, o.provider, registry, o.logger)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	return coordinator.New(agents, coordinator.Options{
		RoundBudget: o.budget,
		Checker:     o.checker,
		Transcript:  o.transcript,
	}, o.logger)
}

// Run builds a coordinator from opts and runs one session over material.
func Run(ctx context.Context, material *types.ResearchMaterial, opts ...Option) (*coordinator.Result, error) {
	c, err := NewCoordinator(opts...)
	if err != nil {
		return nil, err
	}
	return c.RunSession(ctx, material)
}
