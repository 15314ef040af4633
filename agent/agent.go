// Package agent implements the role-specialized section agents. An
// agent wraps exactly one inference call per invocation: it renders its
// role's prompt from a session snapshot, calls the provider, and wraps
// the text as a draft contribution. Agents never retry and never write
// to the context store; both are coordinator responsibilities.
package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/prompt"
	"github.com/avelkey/paperflow/session"
	"github.com/avelkey/paperflow/types"
)

// SectionAgent produces and revises one paper section.
type SectionAgent interface {
	// Role returns the section this agent is responsible for.
	Role() types.Role

	// Dependencies returns the roles whose accepted contributions must
	// be present in any snapshot passed to Propose or Revise.
	Dependencies() []types.Role

	// Propose drafts the section for the given round.
	Propose(ctx context.Context, snap *session.Snapshot, round int) (*types.Contribution, error)

	// Revise produces a replacement draft for a prior contribution,
	// steered by coordinator feedback from consistency checking.
	Revise(ctx context.Context, snap *session.Snapshot, prior *types.Contribution, feedback string) (*types.Contribution, error)
}

// Config configures a section agent.
type Config struct {
	Role        types.Role
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout is the per-call inference deadline.
	Timeout time.Duration
}

type sectionAgent struct {
	cfg       Config
	provider  llm.Provider
	registry  *prompt.Registry
	estimator *Estimator
	logger    *zap.Logger
}

// New creates a section agent for cfg.Role. The registry must hold a
// template for the role.
func New(cfg Config, provider llm.Provider, registry *prompt.Registry, logger *zap.Logger) (SectionAgent, error) {
	if !cfg.Role.Valid() {
		return nil, fmt.Errorf("agent: unknown role %q", cfg.Role)
	}
	if provider == nil {
		return nil, fmt.Errorf("agent: provider is required")
	}
	if registry == nil || !registry.Has(cfg.Role) {
		return nil, types.NewError(types.ErrTemplate,
			fmt.Sprintf("no template for role %q", cfg.Role)).WithRole(cfg.Role)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &sectionAgent{
		cfg:       cfg,
		provider:  provider,
		registry:  registry,
		estimator: NewEstimator(),
		logger: logger.With(
			zap.String("component", "agent"),
			zap.String("role", string(cfg.Role)),
		),
	}, nil
}

func (a *sectionAgent) Role() types.Role { return a.cfg.Role }
func (a *sectionAgent) Dependencies() []types.Role { return a.cfg.Role.Dependencies() }

// Propose implements SectionAgent.
func (a *sectionAgent) Propose(ctx context.Context, snap *session.Snapshot, round int) (*types.Contribution, error) {
	task := fmt.Sprintf("Write the %s section for the research paper.", a.cfg.Role)
	return a.generate(ctx, snap, round, task, false)
}

// Revise implements SectionAgent.
func (a *sectionAgent) Revise(ctx context.Context, snap *session.Snapshot, prior *types.Contribution, feedback string) (*types.Contribution, error) {
	if prior == nil {
		return nil, fmt.Errorf("agent: revise requires a prior contribution")
	}
	task := fmt.Sprintf(
		"Revise your previous %s section. Reviewer feedback:\n%s\n\nPrevious draft:\n%s",
		a.cfg.Role, feedback, prior.Text,
	)
	return a.generate(ctx, snap, prior.Round+1, task, true)
}

func (a *sectionAgent) generate(ctx context.Context, snap *session.Snapshot, round int, task string, revision bool) (*types.Contribution, error) {
	if err := a.checkDependencies(snap); err != nil {
		return nil, err
	}

	slots := map[string]string{
		"section":        string(a.cfg.Role),
		"instructions":   prompt.SectionInstructions(a.cfg.Role),
		"topic":          snap.Facts().Topic,
		"facts":          snap.Facts().Render(),
		"prior_sections": snap.PriorSections(),
		"task":           task,
		"round":          strconv.Itoa(round),
	}
	messages, err := a.registry.Render(a.cfg.Role, slots)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := a.provider.Complete(ctx, &llm.Request{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Timeout:     a.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil, llm.NewInvalidResponseError(a.provider.Name(), "empty completion").
			WithRole(a.cfg.Role)
	}

	c := types.NewContribution(a.cfg.Role, round, text)
	c.References = a.Dependencies()
	c.Claims = ExtractClaims(text)
	c.Completeness = a.estimator.Score(text, a.cfg.MaxTokens)
	c.Revision = revision

	a.logger.Debug("section drafted",
		zap.Int("round", round),
		zap.Bool("revision", revision),
		zap.Float64("completeness", c.Completeness),
		zap.Duration("latency", time.Since(start)),
	)
	return c, nil
}

// checkDependencies enforces the dispatch precondition. A violation is a
// coordinator scheduling bug, not a retryable condition.
func (a *sectionAgent) checkDependencies(snap *session.Snapshot) error {
	for _, dep := range a.Dependencies() {
		if !snap.HasAccepted(dep) {
			return types.NewError(types.ErrDependencyNotReady,
				fmt.Sprintf("role %q dispatched before dependency %q was accepted", a.cfg.Role, dep)).
				WithRole(a.cfg.Role)
		}
	}
	return nil
}
