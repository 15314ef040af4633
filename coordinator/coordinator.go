// Package coordinator drives the multi-round writing protocol: it
// decides which roles run each round, dispatches agent calls, merges
// drafts into the context store, applies retry and degradation policy
// for model failures, detects convergence or budget exhaustion, and
// assembles the final document.
package coordinator

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avelkey/paperflow/agent"
	"github.com/avelkey/paperflow/extract"
	"github.com/avelkey/paperflow/internal/metrics"
	"github.com/avelkey/paperflow/llm/retry"
	"github.com/avelkey/paperflow/persistence"
	"github.com/avelkey/paperflow/session"
	"github.com/avelkey/paperflow/types"
)

// Options configures a Coordinator.
type Options struct {
	// RoundBudget caps coordination rounds per session. Defaults to 3.
	RoundBudget int
	// RetryPolicy governs inference retries. Nil selects the default.
	RetryPolicy *retry.Policy
	// Checker detects cross-section contradictions. Nil selects the
	// NumericCoverageChecker.
	Checker ConsistencyChecker
	// Transcript, when set, records every accepted contribution.
	Transcript persistence.TranscriptStore
	// Metrics, when set, records session-level Prometheus metrics.
	Metrics *metrics.Collector
}

// Coordinator owns the session protocol. One coordinator may run many
// sessions; each session gets its own context store and state, so
// independent sessions are safe to run in parallel.
type Coordinator struct {
	agents     map[types.Role]agent.SectionAgent
	roles      []types.Role
	budget     int
	extractor  *extract.Extractor
	retryer    *retry.Retryer
	checker    ConsistencyChecker
	transcript persistence.TranscriptStore
	collector  *metrics.Collector
	tracer     trace.Tracer
	logger     *zap.Logger
}

// Result is the terminal outcome of a session.
type Result struct {
	SessionID string `json:"session_id"`
	// Document is the assembled paper: accepted sections concatenated
	// in document order. Best-effort when Converged is false.
	Document   string `json:"document"`
	Converged  bool   `json:"converged"`
	RoundsUsed int    `json:"rounds_used"`
	// Degraded lists roles whose contribution is an unavailable
	// placeholder after retry exhaustion.
	Degraded []types.Role `json:"degraded,omitempty"`
}

// New creates a Coordinator over the given agents. Every dependency an
// agent declares must itself be covered by an agent, otherwise that
// agent could never be dispatched.
func New(agents []agent.SectionAgent, opts Options, logger *zap.Logger) (*Coordinator, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("coordinator: at least one agent is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byRole := make(map[types.Role]agent.SectionAgent, len(agents))
	roles := make([]types.Role, 0, len(agents))
	for _, a := range agents {
		role := a.Role()
		if _, dup := byRole[role]; dup {
			return nil, fmt.Errorf("coordinator: duplicate agent for role %q", role)
		}
		byRole[role] = a
		roles = append(roles, role)
	}
	for _, a := range agents {
		for _, dep := range a.Dependencies() {
			if _, ok := byRole[dep]; !ok {
				return nil, fmt.Errorf("coordinator: role %q depends on %q, which has no agent", a.Role(), dep)
			}
		}
	}

	budget := opts.RoundBudget
	if budget <= 0 {
		budget = 3
	}
	checker := opts.Checker
	if checker == nil {
		checker = NumericCoverageChecker{}
	}

	return &Coordinator{
		agents:     byRole,
		roles:      types.DocumentOrder(roles),
		budget:     budget,
		extractor:  extract.New(logger),
		retryer:    retry.New(opts.RetryPolicy, logger),
		checker:    checker,
		transcript: opts.Transcript,
		collector:  opts.Metrics,
		tracer:     otel.Tracer("github.com/avelkey/paperflow/coordinator"),
		logger:     logger.With(zap.String("component", "coordinator")),
	}, nil
}

// RunSession runs a complete session over the given material.
func (c *Coordinator) RunSession(ctx context.Context, material *types.ResearchMaterial) (*Result, error) {
	return c.run(ctx, material, nil)
}

// ResumeSession replays a prior transcript into a fresh context store
// before running, so rounds accepted before a crash are not re-executed.
func (c *Coordinator) ResumeSession(ctx context.Context, material *types.ResearchMaterial, transcript []persistence.Entry) (*Result, error) {
	return c.run(ctx, material, transcript)
}

func (c *Coordinator) run(ctx context.Context, material *types.ResearchMaterial, replayed []persistence.Entry) (_ *Result, err error) {
	ctx, span := c.tracer.Start(ctx, "paperflow.session")
	defer span.End()

	state := newSessionState(c.budget)

	facts, err := c.extractor.Extract(material)
	if err != nil {
		return c.fail(span, state, PhaseInit, err)
	}
	store := session.NewStore(facts)

	for _, contrib := range persistence.Replay(replayed) {
		if _, ok := c.agents[contrib.Role]; !ok {
			continue
		}
		if contrib.Round > state.round {
			state.round = contrib.Round
		}
		if err := store.Accept(contrib); err != nil {
			return c.fail(span, state, PhaseInit, err)
		}
		state.seq++
		if contrib.Unavailable {
			state.degraded[contrib.Role] = true
		}
	}

	c.logger.Info("session started",
		zap.String("session_id", store.ID()),
		zap.Int("round_budget", state.budget),
		zap.Int("replayed_rounds", state.round),
	)
	span.SetAttributes(attribute.String("session.id", store.ID()))

	// A fully-replayed transcript may already be convergent.
	if len(replayed) > 0 && c.allAccepted(store) {
		if c.flagConflicts(state, store.Snapshot(state.round)) == 0 {
			state.converged = true
			state.phase = PhaseConverged
			return c.finalize(span, store, state), nil
		}
	}

	state.phase = PhaseRoundPending
	for {
		switch state.phase {
		case PhaseRoundPending:
			if state.round >= state.budget {
				state.phase = PhaseExhausted
				continue
			}
			state.phase = PhaseDispatching

		case PhaseDispatching:
			if err := c.dispatchRound(ctx, store, state, state.round+1); err != nil {
				return c.fail(span, state, PhaseDispatching, err)
			}
			state.phase = PhaseMerging

		case PhaseMerging:
			round := state.round + 1
			c.flagConflicts(state, store.Snapshot(round))
			state.round = round
			if len(state.needsRevision) == 0 && c.allAccepted(store) {
				state.converged = true
				state.phase = PhaseConverged
			} else {
				state.phase = PhaseRoundPending
			}

		case PhaseConverged, PhaseExhausted:
			return c.finalize(span, store, state), nil
		}
	}
}

// dispatchRound runs one round as a sequence of waves. Each wave holds
// the dependency-independent roles that became eligible, executed
// concurrently; the coordinator merges a wave's drafts into the store
// before computing the next wave, so downstream roles see upstream
// drafts from the same round. A wave aborted by cancellation is
// discarded wholesale; its drafts are never appended.
//
// The revision target is recomputed per wave: when an accepted upstream
// revision flags its dependents, they re-run in a later wave of the
// same round against the revised text. Each role runs at most once per
// round, so the wave loop always terminates.
func (c *Coordinator) dispatchRound(ctx context.Context, store *session.Store, state *sessionState, round int) error {
	ctx, span := c.tracer.Start(ctx, "paperflow.round",
		trace.WithAttributes(attribute.Int("round", round)))
	defer span.End()

	called := make(map[types.Role]bool)

	for {
		snap := store.Snapshot(round)
		revTarget, feedback, hasRevision := state.revisionTarget(called)
		wave := c.eligibleWave(snap, store, called, revTarget, hasRevision)
		if len(wave) == 0 {
			return nil
		}

		results := make([]*types.Contribution, len(wave))
		g, gctx := errgroup.WithContext(ctx)
		for i, role := range wave {
			called[role] = true
			var prior *types.Contribution
			if hasRevision && role == revTarget {
				prior, _ = store.Active(role)
			}
			g.Go(func() error {
				contrib, err := c.callRole(gctx, role, snap, round, prior, feedback)
				if err != nil {
					return err
				}
				results[i] = contrib
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// Single-writer merge of the completed wave.
		for _, contrib := range results {
			if err := c.merge(ctx, store, state, contrib, round); err != nil {
				return err
			}
		}
	}
}

// eligibleWave returns the roles runnable right now, in document order:
// dependency-satisfied roles without an accepted contribution, plus the
// round's revision target. One call per role per round.
func (c *Coordinator) eligibleWave(snap *session.Snapshot, store *session.Store, called map[types.Role]bool, revTarget types.Role, hasRevision bool) []types.Role {
	var wave []types.Role
	for _, role := range c.roles {
		if called[role] {
			continue
		}
		_, accepted := store.Active(role)
		isRevision := hasRevision && role == revTarget
		if accepted && !isRevision {
			continue
		}
		if !c.depsSatisfied(role, snap) {
			continue
		}
		wave = append(wave, role)
	}
	return wave
}

func (c *Coordinator) depsSatisfied(role types.Role, snap *session.Snapshot) bool {
	for _, dep := range c.agents[role].Dependencies() {
		if !snap.HasAccepted(dep) {
			return false
		}
	}
	return true
}

// callRole invokes one agent with the coordinator's retry policy. When
// retries are exhausted on a model error, the role degrades to an
// unavailable placeholder instead of failing the session. Template and
// scheduling errors are fatal and propagate.
func (c *Coordinator) callRole(ctx context.Context, role types.Role, snap *session.Snapshot, round int, prior *types.Contribution, feedback string) (*types.Contribution, error) {
	a := c.agents[role]
	attempts := 0

	contrib, err := retry.Do(ctx, c.retryer, func(ctx context.Context) (*types.Contribution, error) {
		attempts++
		if attempts > 1 {
			c.collector.Retry(string(role))
		}
		if prior != nil {
			return a.Revise(ctx, snap, prior, feedback)
		}
		return a.Propose(ctx, snap, round)
	})
	if err != nil {
		code := types.GetErrorCode(err)
		if code == types.ErrTemplate || code == types.ErrDependencyNotReady {
			return nil, err
		}
		if !types.IsModelError(err) {
			return nil, err
		}
		c.logger.Warn("degrading role after retry exhaustion",
			zap.String("role", string(role)),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		c.collector.Degraded(string(role))
		contrib = c.placeholder(role, round, prior != nil)
	}

	contrib.Round = round
	contrib.Attempts = attempts
	return contrib, nil
}

func (c *Coordinator) placeholder(role types.Role, round int, revision bool) *types.Contribution {
	contrib := types.NewContribution(role, round,
		fmt.Sprintf("[%s section unavailable after repeated model failures]", role))
	contrib.References = role.Dependencies()
	contrib.Unavailable = true
	contrib.Revision = revision
	return contrib
}

// merge accepts one contribution into the store, records it in the
// transcript, and maintains the revision bookkeeping: an accepted
// revision clears its own flag and flags accepted dependents so they
// are re-run against the revised text in a later round.
func (c *Coordinator) merge(ctx context.Context, store *session.Store, state *sessionState, contrib *types.Contribution, round int) error {
	if err := store.Accept(contrib); err != nil {
		return err
	}
	state.seq++
	if c.transcript != nil {
		entry := persistence.EntryFromContribution(store.ID(), state.seq, contrib)
		if err := c.transcript.Append(ctx, entry); err != nil {
			c.logger.Warn("transcript append failed",
				zap.String("role", string(contrib.Role)),
				zap.Error(err),
			)
		}
	}
	if contrib.Unavailable {
		state.degraded[contrib.Role] = true
	} else {
		delete(state.degraded, contrib.Role)
	}

	if contrib.Revision {
		delete(state.needsRevision, contrib.Role)
		for _, dependent := range c.roles {
			if !dependent.DependsOn(contrib.Role) {
				continue
			}
			if _, ok := store.Active(dependent); !ok {
				continue
			}
			state.needsRevision[dependent] = fmt.Sprintf(
				"the %s section was revised in round %d; bring your section in line with the revised text",
				contrib.Role, round,
			)
		}
	}

	c.logger.Info("contribution merged",
		zap.String("role", string(contrib.Role)),
		zap.Int("round", round),
		zap.Bool("revision", contrib.Revision),
		zap.Bool("unavailable", contrib.Unavailable),
		zap.Float64("completeness", contrib.Completeness),
	)
	return nil
}

// flagConflicts runs the consistency checker and records revision flags
// for any conflicts not already flagged. Returns the number of flags set.
func (c *Coordinator) flagConflicts(state *sessionState, snap *session.Snapshot) int {
	flagged := 0
	for _, conflict := range c.checker.Check(snap) {
		if _, already := state.needsRevision[conflict.Role]; already {
			continue
		}
		state.needsRevision[conflict.Role] = conflict.Detail
		c.collector.Conflict(string(conflict.Role))
		c.logger.Info("consistency conflict",
			zap.String("flagged_role", string(conflict.Role)),
			zap.String("source_role", string(conflict.Source)),
			zap.String("detail", conflict.Detail),
		)
		flagged++
	}
	return flagged
}

func (c *Coordinator) allAccepted(store *session.Store) bool {
	for _, role := range c.roles {
		if _, ok := store.Active(role); !ok {
			return false
		}
	}
	return true
}

func (c *Coordinator) finalize(span trace.Span, store *session.Store, state *sessionState) *Result {
	state.phase = PhaseFinalized

	var degraded []types.Role
	for role := range state.degraded {
		degraded = append(degraded, role)
	}
	degraded = types.DocumentOrder(degraded)

	result := &Result{
		SessionID:  store.ID(),
		Document:   c.assemble(store),
		Converged:  state.converged,
		RoundsUsed: state.round,
		Degraded:   degraded,
	}

	outcome := "exhausted"
	if state.converged {
		outcome = "converged"
	}
	c.collector.SessionFinished(outcome, state.round)
	span.SetAttributes(
		attribute.Bool("session.converged", state.converged),
		attribute.Int("session.rounds", state.round),
	)
	c.logger.Info("session finished",
		zap.String("session_id", store.ID()),
		zap.String("outcome", outcome),
		zap.Int("rounds_used", state.round),
		zap.Int("degraded_roles", len(degraded)),
	)
	return result
}

// assemble concatenates the accepted sections in document order.
func (c *Coordinator) assemble(store *session.Store) string {
	var parts []string
	for _, role := range c.roles {
		contrib, ok := store.Active(role)
		if !ok {
			continue
		}
		parts = append(parts, "=== "+strings.ToUpper(string(role))+" ===\n"+contrib.Text)
	}
	return strings.Join(parts, "\n\n")
}

func (c *Coordinator) fail(span trace.Span, state *sessionState, phase Phase, err error) (*Result, error) {
	c.collector.SessionFinished("failed", state.round)
	span.SetAttributes(attribute.String("session.failed_phase", string(phase)))
	c.logger.Error("session failed",
		zap.String("phase", string(phase)),
		zap.Error(err),
	)
	return nil, &FatalError{Phase: phase, Err: err}
}
