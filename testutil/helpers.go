package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/avelkey/paperflow/types"
)

// TestContext returns a context with a 30s timeout, cancelled on cleanup.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout returns a context with a custom timeout.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns an already-cancelled context.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// Material returns research material with enough substance to extract
// facts from: a methodology block, findings with numbers, a table, and
// citations.
func Material() *types.ResearchMaterial {
	return &types.ResearchMaterial{
		Topic: "Sleep deprivation and working memory",
		TextBlocks: []string{
			"Study Design\n" +
				"We collected data from 48 participants over a 14 day protocol.\n" +
				"Working memory was measured with the n-back task [1].\n" +
				"Participants were sampled from two university cohorts (Smith, 2021).",
			"Key Findings\n" +
				"Results showed a 23% decrease in task accuracy after 36 hours awake.\n" +
				"The effect was significant at p < 0.05 across both cohorts.",
		},
		Tables: []types.Table{
			{
				Description: "accuracy by condition",
				Columns:     []string{"condition", "accuracy"},
				Rows: [][]string{
					{"rested", "0.91"},
					{"deprived", "0.68"},
				},
			},
		},
		Citations: []string{"[1] Kirchner, 1958"},
	}
}

// Facts returns pre-extracted structured facts matching Material.
func Facts() *types.StructuredFacts {
	return &types.StructuredFacts{
		Topic: "Sleep deprivation and working memory",
		Facts: []types.Fact{
			{Kind: types.FactMethodology, Key: "study design", Value: "We collected data from 48 participants over a 14 day protocol."},
			{Kind: types.FactFinding, Key: "key findings", Value: "Results showed a 23% decrease in task accuracy after 36 hours awake."},
			{Kind: types.FactCitation, Value: "[1] Kirchner, 1958"},
		},
	}
}
