// Paperflow entry point.
//
// Usage:
//
//	paperflow run --material material.json            # run a session
//	paperflow run --config paperflow.yaml --out p.txt # with config and output file
//	paperflow resume --session <id> --material m.json # resume after a crash
//	paperflow version                                 # show version info
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/avelkey/paperflow/agent"
	"github.com/avelkey/paperflow/config"
	"github.com/avelkey/paperflow/coordinator"
	"github.com/avelkey/paperflow/internal/metrics"
	"github.com/avelkey/paperflow/internal/telemetry"
	"github.com/avelkey/paperflow/llm"
	"github.com/avelkey/paperflow/llm/openaicompat"
	"github.com/avelkey/paperflow/llm/retry"
	"github.com/avelkey/paperflow/persistence"
	"github.com/avelkey/paperflow/prompt"
	"github.com/avelkey/paperflow/types"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCommand(os.Args[2:], false)
	case "resume":
		runCommand(os.Args[2:], true)
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runCommand(args []string, resume bool) {
	name := "run"
	if resume {
		name = "resume"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	materialPath := fs.String("material", "", "path to research material JSON (required)")
	outPath := fs.String("out", "", "write the assembled document here (default stdout)")
	sessionID := fs.String("session", "", "session id to resume (resume only)")
	fs.Parse(args)

	if *materialPath == "" {
		fmt.Fprintln(os.Stderr, "--material is required")
		fs.Usage()
		os.Exit(1)
	}
	if resume && *sessionID == "" {
		fmt.Fprintln(os.Stderr, "--session is required for resume")
		fs.Usage()
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.Log)
	if err != nil {
		fatal("build logger: %v", err)
	}
	defer logger.Sync()

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	material, err := loadMaterial(*materialPath)
	if err != nil {
		logger.Fatal("load material", zap.String("path", *materialPath), zap.Error(err))
	}

	ctx := context.Background()

	transcript, err := persistence.NewStore(ctx, persistence.Options{
		Backend:   persistence.Backend(cfg.Transcript.Backend),
		Dir:       cfg.Transcript.Dir,
		RedisAddr: cfg.Transcript.RedisAddr,
		RedisDB:   cfg.Transcript.RedisDB,
	})
	if err != nil {
		logger.Fatal("open transcript store", zap.Error(err))
	}
	defer transcript.Close()

	coord, err := buildCoordinator(cfg, transcript, logger)
	if err != nil {
		logger.Fatal("build coordinator", zap.Error(err))
	}

	var result *coordinator.Result
	if resume {
		entries, err := transcript.Load(ctx, *sessionID)
		if err != nil {
			logger.Fatal("load transcript", zap.String("session_id", *sessionID), zap.Error(err))
		}
		result, err = coord.ResumeSession(ctx, material, entries)
		if err != nil {
			logger.Fatal("resume session", zap.Error(err))
		}
	} else {
		result, err = coord.RunSession(ctx, material)
		if err != nil {
			logger.Fatal("run session", zap.Error(err))
		}
	}

	if err := writeDocument(*outPath, result); err != nil {
		logger.Fatal("write document", zap.Error(err))
	}
	logger.Info("done",
		zap.String("session_id", result.SessionID),
		zap.Bool("converged", result.Converged),
		zap.Int("rounds_used", result.RoundsUsed),
	)
	if !result.Converged {
		os.Exit(2)
	}
}

// buildCoordinator wires provider, agents, and session policy from cfg.
func buildCoordinator(cfg *config.Config, transcript persistence.TranscriptStore, logger *zap.Logger) (*coordinator.Coordinator, error) {
	base, err := openaicompat.New(openaicompat.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}
	var provider llm.Provider = base
	if cfg.LLM.RateLimitRPS > 0 {
		provider = llm.NewRateLimitedProvider(base, cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst)
	}

	roles := types.CoreRoles()
	if cfg.Session.ExtendedRoles {
		roles = types.ExtendedRoles()
	}
	registry := prompt.DefaultRegistry()

	agents := make([]agent.SectionAgent, 0, len(roles))
	for _, role := range roles {
		a, err := agent.New(agent.Config{
			Role:        role,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, provider, registry, logger)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	return coordinator.New(agents, coordinator.Options{
		RoundBudget: cfg.Session.RoundBudget,
		RetryPolicy: &retry.Policy{
			MaxRetries:   cfg.Session.Retry.MaxRetries,
			InitialDelay: cfg.Session.Retry.InitialDelay,
			MaxDelay:     cfg.Session.Retry.MaxDelay,
			Multiplier:   cfg.Session.Retry.Multiplier,
			Jitter:       cfg.Session.Retry.Jitter,
		},
		Transcript: transcript,
		Metrics:    metrics.NewCollector("paperflow", prometheus.DefaultRegisterer),
	}, logger)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadMaterial(path string) (*types.ResearchMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var material types.ResearchMaterial
	if err := json.Unmarshal(data, &material); err != nil {
		return nil, fmt.Errorf("parse material JSON: %w", err)
	}
	return &material, nil
}

func writeDocument(path string, result *coordinator.Result) error {
	if path == "" {
		fmt.Println(result.Document)
		return nil
	}
	return os.WriteFile(path, []byte(result.Document+"\n"), 0o644)
}

func printVersion() {
	fmt.Printf("paperflow %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
}

func printUsage() {
	fmt.Println(`paperflow - multi-agent research paper writing

Usage:
  paperflow run --material material.json [--config paperflow.yaml] [--out paper.txt]
  paperflow resume --session <id> --material material.json
  paperflow version
  paperflow help

Exit codes:
  0  session converged
  2  round budget exhausted before convergence`)
}
