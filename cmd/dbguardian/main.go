package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dbguardian/dbguardian/internal/checks"
	"github.com/dbguardian/dbguardian/internal/config"
	"github.com/dbguardian/dbguardian/internal/core"
	"github.com/dbguardian/dbguardian/internal/inventory"
	"github.com/dbguardian/dbguardian/internal/logging"
	"github.com/dbguardian/dbguardian/internal/metrics"
	"github.com/dbguardian/dbguardian/internal/orchestrator"
	"github.com/dbguardian/dbguardian/internal/pool"
	"github.com/dbguardian/dbguardian/internal/report"
	"github.com/dbguardian/dbguardian/internal/rules"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    = flag.String("config", "", "path to config file")
		rulesPath     = flag.String("rules", "", "path to validation rules file (overrides config)")
		inventoryPath = flag.String("inventory", "", "path to database inventory file (overrides config)")
		targetFilter  = flag.String("targets", "", "comma-separated target names to check (default: all)")
		verbose       = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	// Credentials referenced by the inventory may live in a .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return report.ExitConfigError
	}
	if *rulesPath != "" {
		cfg.Rules.Path = *rulesPath
	}
	if *inventoryPath != "" {
		cfg.Inventory.Path = *inventoryPath
	}

	logger, err := logging.New(cfg.Log.Dir, *verbose)
	if err != nil {
		log.Printf("failed to set up logging: %v", err)
		return report.ExitConfigError
	}
	defer logger.Sync()

	targets, err := inventory.Load(cfg.Inventory.Path)
	if err != nil {
		logger.Error("failed to load inventory", zap.Error(err))
		return report.ExitConfigError
	}
	if *targetFilter != "" {
		targets, err = filterTargets(targets, strings.Split(*targetFilter, ","))
		if err != nil {
			logger.Error("invalid target filter", zap.Error(err))
			return report.ExitConfigError
		}
	}

	global, overrides, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		logger.Error("failed to load validation rules", zap.Error(err))
		return report.ExitConfigError
	}

	registry, err := checks.DefaultRegistry()
	if err != nil {
		logger.Error("failed to build check registry", zap.Error(err))
		return report.ExitConfigError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector(promReg)
	if cfg.Metrics.ListenAddr != "" {
		go metrics.Serve(ctx, cfg.Metrics.ListenAddr, promReg, logger)
	}

	manager := pool.NewManager(pool.Config{
		MinSessions:   cfg.Pool.MinSessions,
		MaxSessions:   cfg.Pool.MaxSessions,
		IdleTTL:       cfg.Pool.IdleTTL,
		BorrowTimeout: cfg.Pool.BorrowTimeout,
	}, logger)

	orch := orchestrator.New(orchestrator.Config{
		Workers:         cfg.Run.WorkerCount,
		CheckTimeout:    cfg.Run.CheckTimeout,
		ConnectAttempts: cfg.Run.ConnectAttempts,
		ConnectBackoff:  cfg.Run.ConnectBackoff,
		ConnectRate:     cfg.Run.ConnectRate,
		ConnectBurst:    cfg.Run.ConnectBurst,
	}, poolAdapter{manager}, registry, global, overrides, collector, logger)

	logger.Info("starting validation run",
		zap.Int("targets", len(targets)),
		zap.Int("checks", registry.Len()),
		zap.Int("workers", cfg.Run.WorkerCount),
	)

	runReport, err := orch.Run(ctx, targets)
	if err != nil {
		// Scoring errors are internal defects, not user conditions.
		logger.Error("run aborted", zap.Error(err))
		return report.ExitConfigError
	}

	printSummary(runReport)
	return report.ExitCode(runReport, cfg.Scoring.PassThreshold)
}

// poolAdapter narrows *pool.Manager to the orchestrator's Pool interface.
type poolAdapter struct {
	m *pool.Manager
}

func (a poolAdapter) Borrow(ctx context.Context, t core.Target) (orchestrator.Session, error) {
	s, err := a.m.Borrow(ctx, t)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a poolAdapter) CloseAll() { a.m.CloseAll() }

func filterTargets(targets []core.Target, names []string) ([]core.Target, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var out []core.Target
	for _, t := range targets {
		if want[t.ID] {
			out = append(out, t)
			delete(want, t.ID)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("target %q not found in inventory", n)
	}
	return out, nil
}

func printSummary(run *core.RunReport) {
	fmt.Printf("\nRun %s generated at %s\n", run.ID, run.GeneratedAt.Format("2006-01-02 15:04:05"))
	for _, tr := range run.Targets {
		switch tr.Connectivity {
		case core.ConnectivityFailed:
			fmt.Printf("  %s: UNREACHABLE (%s)\n", tr.TargetID, tr.ConnectError)
		case core.ConnectivitySkipped:
			fmt.Printf("  %s: not processed (run cancelled)\n", tr.TargetID)
		default:
			scored := tr.Passed + tr.Failed + tr.Errors
			fmt.Printf("  %s: %d/%d passed, score %s - %s\n",
				tr.TargetID, tr.Passed, scored, formatScore(tr.Score), tr.Verdict)
		}
	}
	suffix := ""
	if run.Partial {
		suffix = " (PARTIAL)"
	}
	fmt.Printf("Overall score: %s%s\n", formatScore(run.Score), suffix)
}

func formatScore(s core.Score) string {
	if !s.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", s.Value)
}
