package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/retailerkit/planner/pkg/application/services"
	"github.com/retailerkit/planner/pkg/application/store"
	"github.com/retailerkit/planner/pkg/domain/repositories"
	badgerrepo "github.com/retailerkit/planner/pkg/infrastructure/repositories/badger"
	"github.com/retailerkit/planner/pkg/infrastructure/solver"
	"github.com/retailerkit/planner/pkg/interfaces/tui"
)

func main() {
	// .env values become defaults; flags win
	_ = godotenv.Load()

	var (
		dataDir = flag.String(
			"data",
			envOr("PLANNER_DATA_DIR", defaultDataDir()),
			"Directory for the local planning database",
		)
		solverURL = flag.String(
			"solver",
			envOr("PLANNER_SOLVER_URL", "http://localhost:5001"),
			"Base URL of the optimization service",
		)
		timeout  = flag.Duration("timeout", solver.DefaultTimeout, "Solver request timeout")
		inMemory = flag.Bool("in-memory", false, "Keep state in memory only (no persistence)")
		logLevel = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := newLogger(*logLevel)

	if err := run(*dataDir, *solverURL, *timeout, *inMemory, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, solverURL string, timeout time.Duration, inMemory bool, logger *slog.Logger) error {
	var (
		repo repositories.SectionRepository
		err  error
	)
	if inMemory {
		repo, err = badgerrepo.OpenInMemory()
	} else {
		cfg := badgerrepo.DefaultConfig(dataDir)
		cfg.Logger = logger
		repo, err = badgerrepo.Open(cfg)
	}
	if err != nil {
		return fmt.Errorf("opening planning database: %w", err)
	}
	defer repo.Close()

	ctx := context.Background()
	planningStore := store.New(ctx, repo, logger)
	workflow := services.NewWorkflow(planningStore, logger)
	solveService := services.NewSolveService(
		planningStore,
		solver.NewClient(solverURL, timeout, logger),
		logger,
	)

	program := tea.NewProgram(
		tui.New(planningStore, workflow, solveService, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running planner: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planner"
	}
	return home + "/.planner"
}
