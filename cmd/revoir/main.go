package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"

	"github.com/lmercadier/revoir/internal/analysis"
	"github.com/lmercadier/revoir/internal/cli"
	"github.com/lmercadier/revoir/internal/config"
	"github.com/lmercadier/revoir/internal/db"
	"github.com/lmercadier/revoir/internal/llm"
	"github.com/lmercadier/revoir/internal/repository"
	"github.com/lmercadier/revoir/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("REVOIR_CONFIG")
	if cfgPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		cfgPath = filepath.Join(home, ".revoir", "config.yaml")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := os.Getenv("REVOIR_DB")
	if dbPath == "" {
		dbPath = cfg.App.DBPath
		if dbPath == "revoir.db" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			dbPath = filepath.Join(home, ".revoir", "revoir.db")
		}
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	noteRepo := repository.NewSQLiteNoteRepo(database)
	stateRepo := repository.NewSQLiteReviewStateRepo(database)
	digestRepo := repository.NewSQLiteDigestRepo(database)

	sched := scheduler.NewService(stateRepo, noteRepo)

	// The pipeline falls back to deterministic rules without a backend.
	var backend llm.Backend
	if cfg.LLM.Enabled {
		var observer llm.Observer
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		backend = llm.NewOllamaBackend(cfg.LLM.Backend(), observer)
	}
	pipeline := analysis.NewPipeline(backend, logger)

	app := &cli.App{
		Config:   cfg,
		Notes:    noteRepo,
		States:   stateRepo,
		Digests:  digestRepo,
		Sched:    sched,
		Pipeline: pipeline,
		Logger:   logger,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}
