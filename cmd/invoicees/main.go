package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/core"
	"github.com/papayaah/invoicees/internal/export"
	"github.com/papayaah/invoicees/internal/llm/openai"
	repo "github.com/papayaah/invoicees/internal/repository"
)

func main() {
	_ = godotenv.Load()

	// stdout belongs to the conversation; logs go to stderr without time/level noise
	level := slog.LevelWarn
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer db.Close()

	invoicesRepo := repo.NewInvoiceRepository(db, logger)
	docsRepo := repo.NewDocumentationRepository(db, logger)
	if n, err := docsRepo.SeedDefaults(ctx); err != nil {
		logger.Warn("documentation seed failed", "error", err)
	} else if n > 0 {
		logger.Info("documentation seeded", "topics", n)
	}

	client, err := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("language model unavailable", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("language model did not answer; requests may fail", "base_url", cfg.LLM.BaseURL, "error", err)
	}
	cancel()

	r := &repl{
		processor: core.NewProcessor(logger, client, docsRepo, invoicesRepo),
		invoices:  invoicesRepo,
		exporter:  export.NewService(invoicesRepo, logger),
		session:   client,
		exportDir: cfg.Export.Dir,
		in:        os.Stdin,
		out:       os.Stdout,
		logger:    logger,
	}
	if err := r.run(ctx); err != nil {
		logger.Error("chat loop stopped", "error", err)
		os.Exit(1)
	}
}
