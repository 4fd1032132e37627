package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docwiki/internal/api"
	"github.com/dgallion1/docwiki/internal/config"
	"github.com/dgallion1/docwiki/internal/logging"
	"github.com/dgallion1/docwiki/internal/pipeline"
	"github.com/dgallion1/docwiki/internal/wikistore"
	"github.com/dgallion1/docwiki/internal/wikitext"
)

func main() {
	cfg := config.Load()

	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	log := logging.New(os.Stdout, level, format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dialects, err := loadDialects(cfg, log)
	if err != nil {
		log.Error("load dialects", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Publishing is optional.
	var (
		store *wikistore.Client
		pub   pipeline.Publisher
		pages api.PageStore
	)
	if cfg.PublishEnabled() {
		store = wikistore.NewClient(cfg.WikistoreURL, cfg.WikistoreAPIKey)
		pub, pages = store, store
	} else {
		log.Warn("wikistore not configured, publishing disabled")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, dialects, pub, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, pages, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if store != nil {
			store.Close()
		}
	}()

	log.Info("starting docwiki", "port", cfg.Port, "dialects", dialects.Names(), "default_dialect", dialects.Default())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadDialects builds the registry, adding the DIALECT_FILE dialect if set.
func loadDialects(cfg config.Config, log *slog.Logger) (*wikitext.Registry, error) {
	if cfg.DialectFile == "" {
		return wikitext.NewRegistry(cfg.DefaultDialect)
	}
	custom, err := wikitext.LoadDialectFile(cfg.DialectFile)
	if err != nil {
		return nil, err
	}
	log.Info("loaded dialect file", "path", cfg.DialectFile, "name", custom.Name)
	return wikitext.NewRegistry(cfg.DefaultDialect, custom)
}
