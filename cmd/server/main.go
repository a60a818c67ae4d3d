package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/laburen/sales-agent-mcp/internal/chatwoot"
	"github.com/laburen/sales-agent-mcp/internal/config"
	"github.com/laburen/sales-agent-mcp/internal/repository"
	"github.com/laburen/sales-agent-mcp/internal/server"
	"github.com/laburen/sales-agent-mcp/internal/service"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const (
	keepAliveInterval = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatalf("server exited: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("newLogger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	productRepo, err := repository.NewProduct(pool)
	if err != nil {
		return fmt.Errorf("repository.NewProduct: %w", err)
	}

	cartRepo, err := repository.NewCart(pool)
	if err != nil {
		return fmt.Errorf("repository.NewCart: %w", err)
	}

	notifier, err := chatwoot.NewClient(chatwoot.Config{
		BaseURL:   cfg.ChatwootURL,
		AccountID: cfg.ChatwootAccountID,
		Token:     cfg.ChatwootToken,
	}, logger)
	if err != nil {
		return fmt.Errorf("chatwoot.NewClient: %w", err)
	}

	catalogService, err := service.NewCatalog(productRepo)
	if err != nil {
		return fmt.Errorf("service.NewCatalog: %w", err)
	}

	cartService, err := service.NewCart(productRepo, cartRepo, notifier, logger)
	if err != nil {
		return fmt.Errorf("service.NewCart: %w", err)
	}

	mcpServer := server.New(catalogService, cartService, notifier)

	sse := mcpserver.NewSSEServer(mcpServer,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/mcp"),
		mcpserver.WithKeepAlive(true),
		mcpserver.WithKeepAliveInterval(keepAliveInterval),
	)

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/mcp", sse.MessageHandler())
	mux.HandleFunc("/health", handleHealth)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		// let in-flight background notifications finish before closing
		cartService.Wait()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.AppEnv == "dev" {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("zapcore.ParseLevel: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build(zap.Fields(zap.String("service", server.Name)))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
