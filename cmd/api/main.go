package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/pairrelay/internal/config"
	"github.com/zhouzirui/pairrelay/internal/handler"
	"github.com/zhouzirui/pairrelay/internal/logging"
	"github.com/zhouzirui/pairrelay/internal/service/feed"
	"github.com/zhouzirui/pairrelay/internal/service/ingest"
	"github.com/zhouzirui/pairrelay/internal/service/pairing"
	"github.com/zhouzirui/pairrelay/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Configure(cfg.Log)
	if envErr != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", "error", envErr)
	}

	tokens, err := storage.NewTokenFile(cfg.Storage.TokenPath)
	if err != nil {
		logger.Error("failed to open token store", "error", err)
		os.Exit(1)
	}
	messages, err := storage.NewMessageFile(cfg.Storage.MessagePath)
	if err != nil {
		logger.Error("failed to open message store", "error", err)
		os.Exit(1)
	}
	logger.Info("stores ready", "tokens", tokens.Path(), "messages", messages.Path())

	hub := feed.NewHub(feed.DefaultBuffer)
	pairSvc := pairing.NewService(tokens, nil)
	ingestSvc := ingest.NewService(tokens, messages, hub)

	router := handler.NewRouter(pairSvc, ingestSvc, hub, handler.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})

	if err := startServer(ctx, cfg.Server, router, hub); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, hub *feed.Hub) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown does not track hijacked websocket connections; closing the
	// hub ends every feed handler instead.
	srv.RegisterOnShutdown(hub.Close)

	slog.Info("pairing relay listening", "addr", srv.Addr)
	return runServer(ctx, srv, serverCfg.ShutdownTimeout)
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
