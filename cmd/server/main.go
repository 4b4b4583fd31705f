// Command server serves the household expense API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/casa-gastos/cmd/api"
	"github.com/FACorreiaa/casa-gastos/pkg/config"
	"github.com/FACorreiaa/casa-gastos/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	shutdownTracer, err := observability.InitTracer(cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if err := deps.Sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start upload sweeper: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		select {
		case <-deps.Sweeper.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("upload sweep still running at shutdown")
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
