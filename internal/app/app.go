package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/heartmarshall/shopping-assistant/internal/adapter/llm"
	"github.com/heartmarshall/shopping-assistant/internal/adapter/metrics"
	"github.com/heartmarshall/shopping-assistant/internal/adapter/postgres"
	"github.com/heartmarshall/shopping-assistant/internal/adapter/postgres/history"
	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant"
	"github.com/heartmarshall/shopping-assistant/internal/transport/middleware"
	"github.com/heartmarshall/shopping-assistant/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the history store, builds the model gateway and serves HTTP until ctx is
// cancelled, then shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("llm_provider", cfg.LLM.Provider),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	gateway, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("create model gateway: %w", err)
	}

	m := metrics.New()
	svc := assistant.NewService(logger, history.New(pool), gateway, m, cfg.Assistant)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	handler := newHTTPHandler(cfg, logger, httpDeps{
		assistant: rest.NewAssistantHandler(svc, logger, cfg.Server.MaxBodyBytes),
		health:    rest.NewHealthHandler(pool, gateway, BuildVersion()),
		metrics:   m,
		limiter:   limiter,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	return serve(ctx, srv, cfg.Server, logger)
}

// serve runs srv until it fails or ctx is done. Requests in flight get
// ShutdownTimeout to finish.
func serve(ctx context.Context, srv *http.Server, cfg config.ServerConfig, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err, ok := <-errCh; ok {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
