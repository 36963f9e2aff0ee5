package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/shopping-assistant/internal/adapter/metrics"
	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/transport/middleware"
	"github.com/heartmarshall/shopping-assistant/internal/transport/rest"
)

type httpDeps struct {
	assistant *rest.AssistantHandler
	health    *rest.HealthHandler
	metrics   *metrics.Metrics
	limiter   *middleware.RateLimiter
}

// newHTTPHandler mounts every route and wraps the mux in the middleware
// chain. Probes and /metrics are not rate limited.
//
// Order matters: UserID must run before Logger and the limiter so both see
// the caller, and Metrics must sit directly on a mux to read r.Pattern.
func newHTTPHandler(cfg *config.Config, logger *slog.Logger, deps httpDeps) http.Handler {
	api := http.NewServeMux()
	deps.assistant.Register(api)

	var apiHandler http.Handler = middleware.Metrics(deps.metrics)(api)
	if cfg.RateLimit.Enabled {
		apiHandler = deps.limiter.Limit(cfg.RateLimit.PerMinute)(apiHandler)
	}

	ops := http.NewServeMux()
	ops.HandleFunc("GET /live", deps.health.Live)
	ops.HandleFunc("GET /ready", deps.health.Ready)
	ops.HandleFunc("GET /health", deps.health.Health)
	ops.Handle("GET /metrics", deps.metrics.Handler())
	ops.Handle("/api/", apiHandler)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.UserID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)
	return chain(ops)
}
