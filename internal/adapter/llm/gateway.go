// Package llm is the model gateway: one synchronous, non-streaming call to
// a generative-text backend per request. It pins a model per endpoint and
// passes backend errors through untouched; translating them is up to callers.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// backend is a single provider SDK behind the gateway.
type backend interface {
	Generate(ctx context.Context, model string, req domain.ModelRequest) (string, error)
}

// Gateway resolves pinned models and invokes the configured backend.
type Gateway struct {
	provider string
	models   map[domain.Endpoint]string
	backend  backend
	log      *slog.Logger
}

// New creates a gateway for cfg.Provider. A missing API key is not an error
// here: the gateway is built without a backend and ModelFor reports
// domain.ErrConfiguration on every request, so the process can still serve
// health checks while the operator fixes the deployment.
func New(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Gateway, error) {
	log = log.With("component", "llm_gateway", "provider", cfg.Provider)

	if cfg.APIKey == "" {
		log.Warn("llm api key is not configured; assistant endpoints will fail")
		return newGateway(cfg, nil, log), nil
	}

	var (
		b   backend
		err error
	)
	switch cfg.Provider {
	case config.ProviderAnthropic:
		b = newAnthropicBackend(cfg)
	case config.ProviderOpenAI:
		b = newOpenAIBackend(cfg)
	case config.ProviderGemini, "":
		b, err = newGeminiBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q: %w", cfg.Provider, domain.ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: init %s client: %w", cfg.Provider, err)
	}

	return newGateway(cfg, b, log), nil
}

func newGateway(cfg config.LLMConfig, b backend, log *slog.Logger) *Gateway {
	return &Gateway{
		provider: cfg.Provider,
		models:   cfg.Models(),
		backend:  b,
		log:      log,
	}
}

// Configured reports whether a backend credential was supplied.
func (g *Gateway) Configured() bool { return g.backend != nil }

// Provider returns the configured provider name.
func (g *Gateway) Provider() string { return g.provider }

// ModelFor returns the model identifier pinned for the endpoint.
// It fails with domain.ErrConfiguration when no backend credential is set
// or the endpoint has no model, before any backend call is made.
func (g *Gateway) ModelFor(endpoint domain.Endpoint) (string, error) {
	if g.backend == nil {
		return "", fmt.Errorf("llm api key is not set: %w", domain.ErrConfiguration)
	}
	model := g.models[endpoint]
	if model == "" {
		return "", fmt.Errorf("no model configured for endpoint %q: %w", endpoint, domain.ErrConfiguration)
	}
	return model, nil
}

// Invoke sends one request to the backend and returns the raw response text.
// There is no retry and no timeout beyond the one carried by ctx.
func (g *Gateway) Invoke(ctx context.Context, model string, req domain.ModelRequest) (string, error) {
	if g.backend == nil {
		return "", fmt.Errorf("llm api key is not set: %w", domain.ErrConfiguration)
	}

	start := time.Now()
	text, err := g.backend.Generate(ctx, model, req)
	if err != nil {
		g.log.DebugContext(ctx, "model call failed",
			slog.String("model", model),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	g.log.DebugContext(ctx, "model call finished",
		slog.String("model", model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("history_turns", len(req.History)),
		slog.Int("attachments", len(req.Attachments)),
		slog.Int("response_len", len(text)),
	)
	return text, nil
}
