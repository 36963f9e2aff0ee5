package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// historyStore defines the read-only history access needed by the assistant.
type historyStore interface {
	RecentLists(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ShoppingList, error)
	ListItems(ctx context.Context, userID, listID uuid.UUID) ([]domain.ListItem, error)
	RecentPurchases(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PurchaseRecord, error)
	RecentPrices(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PriceRecord, error)
}

// modelGateway defines the model backend access needed by the assistant.
type modelGateway interface {
	ModelFor(endpoint domain.Endpoint) (string, error)
	Invoke(ctx context.Context, model string, req domain.ModelRequest) (string, error)
}

// outcomeRecorder receives per-endpoint decode outcomes and call timings.
type outcomeRecorder interface {
	RecordOutcome(endpoint, outcome string)
	ObserveModelCall(endpoint string, err error, d time.Duration)
}

// Service implements the shopping assistant endpoints.
type Service struct {
	log      *slog.Logger
	history  historyStore
	gateway  modelGateway
	recorder outcomeRecorder
	composer *prompt.Composer
	cfg      config.AssistantConfig
}

// NewService creates a new assistant service. recorder may be nil.
func NewService(
	logger *slog.Logger,
	history historyStore,
	gateway modelGateway,
	recorder outcomeRecorder,
	cfg config.AssistantConfig,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		log:      logger.With("service", "assistant"),
		history:  history,
		gateway:  gateway,
		recorder: recorder,
		composer: prompt.NewComposer(
			prompt.Market{Locale: cfg.Locale, Market: cfg.Market, Currency: cfg.Currency},
			prompt.Limits{
				NormalizeInput: cfg.NormalizeInputMax,
				ChatMessage:    cfg.ChatMessageMax,
				Prompt:         cfg.PromptMax,
				ReceiptText:    cfg.ReceiptTextMax,
			},
		),
		cfg: cfg,
	}
}

// invoke sends one request to the model pinned for endpoint. Backend
// failures keep their message and are tagged with ErrBackendCall.
func (s *Service) invoke(ctx context.Context, endpoint domain.Endpoint, model string, req domain.ModelRequest) (string, error) {
	start := time.Now()
	raw, err := s.gateway.Invoke(ctx, model, req)
	s.recorder.ObserveModelCall(endpoint.String(), err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", endpoint, domain.ErrBackendCall, err)
	}
	return raw, nil
}

// settle records the decode outcome and turns a Reject into an error.
func settle[T any](s *Service, endpoint domain.Endpoint, res decode.Result[T]) (T, error) {
	s.recorder.RecordOutcome(endpoint.String(), res.Outcome.String())

	switch res.Outcome {
	case decode.Reject:
		s.log.Warn("model response rejected",
			slog.String("endpoint", endpoint.String()),
			slog.Int("dropped", res.Dropped),
			slog.String("error", res.Err.Error()),
		)
		var zero T
		return zero, fmt.Errorf("%s: %w", endpoint, res.Err)
	case decode.Fallback:
		s.log.Info("model response unusable, using local fallback", slog.String("endpoint", endpoint.String()))
	default:
		if res.Dropped > 0 {
			s.log.Debug("dropped invalid items",
				slog.String("endpoint", endpoint.String()),
				slog.Int("dropped", res.Dropped),
			)
		}
	}
	return res.Value, nil
}

// resolveMax applies the default and the cap to a caller-supplied maximum.
func resolveMax(requested, def, limit int) int {
	if requested <= 0 {
		requested = def
	}
	return min(requested, limit)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string, string) {}
func (nopRecorder) ObserveModelCall(string, error, time.Duration) {}
