package assistant

import (
	"context"
	"fmt"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/aggregate"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// Validate reviews a shopping list and returns a keep/drop verdict per item.
func (s *Service) Validate(ctx context.Context, in ValidateInput) ([]domain.ValidatedItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	model, err := s.gateway.ModelFor(domain.EndpointValidate)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	q := historyQuery{purchases: true, prices: true}
	if len(in.Items) == 0 {
		q.listID = in.ListID
	}
	hist, err := s.loadHistory(ctx, in.UserID, q)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	items := hist.items
	if len(in.Items) > 0 {
		items = in.listItems()
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("list_id", "list has no items")
	}
	if len(items) > s.cfg.ValidateMaxCap {
		items = items[:s.cfg.ValidateMaxCap]
	}
	maxResults := resolveMax(in.MaxResults, len(items), s.cfg.ValidateMaxCap)

	text := s.composer.Validate(prompt.ValidateInput{
		Summary:    aggregate.Summarize(hist.purchases, hist.prices, s.cfg.SuggestTopItems),
		Items:      items,
		Request:    in.Prompt,
		MaxResults: maxResults,
	})

	raw, err := s.invoke(ctx, domain.EndpointValidate, model, domain.ModelRequest{Prompt: text, JSONOutput: true})
	if err != nil {
		return nil, err
	}
	return settle(s, domain.EndpointValidate, decode.Validations(raw, maxResults))
}
