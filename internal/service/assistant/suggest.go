package assistant

import (
	"context"
	"fmt"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/aggregate"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// Suggest proposes items the user is likely to need. Items already on the
// open list are never returned; a reply made only of such items is rejected.
func (s *Service) Suggest(ctx context.Context, in SuggestInput) ([]domain.SuggestedItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	maxResults := resolveMax(in.MaxResults, s.cfg.SuggestDefaultMax, s.cfg.SuggestMaxCap)

	model, err := s.gateway.ModelFor(domain.EndpointSuggest)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	hist, err := s.loadHistory(ctx, in.UserID, historyQuery{
		listID:    in.ListID,
		purchases: true,
		prices:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	text := s.composer.Suggest(prompt.SuggestInput{
		Summary:    aggregate.Summarize(hist.purchases, hist.prices, s.cfg.SuggestTopItems),
		OpenList:   hist.items,
		Request:    in.Prompt,
		MaxResults: maxResults,
	})

	raw, err := s.invoke(ctx, domain.EndpointSuggest, model, domain.ModelRequest{Prompt: text, JSONOutput: true})
	if err != nil {
		return nil, err
	}

	res := decode.Suggestions(raw, 0)
	if res.Outcome == decode.Accept {
		decoded := len(res.Value)
		res.Value = excludeListed(res.Value, hist.items)
		if len(res.Value) == 0 {
			res = decode.Result[[]domain.SuggestedItem]{
				Outcome: decode.Reject,
				Err:     fmt.Errorf("%w: every suggestion is already on the list", domain.ErrInvalidResponseStructure),
				Dropped: res.Dropped + decoded,
			}
		}
	}

	items, err := settle(s, domain.EndpointSuggest, res)
	if err != nil {
		return nil, err
	}
	if len(items) > maxResults {
		items = items[:maxResults]
	}
	return items, nil
}

// excludeListed drops suggestions whose normalized name is already on the list.
func excludeListed(items []domain.SuggestedItem, listed []domain.ListItem) []domain.SuggestedItem {
	if len(listed) == 0 {
		return items
	}
	onList := make(map[string]struct{}, len(listed))
	for _, it := range listed {
		onList[domain.NormalizeText(it.Name)] = struct{}{}
	}

	out := items[:0]
	for _, it := range items {
		if _, ok := onList[domain.NormalizeText(it.Name)]; !ok {
			out = append(out, it)
		}
	}
	return out
}
