package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/aggregate"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// Chat answers a free-form message with the user's shopping history as
// context. Prior turns are replayed to the model, bounded to the most
// recent ChatHistoryLimit turns.
func (s *Service) Chat(ctx context.Context, in ChatInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	model, err := s.gateway.ModelFor(domain.EndpointChat)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	hist, err := s.loadHistory(ctx, in.UserID, historyQuery{
		lists:     true,
		listID:    in.ListID,
		purchases: true,
		prices:    true,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	text := s.composer.Chat(prompt.ChatInput{
		Summary:     aggregate.Summarize(hist.purchases, hist.prices, s.cfg.ChatTopItems),
		RecentLists: hist.lists,
		OpenList:    hist.items,
		Message:     in.Message,
	})

	raw, err := s.invoke(ctx, domain.EndpointChat, model, domain.ModelRequest{
		Prompt:  text,
		History: s.boundHistory(in.History),
	})
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(raw)
	res := decode.Result[string]{Outcome: decode.Accept, Value: reply}
	if reply == "" {
		res = decode.Result[string]{Outcome: decode.Reject, Err: fmt.Errorf("%w: empty reply", domain.ErrInvalidResponseStructure)}
	}
	return settle(s, domain.EndpointChat, res)
}

// boundHistory keeps the last ChatHistoryLimit non-empty turns, each capped
// like a chat message.
func (s *Service) boundHistory(turns []domain.ChatTurn) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		out = append(out, domain.ChatTurn{Role: t.Role, Content: domain.Truncate(content, s.cfg.ChatMessageMax)})
	}
	if limit := s.cfg.ChatHistoryLimit; len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
