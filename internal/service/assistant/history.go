package assistant

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// historyQuery selects which reads loadHistory performs.
type historyQuery struct {
	lists     bool
	listID    *uuid.UUID
	purchases bool
	prices    bool
}

type historySnapshot struct {
	lists     []domain.ShoppingList
	items     []domain.ListItem
	purchases []domain.PurchaseRecord
	prices    []domain.PriceRecord
}

// loadHistory runs the selected reads concurrently. The first failure
// cancels the rest and is returned as is.
func (s *Service) loadHistory(ctx context.Context, userID uuid.UUID, q historyQuery) (historySnapshot, error) {
	var snap historySnapshot
	g, gctx := errgroup.WithContext(ctx)

	if q.lists {
		g.Go(func() error {
			var err error
			snap.lists, err = s.history.RecentLists(gctx, userID, s.cfg.RecentLists)
			return err
		})
	}
	if q.listID != nil {
		listID := *q.listID
		g.Go(func() error {
			var err error
			snap.items, err = s.history.ListItems(gctx, userID, listID)
			return err
		})
	}
	if q.purchases {
		g.Go(func() error {
			var err error
			snap.purchases, err = s.history.RecentPurchases(gctx, userID, s.cfg.RecentPurchases)
			return err
		})
	}
	if q.prices {
		g.Go(func() error {
			var err error
			snap.prices, err = s.history.RecentPrices(gctx, userID, s.cfg.RecentPrices)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return historySnapshot{}, err
	}
	return snap, nil
}
