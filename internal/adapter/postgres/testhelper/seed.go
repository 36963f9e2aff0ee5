package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedList creates a shopping list for the user, updated at the given time.
func SeedList(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, updatedAt time.Time) domain.ShoppingList {
	t.Helper()

	list := domain.ShoppingList{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "List " + uniqueSuffix(),
		CreatedAt: updatedAt.Add(-time.Hour).UTC().Truncate(time.Microsecond),
		UpdatedAt: updatedAt.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO shopping_lists (id, user_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		list.ID, list.UserID, list.Name, list.CreatedAt, list.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedList: %v", err)
	}
	return list
}

// SeedListItem adds an item to a list. Quantity is a decimal string.
func SeedListItem(t *testing.T, pool *pgxpool.Pool, listID uuid.UUID, name, quantity string, deleted bool) domain.ListItem {
	t.Helper()

	item := domain.ListItem{
		ID:       uuid.New(),
		ListID:   listID,
		Name:     name,
		Quantity: decimal.RequireFromString(quantity),
		Unit:     "pcs",
		Deleted:  deleted,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO list_items (id, list_id, name, quantity, unit, deleted) VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
		item.ID, item.ListID, item.Name, quantity, item.Unit, item.Deleted,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedListItem: %v", err)
	}
	return item
}

// SeedPurchase records a purchase. A nil category is stored as NULL.
func SeedPurchase(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string, category *string, at time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO purchase_history (id, user_id, item_name, category, quantity, unit, purchased_at)
		 VALUES ($1, $2, $3, $4, 1, 'pcs', $5)`,
		uuid.New(), userID, name, category, at,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPurchase: %v", err)
	}
}

// SeedPrice records a price observation. A nil price is stored as NULL.
func SeedPrice(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string, price *string, at time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO price_history (id, user_id, item_name, price, store, purchased_at)
		 VALUES ($1, $2, $3, $4::numeric, 'Test Store', $5)`,
		uuid.New(), userID, name, price, at,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPrice: %v", err)
	}
}
