package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func TestRepo_RecentLists(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	a, b := uuid.New(), uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(`FROM shopping_lists WHERE user_id = \$1 ORDER BY updated_at DESC, id DESC LIMIT 5`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow(a, userID, "Weekly", now.Add(-48*time.Hour), now).
			AddRow(b, userID, "Party", now.Add(-72*time.Hour), now.Add(-time.Hour)))

	lists, err := New(mock).RecentLists(context.Background(), userID, 5)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, a, lists[0].ID)
	assert.Equal(t, "Party", lists[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListItems(t *testing.T) {
	t.Parallel()

	userID, listID := uuid.New(), uuid.New()
	itemID := uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(`FROM list_items li JOIN shopping_lists sl ON sl.id = li.list_id`).
		WithArgs(false, listID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "list_id", "name", "quantity", "unit", "category", "checked"}).
			AddRow(itemID, listID, "Bananas", "1.500", "kg", strPtr("Produce"), false).
			AddRow(uuid.New(), listID, "Napkins", "2.000", "pack", (*string)(nil), true))

	items, err := New(mock).ListItems(context.Background(), userID, listID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, itemID, items[0].ID)
	assert.True(t, items[0].Quantity.Equal(decimal.RequireFromString("1.5")), "quantity = %s", items[0].Quantity)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Produce", *items[0].Category)
	assert.Nil(t, items[1].Category)
	assert.True(t, items[1].Checked)
	assert.False(t, items[1].Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_RecentPurchases(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	day := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	mock := newMock(t)
	mock.ExpectQuery(`FROM purchase_history WHERE user_id = \$1 ORDER BY purchased_at DESC, id DESC LIMIT 50`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "item_name", "category", "quantity", "unit", "purchased_at"}).
			AddRow(uuid.New(), "Cheese", strPtr("Dairy"), "0.374", "kg", day))

	got, err := New(mock).RecentPurchases(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cheese", got[0].ItemName)
	assert.Equal(t, "0.374", got[0].Quantity.String())
	assert.Equal(t, day, got[0].PurchasedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_RecentPrices(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()

	mock := newMock(t)
	mock.ExpectQuery(`FROM price_history WHERE user_id = \$1 ORDER BY purchased_at DESC, id DESC LIMIT 50`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "item_name", "price", "store", "purchased_at"}).
			AddRow(uuid.New(), "Cheese", strPtr("12.50"), "Corner", now).
			AddRow(uuid.New(), "Bread", (*string)(nil), "Corner", now).
			AddRow(uuid.New(), "Milk", strPtr("-1.00"), "Corner", now))

	got, err := New(mock).RecentPrices(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].Price.Valid)
	assert.Equal(t, "12.5", got[0].Price.Decimal.String())
	assert.False(t, got[1].Price.Valid, "NULL price must be unknown")
	assert.False(t, got[2].Price.Valid, "negative price must be unknown")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_EmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(`FROM purchase_history`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "item_name", "category", "quantity", "unit", "purchased_at"}))

	got, err := New(mock).RecentPurchases(context.Background(), userID, 50)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRepo_StoreFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name string
		err  error
	}{
		{name: "connection refused", err: errors.New("dial tcp: connection refused")},
		{name: "pg error", err: &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := newMock(t)
			mock.ExpectQuery(`FROM price_history`).
				WithArgs(userID).
				WillReturnError(tt.err)

			got, err := New(mock).RecentPrices(context.Background(), userID, 50)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRepo_ScanFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(`FROM purchase_history`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "item_name", "category", "quantity", "unit", "purchased_at"}).
			AddRow(uuid.New(), "Cheese", (*string)(nil), "not-a-number", "kg", time.Now()))

	_, err := New(mock).RecentPurchases(context.Background(), userID, 50)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRepo_ListItemsHasNoLimit(t *testing.T) {
	t.Parallel()

	userID, listID := uuid.New(), uuid.New()

	mock := newMock(t)
	mock.ExpectQuery(`ORDER BY li.created_at DESC, li.id DESC$`).
		WithArgs(false, listID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "list_id", "name", "quantity", "unit", "category", "checked"}))

	items, err := New(mock).ListItems(context.Background(), userID, listID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
