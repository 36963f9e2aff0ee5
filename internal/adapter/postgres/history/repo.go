// Package history implements the read-only history store on PostgreSQL.
// It serves the four collections the assistant reads per request: shopping
// lists, list items, purchase history and price history.
package history

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	postgres "github.com/heartmarshall/shopping-assistant/internal/adapter/postgres"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo reads user history. Every method orders rows newest first with the
// primary key as tie-break, so a snapshot always reads back in the same order.
type Repo struct {
	q postgres.Querier
}

// New creates a new history repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// RecentLists returns up to limit of the user's lists, most recently updated first.
func (r *Repo) RecentLists(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ShoppingList, error) {
	b := psql.
		Select("id", "user_id", "name", "created_at", "updated_at").
		From("shopping_lists").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id DESC")

	return collect(ctx, r, b, limit, "shopping_lists", userID, func(row pgx.Rows) (domain.ShoppingList, error) {
		var l domain.ShoppingList
		err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
		return l, err
	})
}

// ListItems returns every non-deleted item of the list. A list that does not
// exist or belongs to another user yields no items.
func (r *Repo) ListItems(ctx context.Context, userID, listID uuid.UUID) ([]domain.ListItem, error) {
	b := psql.
		Select("li.id", "li.list_id", "li.name", "li.quantity::text", "li.unit", "li.category", "li.checked").
		From("list_items li").
		Join("shopping_lists sl ON sl.id = li.list_id").
		Where(sq.Eq{"sl.user_id": userID, "li.list_id": listID, "li.deleted": false}).
		OrderBy("li.created_at DESC", "li.id DESC")

	return collect(ctx, r, b, 0, "list_items", userID, func(row pgx.Rows) (domain.ListItem, error) {
		var (
			it  domain.ListItem
			qty string
		)
		if err := row.Scan(&it.ID, &it.ListID, &it.Name, &qty, &it.Unit, &it.Category, &it.Checked); err != nil {
			return it, err
		}
		q, err := decimal.NewFromString(qty)
		if err != nil {
			return it, fmt.Errorf("parse quantity %q: %w", qty, err)
		}
		it.Quantity = q
		return it, nil
	})
}

// RecentPurchases returns up to limit purchases, newest first.
func (r *Repo) RecentPurchases(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PurchaseRecord, error) {
	b := psql.
		Select("id", "item_name", "category", "quantity::text", "unit", "purchased_at").
		From("purchase_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("purchased_at DESC", "id DESC")

	return collect(ctx, r, b, limit, "purchase_history", userID, func(row pgx.Rows) (domain.PurchaseRecord, error) {
		var (
			p   domain.PurchaseRecord
			qty string
		)
		if err := row.Scan(&p.ID, &p.ItemName, &p.Category, &qty, &p.Unit, &p.PurchasedAt); err != nil {
			return p, err
		}
		q, err := decimal.NewFromString(qty)
		if err != nil {
			return p, fmt.Errorf("parse quantity %q: %w", qty, err)
		}
		p.Quantity = q
		return p, nil
	})
}

// RecentPrices returns up to limit price observations, newest first.
// A NULL or negative stored price is returned as unknown.
func (r *Repo) RecentPrices(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PriceRecord, error) {
	b := psql.
		Select("id", "item_name", "price::text", "store", "purchased_at").
		From("price_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("purchased_at DESC", "id DESC")

	return collect(ctx, r, b, limit, "price_history", userID, func(row pgx.Rows) (domain.PriceRecord, error) {
		var (
			p     domain.PriceRecord
			price *string
		)
		if err := row.Scan(&p.ID, &p.ItemName, &price, &p.Store, &p.PurchasedAt); err != nil {
			return p, err
		}
		p.Price = parsePrice(price)
		return p, nil
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// collect runs the query and scans every row. limit <= 0 means no LIMIT.
// The result is never nil, so "no rows" stays distinguishable from a failure.
func collect[T any](
	ctx context.Context,
	r *Repo,
	b sq.SelectBuilder,
	limit int,
	collection string,
	userID uuid.UUID,
	scan func(pgx.Rows) (T, error),
) ([]T, error) {
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", collection, err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, collection, userID)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, postgres.MapError(fmt.Errorf("scan %s: %w", collection, err), collection, userID)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, collection, userID)
	}

	return out, nil
}

func parsePrice(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(*s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
