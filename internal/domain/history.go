package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingList is a user's list header. Items are loaded separately.
type ShoppingList struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListItem is one line on a shopping list. Deleted items are never
// returned by the history store.
type ListItem struct {
	ID       uuid.UUID
	ListID   uuid.UUID
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Category *string
	Checked  bool
	Deleted  bool
}

// PurchaseRecord is one bought item from the purchase history.
type PurchaseRecord struct {
	ID          uuid.UUID
	ItemName    string
	Category    *string
	Quantity    decimal.Decimal
	Unit        string
	PurchasedAt time.Time
}

// CategoryName returns the purchase category or UncategorizedCategory.
func (p PurchaseRecord) CategoryName() string {
	return CategoryOrDefault(p.Category, UncategorizedCategory)
}

// PriceRecord is a price observed for an item at a store. An invalid Price
// means the price is unknown.
type PriceRecord struct {
	ID          uuid.UUID
	ItemName    string
	Price       decimal.NullDecimal
	Store       string
	PurchasedAt time.Time
}

// PriceOrZero returns the price, treating an unknown price as zero.
func (p PriceRecord) PriceOrZero() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

// CategoryOrDefault dereferences category, returning def for nil or blank values.
func CategoryOrDefault(category *string, def string) string {
	if category == nil || CollapseSpaces(*category) == "" {
		return def
	}
	return *category
}
