package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func TestCategoryOrDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category *string
		want     string
	}{
		{name: "nil", category: nil, want: UncategorizedCategory},
		{name: "blank", category: ptr("  "), want: UncategorizedCategory},
		{name: "set", category: ptr("Dairy"), want: "Dairy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CategoryOrDefault(tt.category, UncategorizedCategory); got != tt.want {
				t.Errorf("CategoryOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceRecord_PriceOrZero(t *testing.T) {
	t.Parallel()

	known := PriceRecord{Price: decimal.NewNullDecimal(decimal.RequireFromString("3.49"))}
	if got := known.PriceOrZero(); !got.Equal(decimal.RequireFromString("3.49")) {
		t.Errorf("PriceOrZero() = %s, want 3.49", got)
	}

	unknown := PriceRecord{}
	if got := unknown.PriceOrZero(); !got.IsZero() {
		t.Errorf("PriceOrZero() = %s, want 0", got)
	}
}

func TestPurchaseRecord_CategoryName(t *testing.T) {
	t.Parallel()

	if got := (PurchaseRecord{}).CategoryName(); got != UncategorizedCategory {
		t.Errorf("CategoryName() = %q, want %q", got, UncategorizedCategory)
	}
	if got := (PurchaseRecord{Category: ptr("Bakery")}).CategoryName(); got != "Bakery" {
		t.Errorf("CategoryName() = %q, want Bakery", got)
	}
}
