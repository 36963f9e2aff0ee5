package domain

import "github.com/shopspring/decimal"

// ItemCount is an item name with the number of times it was purchased.
type ItemCount struct {
	Name  string
	Count int
}

// CategoryTotal is the money spent in one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// AggregateSummary is the bounded history digest put into a prompt.
// It is built per request and never persisted.
type AggregateSummary struct {
	TopPurchasedItems  []ItemCount
	CategorySpend      []CategoryTotal
	TotalSpent         decimal.Decimal
	TotalPurchaseCount int
}

// IsEmpty reports whether the summary carries no history at all.
func (s AggregateSummary) IsEmpty() bool {
	return s.TotalPurchaseCount == 0 && s.TotalSpent.IsZero()
}
