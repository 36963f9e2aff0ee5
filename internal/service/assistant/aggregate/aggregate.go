// Package aggregate folds raw purchase and price history into the bounded
// AggregateSummary that is put into prompts.
//
// Category spend is a soft join: a price counts toward a purchase when the
// item names are equal and both happened on the same UTC calendar day. It is
// a matching policy, not a relational join, and can both miss (a price
// recorded the day after) and over-match (two purchases of the same item on
// one day share the first price). Inputs are bounded by the history limits,
// so the O(purchases x prices) scan stays small.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// MaxCategories is the number of category buckets kept in a summary.
const MaxCategories = 3

// TopPurchased counts purchases per exact item name and returns the k most
// frequent. Equal counts keep the order in which names were first seen.
func TopPurchased(purchases []domain.PurchaseRecord, k int) []domain.ItemCount {
	if k <= 0 {
		return []domain.ItemCount{}
	}

	counts := make(map[string]int, len(purchases))
	order := make([]string, 0, len(purchases))
	for _, p := range purchases {
		if _, seen := counts[p.ItemName]; !seen {
			order = append(order, p.ItemName)
		}
		counts[p.ItemName]++
	}

	out := make([]domain.ItemCount, 0, len(order))
	for _, name := range order {
		out = append(out, domain.ItemCount{Name: name, Count: counts[name]})
	}
	slices.SortStableFunc(out, func(a, b domain.ItemCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// SameDay reports whether a and b fall on the same calendar date in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// MatchPrice returns the first price record with the purchase's item name on
// the same day. Unknown prices never match.
func MatchPrice(p domain.PurchaseRecord, prices []domain.PriceRecord) (decimal.Decimal, bool) {
	for _, pr := range prices {
		if pr.Price.Valid && pr.ItemName == p.ItemName && SameDay(pr.PurchasedAt, p.PurchasedAt) {
			return pr.Price.Decimal, true
		}
	}
	return decimal.Zero, false
}

// CategorySpend sums matched prices per purchase category and returns the k
// largest buckets. Purchases without a category go to "Uncategorized".
// Equal totals keep first-seen order.
func CategorySpend(purchases []domain.PurchaseRecord, prices []domain.PriceRecord, k int) []domain.CategoryTotal {
	if k <= 0 {
		return []domain.CategoryTotal{}
	}

	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, p := range purchases {
		price, ok := MatchPrice(p, prices)
		if !ok {
			continue
		}
		cat := p.CategoryName()
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] = totals[cat].Add(price)
	}

	out := make([]domain.CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, domain.CategoryTotal{Category: cat, Total: totals[cat]})
	}
	slices.SortStableFunc(out, func(a, b domain.CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// TotalSpent is the exact sum of all known prices.
func TotalSpent(prices []domain.PriceRecord) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p.PriceOrZero())
	}
	return total
}

// Summarize builds the summary with the top topK items.
func Summarize(purchases []domain.PurchaseRecord, prices []domain.PriceRecord, topK int) domain.AggregateSummary {
	return domain.AggregateSummary{
		TopPurchasedItems:  TopPurchased(purchases, topK),
		CategorySpend:      CategorySpend(purchases, prices, MaxCategories),
		TotalSpent:         TotalSpent(prices),
		TotalPurchaseCount: len(purchases),
	}
}

// Money renders an amount with exactly two decimals, half away from zero.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
