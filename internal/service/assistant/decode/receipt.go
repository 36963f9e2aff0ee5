package decode

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

const (
	moneyPlaces     = 2
	unitPricePlaces = 4
)

// Receipt decodes a parsed receipt, keeping at most max items. Line totals
// and the grand total are recomputed locally; the model's own total only
// survives as ReportedTotal.
func Receipt(raw string, max int) Result[domain.Receipt] {
	items := list(raw, max, receiptItem)
	if items.Outcome == Reject {
		return Result[domain.Receipt]{Outcome: Reject, Err: items.Err, Dropped: items.Dropped}
	}

	// parse cannot fail here: list already accepted the document.
	obj, _ := parseObject(raw)

	rcpt := domain.Receipt{
		Store: obj.str("store"),
		Date:  isoDate(obj.str("date")),
		Items: items.Value,
		Total: SumLines(items.Value),
	}
	if total, ok := obj.number("total"); ok {
		rcpt.ReportedTotal = decimal.NewNullDecimal(total)
	}
	return Result[domain.Receipt]{Outcome: Accept, Value: rcpt, Dropped: items.Dropped}
}

func receiptItem(o object) (domain.ReceiptItem, bool) {
	name, ok := o.name()
	if !ok {
		return domain.ReceiptItem{}, false
	}
	qty, ok := o.quantity()
	if !ok {
		return domain.ReceiptItem{}, false
	}

	unitPrice, hasUnit := o.number("unitPrice")
	if o.present("unitPrice") && !hasUnit {
		return domain.ReceiptItem{}, false
	}
	totalPrice, hasTotal := o.number("totalPrice")
	if o.present("totalPrice") && !hasTotal {
		return domain.ReceiptItem{}, false
	}

	var line decimal.Decimal
	switch {
	case hasUnit:
		line = LineTotal(qty, unitPrice)
	case hasTotal:
		// Only case where the model's line total is used: there is no unit
		// price to recompute it from.
		unitPrice = totalPrice.Div(qty).Round(unitPricePlaces)
		line = totalPrice.Round(moneyPlaces)
	default:
		return domain.ReceiptItem{}, false
	}
	if unitPrice.IsNegative() || line.IsNegative() {
		return domain.ReceiptItem{}, false
	}

	return domain.ReceiptItem{
		Name:       name,
		Quantity:   qty,
		Unit:       o.unit(),
		Category:   o.strPtr("category"),
		UnitPrice:  unitPrice,
		TotalPrice: line,
	}, true
}

// LineTotal is quantity times unit price rounded half up to cents:
// 0.374 x 12.50 = 4.675 -> 4.68.
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice).Round(moneyPlaces)
}

// SumLines adds up the line totals.
func SumLines(items []domain.ReceiptItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// isoDate keeps s only if it is a YYYY-MM-DD date.
func isoDate(s string) string {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return ""
	}
	return s
}
