package domain

import "github.com/shopspring/decimal"

// ChatTurn is one prior message of a chat transcript.
type ChatTurn struct {
	Role    ChatRole
	Content string
}

// Attachment is binary input sent along with a prompt, e.g. a receipt photo.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// ModelRequest is everything sent to the model in a single call.
type ModelRequest struct {
	Prompt      string
	History     []ChatTurn
	Attachments []Attachment
	// JSONOutput asks the backend to constrain output to a JSON document
	// when it supports doing so.
	JSONOutput bool
}

// SuggestedItem is an item the model proposes adding to a list.
type SuggestedItem struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Category *string
	Reason   string
}

// ValidatedItem is a list item with the model's keep/drop verdict.
type ValidatedItem struct {
	Name       string
	Quantity   decimal.Decimal
	Unit       string
	Category   *string
	ShouldKeep bool
	Reason     string
}

// ReceiptItem is one line extracted from a receipt. TotalPrice is always
// recomputed from Quantity and UnitPrice.
type ReceiptItem struct {
	Name       string
	Quantity   decimal.Decimal
	Unit       string
	Category   *string
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Receipt is a parsed receipt. Total is the sum of item totals; the total
// the model reported is kept in ReportedTotal for diagnostics only.
type Receipt struct {
	Store         string
	Date          string
	Items         []ReceiptItem
	Total         decimal.Decimal
	ReportedTotal decimal.NullDecimal
}

// NormalizedItem is the canonical form of a free-text item name.
type NormalizedItem struct {
	Name     string
	Category string
	Unit     string
	// Fallback is true when the model output was unusable and the name was
	// normalized locally.
	Fallback bool
}
