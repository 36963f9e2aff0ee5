// Package prompt renders the single text prompt sent to the model for each
// assistant endpoint. Every structured prompt ends with a literal JSON
// example of the output shape; the decoder relies on the model echoing it.
package prompt

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/aggregate"
)

// Market describes where the user shops. It drives vocabulary, currency and
// the realistic quantity guidance.
type Market struct {
	Locale   string
	Market   string
	Currency string
}

// Limits are the rune caps applied to free-form user text before it is
// interpolated into a prompt.
type Limits struct {
	NormalizeInput int
	ChatMessage    int
	Prompt         int
	ReceiptText    int
}

// Composer builds prompts for one market.
type Composer struct {
	market Market
	limits Limits
}

// NewComposer creates a Composer.
func NewComposer(market Market, limits Limits) *Composer {
	return &Composer{market: market, limits: limits}
}

// Limits returns the caps the composer applies.
func (c *Composer) Limits() Limits { return c.limits }

const persona = "You are a helpful grocery shopping assistant inside a shopping-list app."

const jsonOnly = "Respond with ONLY the JSON object in exactly the shape of the example. " +
	"No markdown, no code fences, no explanations before or after it."

// ChatInput is the context of one chat turn.
type ChatInput struct {
	Summary     domain.AggregateSummary
	RecentLists []domain.ShoppingList
	OpenList    []domain.ListItem
	Message     string
}

// Chat renders the chat prompt. The answer is plain text, not JSON.
func (c *Composer) Chat(in ChatInput) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	b.WriteString("Answer the user's question about groceries, meals, budgets or their lists. " +
		"Be concise and practical; use short paragraphs or bullet lists.\n\n")
	c.writeGuidance(&b)
	writeSection(&b, "User's shopping history", SummaryLines(in.Summary, c.market.Currency))

	if len(in.RecentLists) > 0 {
		names := make([]string, len(in.RecentLists))
		for i, l := range in.RecentLists {
			names[i] = "- " + l.Name
		}
		writeSection(&b, "Recent lists", strings.Join(names, "\n"))
	}
	if len(in.OpenList) > 0 {
		writeSection(&b, "Items on the open list", itemLines(in.OpenList))
	}

	writeSection(&b, "User message", quote(Sanitize(in.Message, c.limits.ChatMessage)))
	b.WriteString("Reply in plain text in the user's language. Do not output JSON.")
	return b.String()
}

// SuggestInput is the context of a suggestion request.
type SuggestInput struct {
	Summary    domain.AggregateSummary
	OpenList   []domain.ListItem
	Request    string
	MaxResults int
}

const suggestExample = `{"items":[{"name":"Whole Milk","quantity":2,"unit":"l","category":"Dairy","reason":"You buy milk almost every week"},{"name":"Bananas","quantity":1.5,"unit":"kg","category":"Produce","reason":"Frequently bought with cereal"}]}`

// Suggest renders the prompt for list suggestions.
func (c *Composer) Suggest(in SuggestInput) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	fmt.Fprintf(&b, "Suggest up to %d items the user is likely to need next, based on their purchase habits.\n", in.MaxResults)
	b.WriteString("Do not suggest items that are already on the open list.\n\n")
	c.writeGuidance(&b)
	writeSection(&b, "User's shopping history", SummaryLines(in.Summary, c.market.Currency))
	writeSection(&b, "Items already on the open list", itemLinesOrNone(in.OpenList))
	if req := Sanitize(in.Request, c.limits.Prompt); req != "" {
		writeSection(&b, "User request", quote(req))
	}
	writeSection(&b, "Output example", suggestExample)
	b.WriteString(jsonOnly)
	return b.String()
}

// ValidateInput is the context of a list validation request.
type ValidateInput struct {
	Summary    domain.AggregateSummary
	Items      []domain.ListItem
	Request    string
	MaxResults int
}

const validateExample = `{"items":[{"name":"Milk","quantity":1,"unit":"l","category":"Dairy","shouldKeep":true,"reason":"Staple you buy weekly"},{"name":"Milk 3%","quantity":1,"unit":"l","category":"Dairy","shouldKeep":false,"reason":"Duplicate of Milk"}]}`

// Validate renders the prompt that reviews a list for duplicates, unrealistic
// quantities and items the user rarely buys.
func (c *Composer) Validate(in ValidateInput) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	b.WriteString("Review every item of the shopping list below. For each item decide whether to keep it " +
		"(shouldKeep true) or drop it (shouldKeep false) and give a short reason. " +
		"Flag duplicates, unrealistic quantities and units, and items that do not fit the user's habits. " +
		"Fix obvious typos in names and return the quantity and unit you recommend.\n")
	fmt.Fprintf(&b, "Return at most %d items, in the order of the list.\n\n", in.MaxResults)
	c.writeGuidance(&b)
	writeSection(&b, "User's shopping history", SummaryLines(in.Summary, c.market.Currency))
	writeSection(&b, "Shopping list", itemLinesOrNone(in.Items))
	if req := Sanitize(in.Request, c.limits.Prompt); req != "" {
		writeSection(&b, "User request", quote(req))
	}
	writeSection(&b, "Output example", validateExample)
	b.WriteString(jsonOnly)
	return b.String()
}

const normalizeExample = `{"name":"Greek Yogurt","category":"Dairy","unit":"pcs"}`

// Normalize renders the prompt that turns a free-text item name into its
// canonical name, category and unit.
func (c *Composer) Normalize(name string) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	b.WriteString("Normalize the grocery item name below: fix spelling, use the common product name " +
		"in title case without brand noise, and pick its category and default unit.\n\n")
	c.writeGuidance(&b)
	writeSection(&b, "Item name", quote(Sanitize(name, c.limits.NormalizeInput)))
	writeSection(&b, "Output example", normalizeExample)
	b.WriteString(jsonOnly)
	return b.String()
}

// ReceiptInput is the content of a receipt to parse.
type ReceiptInput struct {
	Text       string
	HasImage   bool
	MaxResults int
}

const receiptExample = `{"store":"Fresh Market","date":"2024-01-15","items":[{"name":"Cheddar Cheese","quantity":0.374,"unit":"kg","category":"Dairy","unitPrice":12.50,"totalPrice":4.68},{"name":"Whole Milk","quantity":2,"unit":"l","category":"Dairy","unitPrice":1.25,"totalPrice":2.50}],"total":7.18}`

// Receipt renders the prompt that extracts purchased items from a receipt.
// The text is expected to be cleaned with CleanReceiptText already.
func (c *Composer) Receipt(in ReceiptInput) string {
	var b strings.Builder
	b.WriteString(persona + "\n")
	b.WriteString("Extract the purchased products from the receipt.\n")
	b.WriteString(`Rules:
- Only real purchased products go into items. Never include the store header, tax ids, totals, VAT, payment, change or discount lines.
- A line that starts with a quantity followed by "@" belongs to the product line above it.
- quantity is a number (fractional for weighed goods), unitPrice is the price of one unit, totalPrice is the line amount.
- date is ISO-8601 (YYYY-MM-DD) or an empty string when it is not printed.
- Prefer including an uncertain product over dropping it.
`)
	fmt.Fprintf(&b, "- Return at most %d items.\n\n", in.MaxResults)
	c.writeGuidance(&b)
	if in.HasImage {
		b.WriteString("The receipt photo is attached.\n\n")
	}
	if text := Truncate(in.Text, c.limits.ReceiptText); text != "" {
		writeSection(&b, "Receipt text", quote(text))
	}
	writeSection(&b, "Output example", receiptExample)
	b.WriteString(jsonOnly)
	return b.String()
}

func (c *Composer) writeGuidance(b *strings.Builder) {
	fmt.Fprintf(b, "Market: %s (locale %s). Prices are in %s. Use product names shoppers in this market recognize.\n",
		c.market.Market, c.market.Locale, c.market.Currency)
	b.WriteString("Use realistic household quantities: produce 0.25-3 kg, meat and fish 0.2-2 kg, " +
		"milk and juice 1-4 l, eggs 6-30 pcs, bread 1-2 pcs, pantry goods 1-3 packs.\n")
	fmt.Fprintf(b, "Categories (use exactly one of): %s.\n", strings.Join(domain.Categories, ", "))
	fmt.Fprintf(b, "Units (use exactly one of): %s.\n\n", strings.Join(domain.Units, ", "))
}

// SummaryLines renders the summary as human-readable lines.
func SummaryLines(s domain.AggregateSummary, currency string) string {
	if s.IsEmpty() {
		return "No purchase history yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Purchases recorded: %d\n", s.TotalPurchaseCount)
	fmt.Fprintf(&b, "Total spent: %s %s\n", aggregate.Money(s.TotalSpent), currency)
	if len(s.TopPurchasedItems) > 0 {
		b.WriteString("Most purchased items:\n")
		for _, it := range s.TopPurchasedItems {
			fmt.Fprintf(&b, "- %s (%dx)\n", it.Name, it.Count)
		}
	}
	if len(s.CategorySpend) > 0 {
		b.WriteString("Top spending categories:\n")
		for _, ct := range s.CategorySpend {
			fmt.Fprintf(&b, "- %s: %s %s\n", ct.Category, aggregate.Money(ct.Total), currency)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func itemLines(items []domain.ListItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		line := fmt.Sprintf("- %s: %s %s", it.Name, it.Quantity.String(), it.Unit)
		if it.Category != nil && *it.Category != "" {
			line += " [" + *it.Category + "]"
		}
		if it.Checked {
			line += " (checked)"
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func itemLinesOrNone(items []domain.ListItem) string {
	if len(items) == 0 {
		return "(none)"
	}
	return itemLines(items)
}

func writeSection(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "%s:\n%s\n\n", title, body)
}

// quote fences user text so it reads as data, not instructions.
func quote(s string) string {
	return `"""` + "\n" + strings.ReplaceAll(s, `"""`, `"`) + "\n" + `"""`
}

// Sanitize collapses whitespace and caps the text at max runes.
func Sanitize(s string, max int) string {
	return domain.Truncate(domain.CollapseSpaces(s), max)
}

// Truncate trims surrounding whitespace and caps the text at max runes,
// keeping line breaks.
func Truncate(s string, max int) string {
	return strings.TrimSpace(domain.Truncate(strings.TrimSpace(s), max))
}
