// Package decode turns raw model text into validated domain values.
//
// Every decoder returns a Result tagged with its Outcome instead of an error
// alone, so callers never have to inspect error strings: Accept carries a
// value (possibly with some items dropped), Fallback carries a locally built
// value, Reject carries the reason.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// Outcome is the kind of a decode result.
type Outcome int

const (
	Accept Outcome = iota
	Fallback
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "accept"
	case Fallback:
		return "fallback"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of decoding one model response.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	// Err is set only for Reject and wraps ErrInvalidAIResponseFormat or
	// ErrInvalidResponseStructure.
	Err error
	// Dropped counts items discarded by per-item checks.
	Dropped int
}

func reject[T any](err error) Result[T] {
	return Result[T]{Outcome: Reject, Err: err}
}

// StripFences removes a surrounding markdown code fence (```json or ```)
// and whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "```"), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type object map[string]json.RawMessage

// parseObject separates syntax errors (ErrInvalidAIResponseFormat) from
// well-formed JSON of the wrong shape (ErrInvalidResponseStructure).
func parseObject(raw string) (object, error) {
	var doc json.RawMessage
	if err := json.Unmarshal([]byte(StripFences(raw)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAIResponseFormat, err)
	}
	if len(doc) == 0 || doc[0] != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", domain.ErrInvalidResponseStructure)
	}
	var obj object
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponseStructure, err)
	}
	return obj, nil
}

// items returns the mandatory top-level items array.
func (o object) items() ([]json.RawMessage, error) {
	raw, ok := o["items"]
	if !ok {
		return nil, fmt.Errorf("%w: missing items", domain.ErrInvalidResponseStructure)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%w: items is not an array", domain.ErrInvalidResponseStructure)
	}
	return items, nil
}

func (o object) present(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// name returns the collapsed, non-blank name string.
func (o object) name() (string, bool) {
	var s string
	if err := json.Unmarshal(o["name"], &s); err != nil {
		return "", false
	}
	s = domain.CollapseSpaces(s)
	return s, s != ""
}

// str returns the collapsed string at key, or "" if absent or not a string.
func (o object) str(key string) string {
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return ""
	}
	return domain.CollapseSpaces(s)
}

func (o object) strPtr(key string) *string {
	if s := o.str(key); s != "" {
		return &s
	}
	return nil
}

// number parses a JSON number or a numeric string at key.
func (o object) number(key string) (decimal.Decimal, bool) {
	raw := o[key]
	if isNull(raw) {
		return decimal.Decimal{}, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, false
		}
		n = json.Number(strings.TrimSpace(s))
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// quantity returns the item quantity; an absent quantity is 1.
func (o object) quantity() (decimal.Decimal, bool) {
	if !o.present("quantity") {
		return decimal.NewFromInt(1), true
	}
	q, ok := o.number("quantity")
	if !ok || !q.IsPositive() {
		return decimal.Decimal{}, false
	}
	return q, true
}

func (o object) unit() string {
	if u := o.str("unit"); u != "" {
		return u
	}
	return domain.DefaultUnit
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeItems parses each element as an object and keeps the ones fn accepts.
func decodeItems[T any](raws []json.RawMessage, fn func(object) (T, bool)) ([]T, int) {
	out := make([]T, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		var item object
		if err := json.Unmarshal(raw, &item); err != nil || item == nil {
			dropped++
			continue
		}
		v, ok := fn(item)
		if !ok {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

// list runs the shared list-shape pipeline: parse, require items, check
// every item, reject an empty result, truncate to max.
func list[T any](raw string, max int, fn func(object) (T, bool)) Result[[]T] {
	obj, err := parseObject(raw)
	if err != nil {
		return reject[[]T](err)
	}
	raws, err := obj.items()
	if err != nil {
		return reject[[]T](err)
	}

	items, dropped := decodeItems(raws, fn)
	if len(items) == 0 {
		return Result[[]T]{
			Outcome: Reject,
			Err:     fmt.Errorf("%w: no valid items (%d dropped)", domain.ErrInvalidResponseStructure, dropped),
			Dropped: dropped,
		}
	}
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return Result[[]T]{Outcome: Accept, Value: items, Dropped: dropped}
}

// Suggestions decodes a suggestion list, keeping at most max items.
func Suggestions(raw string, max int) Result[[]domain.SuggestedItem] {
	return list(raw, max, func(o object) (domain.SuggestedItem, bool) {
		name, ok := o.name()
		if !ok {
			return domain.SuggestedItem{}, false
		}
		qty, ok := o.quantity()
		if !ok {
			return domain.SuggestedItem{}, false
		}
		return domain.SuggestedItem{
			Name:     name,
			Quantity: qty,
			Unit:     o.unit(),
			Category: o.strPtr("category"),
			Reason:   o.str("reason"),
		}, true
	})
}

// Validations decodes a list review, keeping at most max items.
func Validations(raw string, max int) Result[[]domain.ValidatedItem] {
	return list(raw, max, func(o object) (domain.ValidatedItem, bool) {
		name, ok := o.name()
		if !ok {
			return domain.ValidatedItem{}, false
		}
		qty, ok := o.quantity()
		if !ok {
			return domain.ValidatedItem{}, false
		}
		var keep bool
		if !o.present("shouldKeep") || json.Unmarshal(o["shouldKeep"], &keep) != nil {
			return domain.ValidatedItem{}, false
		}
		return domain.ValidatedItem{
			Name:       name,
			Quantity:   qty,
			Unit:       o.unit(),
			Category:   o.strPtr("category"),
			ShouldKeep: keep,
			Reason:     o.str("reason"),
		}, true
	})
}

// Normalized decodes a normalized item name. When the response is not JSON
// at all, the input itself is title-cased and returned as a Fallback; JSON of
// any other shape than an object with a name is rejected.
func Normalized(raw, input string) Result[domain.NormalizedItem] {
	obj, err := parseObject(raw)
	if err != nil && !errors.Is(err, domain.ErrInvalidAIResponseFormat) {
		return reject[domain.NormalizedItem](err)
	}
	if err != nil {
		return Result[domain.NormalizedItem]{
			Outcome: Fallback,
			Value: domain.NormalizedItem{
				Name:     domain.TitleCase(input),
				Category: domain.DefaultCategory,
				Unit:     domain.DefaultUnit,
				Fallback: true,
			},
		}
	}

	name, ok := obj.name()
	if !ok {
		return reject[domain.NormalizedItem](fmt.Errorf("%w: missing name", domain.ErrInvalidResponseStructure))
	}
	category := obj.str("category")
	if category == "" {
		category = domain.DefaultCategory
	}
	return Result[domain.NormalizedItem]{
		Outcome: Accept,
		Value: domain.NormalizedItem{
			Name:     name,
			Category: category,
			Unit:     obj.unit(),
		},
	}
}
