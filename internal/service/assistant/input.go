package assistant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

func requireUser(errs []domain.FieldError, userID uuid.UUID) []domain.FieldError {
	if userID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	return errs
}

func result(errs []domain.FieldError) error {
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ChatInput holds parameters for a chat turn.
type ChatInput struct {
	UserID  uuid.UUID
	ListID  *uuid.UUID
	Message string
	History []domain.ChatTurn
}

// Validate validates the chat input.
func (i ChatInput) Validate() error {
	errs := requireUser(nil, i.UserID)

	if strings.TrimSpace(i.Message) == "" {
		errs = append(errs, domain.FieldError{Field: "message", Message: "required"})
	}
	for _, turn := range i.History {
		if !turn.Role.IsValid() {
			errs = append(errs, domain.FieldError{Field: "history.role", Message: "must be user or assistant"})
			break
		}
	}
	return result(errs)
}

// SuggestInput holds parameters for list suggestions.
type SuggestInput struct {
	UserID     uuid.UUID
	ListID     *uuid.UUID
	Prompt     string
	MaxResults int
}

// Validate validates the suggest input.
func (i SuggestInput) Validate() error {
	return result(requireUser(nil, i.UserID))
}

// ItemInput is a list item supplied by the caller.
type ItemInput struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Category *string
}

// ValidateInput holds parameters for list validation. Items take
// precedence; when empty, the list identified by ListID is reviewed.
type ValidateInput struct {
	UserID     uuid.UUID
	ListID     *uuid.UUID
	Items      []ItemInput
	Prompt     string
	MaxResults int
}

// Validate validates the list validation input.
func (i ValidateInput) Validate() error {
	errs := requireUser(nil, i.UserID)

	if len(i.Items) == 0 && i.ListID == nil {
		errs = append(errs, domain.FieldError{Field: "items", Message: "items or list_id required"})
	}
	for _, it := range i.Items {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, domain.FieldError{Field: "items.name", Message: "required"})
			break
		}
	}
	for _, it := range i.Items {
		if it.Quantity.IsNegative() {
			errs = append(errs, domain.FieldError{Field: "items.quantity", Message: "must not be negative"})
			break
		}
	}
	return result(errs)
}

// listItems converts caller items into list items; a zero quantity means 1.
func (i ValidateInput) listItems() []domain.ListItem {
	out := make([]domain.ListItem, len(i.Items))
	for j, it := range i.Items {
		qty := it.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		unit := strings.TrimSpace(it.Unit)
		if unit == "" {
			unit = domain.DefaultUnit
		}
		out[j] = domain.ListItem{
			Name:     domain.CollapseSpaces(it.Name),
			Quantity: qty,
			Unit:     unit,
			Category: it.Category,
		}
	}
	return out
}

// NormalizeInput holds parameters for item name normalization.
type NormalizeInput struct {
	UserID uuid.UUID
	Name   string
}

// Validate validates the normalize input.
func (i NormalizeInput) Validate() error {
	errs := requireUser(nil, i.UserID)
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	return result(errs)
}

// ReceiptInput holds a receipt as OCR text, an image, or both.
type ReceiptInput struct {
	UserID     uuid.UUID
	Text       string
	Image      []byte
	MIMEType   string
	MaxResults int
}

const defaultImageMIME = "image/jpeg"

// Validate validates the receipt input against the maximum image size.
func (i ReceiptInput) Validate(maxImage int) error {
	errs := requireUser(nil, i.UserID)

	if strings.TrimSpace(i.Text) == "" && len(i.Image) == 0 {
		errs = append(errs, domain.FieldError{Field: "text", Message: "text or image required"})
	}
	if len(i.Image) > maxImage {
		errs = append(errs, domain.FieldError{Field: "image", Message: "too large"})
	}
	if len(i.Image) > 0 && i.MIMEType != "" && !strings.HasPrefix(i.MIMEType, "image/") {
		errs = append(errs, domain.FieldError{Field: "mime_type", Message: "must be an image type"})
	}
	return result(errs)
}

func (i ReceiptInput) mimeType() string {
	if i.MIMEType == "" {
		return defaultImageMIME
	}
	return i.MIMEType
}
