package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant"
	"github.com/heartmarshall/shopping-assistant/pkg/ctxutil"
)

// assistantService defines the minimal interface needed by AssistantHandler.
type assistantService interface {
	Chat(ctx context.Context, in assistant.ChatInput) (string, error)
	Suggest(ctx context.Context, in assistant.SuggestInput) ([]domain.SuggestedItem, error)
	Validate(ctx context.Context, in assistant.ValidateInput) ([]domain.ValidatedItem, error)
	Normalize(ctx context.Context, in assistant.NormalizeInput) (domain.NormalizedItem, error)
	ParseReceipt(ctx context.Context, in assistant.ReceiptInput) (domain.Receipt, error)
}

// AssistantHandler serves the /api/assistant endpoints.
type AssistantHandler struct {
	svc     assistantService
	log     *slog.Logger
	maxBody int64
}

// NewAssistantHandler creates an AssistantHandler. Request bodies larger
// than maxBody bytes are rejected.
func NewAssistantHandler(svc assistantService, logger *slog.Logger, maxBody int64) *AssistantHandler {
	return &AssistantHandler{svc: svc, log: logger.With("handler", "assistant"), maxBody: maxBody}
}

// Register mounts the assistant routes on mux.
func (h *AssistantHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assistant/chat", h.Chat)
	mux.HandleFunc("POST /api/assistant/suggestions", h.Suggest)
	mux.HandleFunc("POST /api/assistant/validate", h.Validate)
	mux.HandleFunc("POST /api/assistant/normalize", h.Normalize)
	mux.HandleFunc("POST /api/assistant/receipt", h.ParseReceipt)
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	UserID  string     `json:"userId"`
	ListID  string     `json:"listId"`
	Message string     `json:"message"`
	History []chatTurn `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type suggestRequest struct {
	UserID     string `json:"userId"`
	ListID     string `json:"listId"`
	Prompt     string `json:"prompt"`
	MaxResults int    `json:"maxResults"`
}

type itemRequest struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Category *string         `json:"category"`
}

type validateRequest struct {
	UserID     string        `json:"userId"`
	ListID     string        `json:"listId"`
	Items      []itemRequest `json:"items"`
	Prompt     string        `json:"prompt"`
	MaxResults int           `json:"maxResults"`
}

type normalizeRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type receiptRequest struct {
	UserID      string `json:"userId"`
	Text        string `json:"text"`
	ImageBase64 string `json:"imageBase64"`
	MIMEType    string `json:"mimeType"`
	MaxResults  int    `json:"maxResults"`
}

type suggestedItemResponse struct {
	Name     string      `json:"name"`
	Quantity json.Number `json:"quantity"`
	Unit     string      `json:"unit"`
	Category *string     `json:"category,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

type validatedItemResponse struct {
	Name       string      `json:"name"`
	Quantity   json.Number `json:"quantity"`
	Unit       string      `json:"unit"`
	Category   *string     `json:"category,omitempty"`
	ShouldKeep bool        `json:"shouldKeep"`
	Reason     string      `json:"reason,omitempty"`
}

type normalizeResponse struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Fallback bool   `json:"fallback"`
}

type receiptItemResponse struct {
	Name       string      `json:"name"`
	Quantity   json.Number `json:"quantity"`
	Unit       string      `json:"unit"`
	Category   *string     `json:"category,omitempty"`
	UnitPrice  json.Number `json:"unitPrice"`
	TotalPrice json.Number `json:"totalPrice"`
}

type receiptResponse struct {
	Store string                `json:"store"`
	Date  string                `json:"date"`
	Items []receiptItemResponse `json:"items"`
	Total json.Number           `json:"total"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Chat handles POST /api/assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []domain.FieldError
	userID := h.userID(r, req.UserID, &errs)
	listID := parseOptionalID("list_id", req.ListID, &errs)
	if len(errs) > 0 {
		h.fail(w, r, domain.NewValidationErrors(errs))
		return
	}

	history := make([]domain.ChatTurn, len(req.History))
	for i, t := range req.History {
		history[i] = domain.ChatTurn{Role: domain.ChatRole(strings.ToLower(strings.TrimSpace(t.Role))), Content: t.Content}
	}

	reply, err := h.svc.Chat(r.Context(), assistant.ChatInput{
		UserID:  userID,
		ListID:  listID,
		Message: req.Message,
		History: history,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// Suggest handles POST /api/assistant/suggestions.
func (h *AssistantHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []domain.FieldError
	userID := h.userID(r, req.UserID, &errs)
	listID := parseOptionalID("list_id", req.ListID, &errs)
	if len(errs) > 0 {
		h.fail(w, r, domain.NewValidationErrors(errs))
		return
	}

	items, err := h.svc.Suggest(r.Context(), assistant.SuggestInput{
		UserID:     userID,
		ListID:     listID,
		Prompt:     req.Prompt,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]suggestedItemResponse, len(items))
	for i, it := range items {
		out[i] = suggestedItemResponse{
			Name:     it.Name,
			Quantity: number(it.Quantity),
			Unit:     it.Unit,
			Category: it.Category,
			Reason:   it.Reason,
		}
	}
	writeJSON(w, http.StatusOK, itemsResponse[suggestedItemResponse]{Items: out})
}

// Validate handles POST /api/assistant/validate.
func (h *AssistantHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []domain.FieldError
	userID := h.userID(r, req.UserID, &errs)
	listID := parseOptionalID("list_id", req.ListID, &errs)
	if len(errs) > 0 {
		h.fail(w, r, domain.NewValidationErrors(errs))
		return
	}

	in := assistant.ValidateInput{UserID: userID, ListID: listID, Prompt: req.Prompt, MaxResults: req.MaxResults}
	for _, it := range req.Items {
		in.Items = append(in.Items, assistant.ItemInput{
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Category: it.Category,
		})
	}

	items, err := h.svc.Validate(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]validatedItemResponse, len(items))
	for i, it := range items {
		out[i] = validatedItemResponse{
			Name:       it.Name,
			Quantity:   number(it.Quantity),
			Unit:       it.Unit,
			Category:   it.Category,
			ShouldKeep: it.ShouldKeep,
			Reason:     it.Reason,
		}
	}
	writeJSON(w, http.StatusOK, itemsResponse[validatedItemResponse]{Items: out})
}

// Normalize handles POST /api/assistant/normalize.
func (h *AssistantHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []domain.FieldError
	userID := h.userID(r, req.UserID, &errs)
	if len(errs) > 0 {
		h.fail(w, r, domain.NewValidationErrors(errs))
		return
	}

	item, err := h.svc.Normalize(r.Context(), assistant.NormalizeInput{UserID: userID, Name: req.Name})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, normalizeResponse{
		Name:     item.Name,
		Category: item.Category,
		Unit:     item.Unit,
		Fallback: item.Fallback,
	})
}

// ParseReceipt handles POST /api/assistant/receipt.
func (h *AssistantHandler) ParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !h.decode(w, r, &req) {
		return
	}

	var errs []domain.FieldError
	userID := h.userID(r, req.UserID, &errs)
	image, mimeType := decodeImage(req.ImageBase64, req.MIMEType, &errs)
	if len(errs) > 0 {
		h.fail(w, r, domain.NewValidationErrors(errs))
		return
	}

	rcpt, err := h.svc.ParseReceipt(r.Context(), assistant.ReceiptInput{
		UserID:     userID,
		Text:       req.Text,
		Image:      image,
		MIMEType:   mimeType,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := receiptResponse{
		Store: rcpt.Store,
		Date:  rcpt.Date,
		Items: make([]receiptItemResponse, len(rcpt.Items)),
		Total: money(rcpt.Total),
	}
	for i, it := range rcpt.Items {
		out.Items[i] = receiptItemResponse{
			Name:       it.Name,
			Quantity:   number(it.Quantity),
			Unit:       it.Unit,
			Category:   it.Category,
			UnitPrice:  number(it.UnitPrice),
			TotalPrice: money(it.TotalPrice),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// decode reads a size-limited JSON body into v and answers 400 on failure.
func (h *AssistantHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		msg := "invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "request body too large"
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, msg)
		return false
	}
	return true
}

// userID resolves the caller from the body, falling back to the X-User-Id
// header. An empty result is left for the service to reject.
func (h *AssistantHandler) userID(r *http.Request, raw string, errs *[]domain.FieldError) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		id, _ := ctxutil.UserIDFromCtx(r.Context())
		return id
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		*errs = append(*errs, domain.FieldError{Field: "user_id", Message: "must be a UUID"})
		return uuid.Nil
	}
	return id
}

func parseOptionalID(field, raw string, errs *[]domain.FieldError) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		*errs = append(*errs, domain.FieldError{Field: field, Message: "must be a UUID"})
		return nil
	}
	return &id
}

// decodeImage accepts raw base64 or a data URL; a data URL's media type
// wins over mimeType.
func decodeImage(raw, mimeType string, errs *[]domain.FieldError) ([]byte, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, mimeType
	}
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			*errs = append(*errs, domain.FieldError{Field: "image_base64", Message: "unsupported data URL"})
			return nil, mimeType
		}
		mimeType = strings.TrimSuffix(meta, ";base64")
		raw = payload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		*errs = append(*errs, domain.FieldError{Field: "image_base64", Message: "invalid base64"})
		return nil, mimeType
	}
	return data, mimeType
}

func (h *AssistantHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.log, err)
}

func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func money(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(2)) }
