package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant"
	"github.com/heartmarshall/shopping-assistant/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mock (moq-style with func fields)
// ---------------------------------------------------------------------------

type assistantServiceMock struct {
	ChatFunc         func(ctx context.Context, in assistant.ChatInput) (string, error)
	SuggestFunc      func(ctx context.Context, in assistant.SuggestInput) ([]domain.SuggestedItem, error)
	ValidateFunc     func(ctx context.Context, in assistant.ValidateInput) ([]domain.ValidatedItem, error)
	NormalizeFunc    func(ctx context.Context, in assistant.NormalizeInput) (domain.NormalizedItem, error)
	ParseReceiptFunc func(ctx context.Context, in assistant.ReceiptInput) (domain.Receipt, error)

	calls int
}

var _ assistantService = &assistantServiceMock{}

func (m *assistantServiceMock) Chat(ctx context.Context, in assistant.ChatInput) (string, error) {
	m.calls++
	return m.ChatFunc(ctx, in)
}

func (m *assistantServiceMock) Suggest(ctx context.Context, in assistant.SuggestInput) ([]domain.SuggestedItem, error) {
	m.calls++
	return m.SuggestFunc(ctx, in)
}

func (m *assistantServiceMock) Validate(ctx context.Context, in assistant.ValidateInput) ([]domain.ValidatedItem, error) {
	m.calls++
	return m.ValidateFunc(ctx, in)
}

func (m *assistantServiceMock) Normalize(ctx context.Context, in assistant.NormalizeInput) (domain.NormalizedItem, error) {
	m.calls++
	return m.NormalizeFunc(ctx, in)
}

func (m *assistantServiceMock) ParseReceipt(ctx context.Context, in assistant.ReceiptInput) (domain.Receipt, error) {
	m.calls++
	return m.ParseReceiptFunc(ctx, in)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testUserID = uuid.MustParse("7b4c8f3e-2d1a-4e5b-9c6d-0a1b2c3d4e5f")

func newTestMux(svc assistantService) *http.ServeMux {
	mux := http.NewServeMux()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewAssistantHandler(svc, logger, 1<<16).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func ptr[T any](v T) *T { return &v }

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

func TestChat_Success(t *testing.T) {
	t.Parallel()

	listID := uuid.New()
	svc := &assistantServiceMock{
		ChatFunc: func(_ context.Context, in assistant.ChatInput) (string, error) {
			assert.Equal(t, testUserID, in.UserID)
			require.NotNil(t, in.ListID)
			assert.Equal(t, listID, *in.ListID)
			assert.Equal(t, "what for dinner?", in.Message)
			require.Len(t, in.History, 2)
			assert.Equal(t, domain.ChatRoleUser, in.History[0].Role)
			assert.Equal(t, domain.ChatRoleAssistant, in.History[1].Role)
			return "Pasta with tomatoes.", nil
		},
	}

	body := fmt.Sprintf(`{"userId":%q,"listId":%q,"message":"what for dinner?",
		"history":[{"role":"user","content":"hi"},{"role":"Assistant","content":"hello"}]}`, testUserID, listID)
	rec := do(t, newTestMux(svc), "/api/assistant/chat", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"Pasta with tomatoes."}`, rec.Body.String())
}

func TestChat_UserIDFromHeaderContext(t *testing.T) {
	t.Parallel()

	svc := &assistantServiceMock{
		ChatFunc: func(_ context.Context, in assistant.ChatInput) (string, error) {
			assert.Equal(t, testUserID, in.UserID)
			return "ok", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/chat", strings.NewReader(`{"message":"hi"}`))
	req = req.WithContext(ctxutil.WithUserID(req.Context(), testUserID))
	rec := httptest.NewRecorder()
	newTestMux(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---------------------------------------------------------------------------
// Error envelope
// ---------------------------------------------------------------------------

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "client input",
			err:         domain.NewValidationError("user_id", "required"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "bad_request",
			wantMessage: "validation: user_id: required",
		},
		{
			name:       "misconfigured",
			err:        fmt.Errorf("chat: llm api key is not set: %w", domain.ErrConfiguration),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "server_misconfigured",
		},
		{
			name:        "backend failure keeps message",
			err:         fmt.Errorf("chat: %w: %w", domain.ErrBackendCall, errors.New("quota exceeded")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal",
			wantMessage: "chat: model backend call failed: quota exceeded",
		},
		{
			name:        "store unavailable",
			err:         fmt.Errorf("chat: %w", domain.ErrStoreUnavailable),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal",
			wantMessage: "chat: history store unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &assistantServiceMock{
				ChatFunc: func(context.Context, assistant.ChatInput) (string, error) { return "", tt.err },
			}

			rec := do(t, newTestMux(svc), "/api/assistant/chat", `{"message":"hi"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestMalformedRequests_NeverReachService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		body        string
		wantMessage string
	}{
		{name: "invalid json", path: "/api/assistant/chat", body: `{"message":`, wantMessage: "invalid request body"},
		{name: "bad user id", path: "/api/assistant/suggestions", body: `{"userId":"alice"}`, wantMessage: "validation: user_id: must be a UUID"},
		{name: "bad list id", path: "/api/assistant/validate", body: fmt.Sprintf(`{"userId":%q,"listId":"7"}`, testUserID), wantMessage: "validation: list_id: must be a UUID"},
		{name: "bad image", path: "/api/assistant/receipt", body: fmt.Sprintf(`{"userId":%q,"imageBase64":"@@@"}`, testUserID), wantMessage: "validation: image_base64: invalid base64"},
		{name: "too large", path: "/api/assistant/normalize", body: `{"name":"` + strings.Repeat("x", 1<<17) + `"}`, wantMessage: "request body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &assistantServiceMock{}

			rec := do(t, newTestMux(svc), tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "bad_request", resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestWrongMethod(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/assistant/chat", nil)
	rec := httptest.NewRecorder()
	newTestMux(&assistantServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ---------------------------------------------------------------------------
// Suggest / Validate / Normalize / Receipt
// ---------------------------------------------------------------------------

func TestSuggest_Success(t *testing.T) {
	t.Parallel()

	svc := &assistantServiceMock{
		SuggestFunc: func(_ context.Context, in assistant.SuggestInput) ([]domain.SuggestedItem, error) {
			assert.Equal(t, 3, in.MaxResults)
			assert.Equal(t, "snacks", in.Prompt)
			assert.Nil(t, in.ListID)
			return []domain.SuggestedItem{
				{Name: "Bananas", Quantity: decimal.RequireFromString("1.5"), Unit: "kg", Category: ptr("Produce"), Reason: "often bought"},
				{Name: "Crackers", Quantity: decimal.NewFromInt(1), Unit: "pack"},
			}, nil
		},
	}

	rec := do(t, newTestMux(svc), "/api/assistant/suggestions",
		fmt.Sprintf(`{"userId":%q,"prompt":"snacks","maxResults":3}`, testUserID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[
		{"name":"Bananas","quantity":1.5,"unit":"kg","category":"Produce","reason":"often bought"},
		{"name":"Crackers","quantity":1,"unit":"pack"}
	]}`, rec.Body.String())
}

func TestValidate_PassesItems(t *testing.T) {
	t.Parallel()

	svc := &assistantServiceMock{
		ValidateFunc: func(_ context.Context, in assistant.ValidateInput) ([]domain.ValidatedItem, error) {
			require.Len(t, in.Items, 2)
			assert.Equal(t, "no dairy", in.Prompt)
			assert.Equal(t, "Milk", in.Items[0].Name)
			assert.True(t, in.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
			assert.True(t, in.Items[1].Quantity.Equal(decimal.RequireFromString("0.5")))
			return []domain.ValidatedItem{
				{Name: "Milk", Quantity: decimal.NewFromInt(2), Unit: "l", ShouldKeep: true},
				{Name: "Milk 3%", Quantity: decimal.NewFromInt(1), Unit: "l", ShouldKeep: false, Reason: "duplicate"},
			}, nil
		},
	}

	rec := do(t, newTestMux(svc), "/api/assistant/validate", fmt.Sprintf(`{"userId":%q,"prompt":"no dairy","items":[
		{"name":"Milk","quantity":2,"unit":"l"},
		{"name":"Milk 3%%","quantity":"0.5","unit":"l"}
	]}`, testUserID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[
		{"name":"Milk","quantity":2,"unit":"l","shouldKeep":true},
		{"name":"Milk 3%","quantity":1,"unit":"l","shouldKeep":false,"reason":"duplicate"}
	]}`, rec.Body.String())
}

func TestNormalize_Fallback(t *testing.T) {
	t.Parallel()

	svc := &assistantServiceMock{
		NormalizeFunc: func(_ context.Context, in assistant.NormalizeInput) (domain.NormalizedItem, error) {
			return domain.NormalizedItem{Name: "Greek Yoghurt", Category: "Other", Unit: "pcs", Fallback: true}, nil
		},
	}

	rec := do(t, newTestMux(svc), "/api/assistant/normalize", fmt.Sprintf(`{"userId":%q,"name":"greek yoghurt"}`, testUserID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Greek Yoghurt","category":"Other","unit":"pcs","fallback":true}`, rec.Body.String())
}

func TestParseReceipt_DataURLImage(t *testing.T) {
	t.Parallel()

	img := []byte{0x89, 'P', 'N', 'G'}
	svc := &assistantServiceMock{
		ParseReceiptFunc: func(_ context.Context, in assistant.ReceiptInput) (domain.Receipt, error) {
			assert.Equal(t, img, in.Image)
			assert.Equal(t, "image/png", in.MIMEType)
			assert.Equal(t, 20, in.MaxResults)
			return domain.Receipt{
				Store: "Fresh Market",
				Date:  "2024-01-15",
				Items: []domain.ReceiptItem{{
					Name:       "Cheddar Cheese",
					Quantity:   decimal.RequireFromString("0.374"),
					Unit:       "kg",
					Category:   ptr("Dairy"),
					UnitPrice:  decimal.RequireFromString("12.5"),
					TotalPrice: decimal.RequireFromString("4.68"),
				}},
				Total: decimal.RequireFromString("4.68"),
			}, nil
		},
	}

	body := fmt.Sprintf(`{"userId":%q,"imageBase64":"data:image/png;base64,%s","mimeType":"image/jpeg","maxResults":20}`,
		testUserID, base64.StdEncoding.EncodeToString(img))
	rec := do(t, newTestMux(svc), "/api/assistant/receipt", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"store":"Fresh Market","date":"2024-01-15","items":[
		{"name":"Cheddar Cheese","quantity":0.374,"unit":"kg","category":"Dairy","unitPrice":12.5,"totalPrice":4.68}
	],"total":4.68}`, rec.Body.String())
}

func TestParseReceipt_TextOnly(t *testing.T) {
	t.Parallel()

	svc := &assistantServiceMock{
		ParseReceiptFunc: func(_ context.Context, in assistant.ReceiptInput) (domain.Receipt, error) {
			assert.Nil(t, in.Image)
			assert.Equal(t, "MILK 1.00", in.Text)
			return domain.Receipt{Items: []domain.ReceiptItem{}, Total: decimal.NewFromInt(1)}, nil
		},
	}

	rec := do(t, newTestMux(svc), "/api/assistant/receipt", fmt.Sprintf(`{"userId":%q,"text":"MILK 1.00"}`, testUserID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"store":"","date":"","items":[],"total":1.00}`, rec.Body.String())
}
