package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/pkg/ctxutil"
)

// Error codes of the response envelope.
const (
	codeBadRequest    = "bad_request"
	codeMisconfigured = "server_misconfigured"
	codeInternal      = "internal"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to its envelope. Misconfiguration
// details stay in the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch domain.Classify(err) {
	case domain.ErrorClassBadRequest:
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case domain.ErrorClassMisconfigured:
		log.LogAttrs(r.Context(), slog.LevelError, "server misconfigured",
			append(ctxutil.LogAttrs(r.Context()), slog.String("error", err.Error()))...)
		writeError(w, http.StatusInternalServerError, codeMisconfigured, "")
	default:
		log.LogAttrs(r.Context(), slog.LevelError, "request failed",
			append(ctxutil.LogAttrs(r.Context()), slog.String("error", err.Error()))...)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}
