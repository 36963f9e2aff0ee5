package middleware

import (
	"encoding/json"
	"net/http"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes the same {error, message} envelope the REST handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: code, Message: message}) //nolint:errcheck
}
