package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/shopping-assistant/pkg/ctxutil"
)

// UserIDHeader optionally names the calling user. Malformed values are
// ignored; request bodies still carry the authoritative userId.
const UserIDHeader = "X-User-Id"

// UserID stores a well-formed X-User-Id header value in the request context.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), id)))
	})
}
