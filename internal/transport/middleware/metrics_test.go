package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpObserverMock struct {
	mu    sync.Mutex
	calls []observedRequest
}

type observedRequest struct {
	Route  string
	Method string
	Status int
}

var _ httpObserver = &httpObserverMock{}

func (m *httpObserverMock) ObserveHTTP(route, method string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, observedRequest{Route: route, Method: method, Status: status})
}

func TestMetrics_LabelsWithMatchedPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/assistant/chat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	obs := &httpObserverMock{}
	handler := Metrics(obs)(mux)

	for _, path := range []string{"/api/assistant/chat", "/nope"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	}

	require.Len(t, obs.calls, 2)
	assert.Equal(t, observedRequest{Route: "POST /api/assistant/chat", Method: http.MethodPost, Status: http.StatusBadRequest}, obs.calls[0])
	assert.Equal(t, observedRequest{Route: unmatchedRoute, Method: http.MethodPost, Status: http.StatusNotFound}, obs.calls[1])
}
