package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordOutcome(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordOutcome("normalize", "fallback")
	m.RecordOutcome("normalize", "fallback")
	m.RecordOutcome("suggest", "reject")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decodeOutcomes.WithLabelValues("normalize", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeOutcomes.WithLabelValues("suggest", "reject")))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveHTTP("POST /api/assistant/chat", http.MethodPost, http.StatusOK, 120*time.Millisecond)
	m.ObserveHTTP("POST /api/assistant/chat", http.MethodPost, http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST /api/assistant/chat", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST /api/assistant/chat", "POST", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestMetrics_ObserveModelCall(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveModelCall("chat", nil, time.Second)
	m.ObserveModelCall("chat", errors.New("boom"), time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(m.modelCalls))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordOutcome("receipt", "accept")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `shopping_assistant_decode_outcomes_total{endpoint="receipt",outcome="accept"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
