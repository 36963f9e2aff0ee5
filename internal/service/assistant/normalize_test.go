package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

func TestNormalize_Accept(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService("```json\n{\"name\":\"Greek Yogurt\",\"category\":\"Dairy\",\"unit\":\"pcs\"}\n```", nil)

	got, err := svc.Normalize(context.Background(), NormalizeInput{UserID: testUser, Name: "greek yoghurt"})
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedItem{Name: "Greek Yogurt", Category: "Dairy", Unit: "pcs"}, got)
	assert.Equal(t, "accept", deps.recorder.Outcome(domain.EndpointNormalize))
	assert.Empty(t, deps.history.Calls())
}

func TestNormalize_FallbackOnUnparsableOutput(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService("Sorry, I am not sure.", nil)

	got, err := svc.Normalize(context.Background(), NormalizeInput{UserID: testUser, Name: "  organic   BANANAS "})
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizedItem{Name: "Organic Bananas", Category: "Other", Unit: "pcs", Fallback: true}, got)
	assert.Equal(t, "fallback", deps.recorder.Outcome(domain.EndpointNormalize))
}

func TestNormalize_CapsInput(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService("not json", nil)

	got, err := svc.Normalize(context.Background(), NormalizeInput{UserID: testUser, Name: strings.Repeat("x", 250)})
	require.NoError(t, err)
	assert.Len(t, got.Name, 200)
	assert.NotContains(t, deps.gateway.InvokeCalls()[0].Req.Prompt, strings.Repeat("x", 201))
}

func TestNormalize_BackendErrorIsNotFallback(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService("", errors.New("503 service unavailable"))

	_, err := svc.Normalize(context.Background(), NormalizeInput{UserID: testUser, Name: "milk"})
	require.ErrorIs(t, err, domain.ErrBackendCall)
	assert.Contains(t, err.Error(), "503 service unavailable")
}

func TestNormalize_MissingName(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(`{"name":"Milk"}`, nil)

	_, err := svc.Normalize(context.Background(), NormalizeInput{UserID: testUser})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, deps.gateway.InvokeCalls())
}
