package assistant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

const verdictsJSON = `{"items":[
	{"name":"Milk","quantity":1,"unit":"l","shouldKeep":true,"reason":"staple"},
	{"name":"Milk 3%","quantity":1,"unit":"l","shouldKeep":false,"reason":"duplicate"},
	{"name":"Bread","quantity":1,"unit":"pcs","shouldKeep":true}
]}`

func TestValidate_RequestItems(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(verdictsJSON, nil)

	items, err := svc.Validate(context.Background(), ValidateInput{
		UserID: testUser,
		Items: []ItemInput{
			{Name: "Milk", Quantity: decimal.NewFromInt(1), Unit: "l"},
			{Name: "Milk 3%", Unit: "l"},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 2, "default maximum is the number of list items")
	assert.True(t, items[0].ShouldKeep)
	assert.False(t, items[1].ShouldKeep)

	assert.NotContains(t, deps.history.Calls(), "ListItems")
	p := deps.gateway.InvokeCalls()[0].Req.Prompt
	assert.Contains(t, p, "- Milk: 1 l\n- Milk 3%: 1 l")
	assert.Contains(t, p, "Return at most 2 items")
}

func TestValidate_UserPromptReachesModel(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(verdictsJSON, nil)

	_, err := svc.Validate(context.Background(), ValidateInput{
		UserID: testUser,
		Items:  []ItemInput{{Name: "Milk", Quantity: decimal.NewFromInt(1), Unit: "l"}},
		Prompt: "  I am  lactose intolerant ",
	})
	require.NoError(t, err)
	assert.Contains(t, deps.gateway.InvokeCalls()[0].Req.Prompt, "User request:\n\"\"\"\nI am lactose intolerant\n\"\"\"")
}

func TestValidate_ReadsListByID(t *testing.T) {
	t.Parallel()

	listID := uuid.New()
	svc, deps := newTestService(verdictsJSON, nil)
	deps.history.ListItemsFunc = func(_ context.Context, userID, gotList uuid.UUID) ([]domain.ListItem, error) {
		assert.Equal(t, testUser, userID)
		assert.Equal(t, listID, gotList)
		return []domain.ListItem{
			{Name: "Milk", Quantity: decimal.NewFromInt(1), Unit: "l"},
			{Name: "Milk 3%", Quantity: decimal.NewFromInt(1), Unit: "l"},
			{Name: "Bread", Quantity: decimal.NewFromInt(1), Unit: "pcs"},
		}, nil
	}

	items, err := svc.Validate(context.Background(), ValidateInput{UserID: testUser, ListID: &listID})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Contains(t, deps.history.Calls(), "ListItems")
}

func TestValidate_EmptyListIsClientError(t *testing.T) {
	t.Parallel()

	listID := uuid.New()
	svc, deps := newTestService(verdictsJSON, nil)

	_, err := svc.Validate(context.Background(), ValidateInput{UserID: testUser, ListID: &listID})
	assert.Equal(t, domain.ErrorClassBadRequest, domain.Classify(err))
	assert.Empty(t, deps.gateway.InvokeCalls())
}

func TestValidateInput_Validate(t *testing.T) {
	t.Parallel()

	listID := uuid.New()
	tests := []struct {
		name    string
		input   ValidateInput
		wantErr bool
	}{
		{name: "valid: items", input: ValidateInput{UserID: testUser, Items: []ItemInput{{Name: "Milk"}}}},
		{name: "valid: list id", input: ValidateInput{UserID: testUser, ListID: &listID}},
		{name: "invalid: nothing to validate", input: ValidateInput{UserID: testUser}, wantErr: true},
		{name: "invalid: missing user", input: ValidateInput{ListID: &listID}, wantErr: true},
		{name: "invalid: blank item name", input: ValidateInput{UserID: testUser, Items: []ItemInput{{Name: " "}}}, wantErr: true},
		{
			name:    "invalid: negative quantity",
			input:   ValidateInput{UserID: testUser, Items: []ItemInput{{Name: "Milk", Quantity: decimal.NewFromInt(-1)}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.input.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
