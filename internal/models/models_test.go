package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateValid(t *testing.T) {
	for _, s := range AllStates {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ConversationState("checkout").Valid())
	assert.Equal(t, ConversationState("add_product_quantity"), StateAddProductQty)
}

func TestDraftComplete(t *testing.T) {
	qty, price := 5, 2.5
	var nilDraft *DraftProduct
	assert.False(t, nilDraft.Complete())
	assert.False(t, (&DraftProduct{Name: "Okra", QuantityAvailable: &qty}).Complete())
	assert.False(t, (&DraftProduct{QuantityAvailable: &qty, PricePerUnit: &price}).Complete())
	assert.True(t, (&DraftProduct{Name: "Okra", QuantityAvailable: &qty, PricePerUnit: &price, Description: "fresh"}).Complete())
	assert.True(t, (&DraftProduct{Name: "Okra", QuantityAvailable: &qty, PricePerUnit: &price}).Complete())
}

func TestSessionCloneIsDeep(t *testing.T) {
	qty := 10
	s := NewSession("+1555")
	s.Draft = &DraftProduct{Name: "Okra", QuantityAvailable: &qty}

	c := s.Clone()
	*c.Draft.QuantityAvailable = 99
	c.Draft.Name = "Beans"

	assert.Equal(t, 10, *s.Draft.QuantityAvailable)
	assert.Equal(t, "Okra", s.Draft.Name)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestFirstTextMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		from string
		ok   bool
	}{
		{"text", `{"entry":[{"changes":[{"value":{"messages":[{"from":"+1555","type":"text","text":{"body":"hi"}}]}}]}]}`, "+1555", true},
		{"second message ignored", `{"entry":[{"changes":[{"value":{"messages":[{"from":"+1","type":"image"},{"from":"+2","text":{"body":"hi"}}]}}]}]}`, "", false},
		{"status only", `{"entry":[{"changes":[{"value":{"statuses":[{"id":"x","status":"read"}]}}]}]}`, "", false},
		{"no entry", `{}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WebhookPayload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			msg, ok := p.FirstTextMessage()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.from, msg.From)
		})
	}
}

func TestFarmerName(t *testing.T) {
	assert.Equal(t, "Unknown", (&Product{}).FarmerName())
	assert.Equal(t, "Ravi", (&Product{Farmer: &Profile{DisplayName: "Ravi"}}).FarmerName())
}
