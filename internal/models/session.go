package models

import (
	"time"
)

// ConversationState is the position of a sender in the WhatsApp menu flow.
type ConversationState string

const (
	StateInitial         ConversationState = "initial"
	StateRoleSelect      ConversationState = "role_selection"
	StateFarmerMenu      ConversationState = "farmer_menu"
	StateAddProductName  ConversationState = "add_product_name"
	StateAddProductQty   ConversationState = "add_product_quantity"
	StateAddProductPrice ConversationState = "add_product_price"
	StateAddProductDesc  ConversationState = "add_product_description"
	StateSearchSupplies  ConversationState = "search_supplies"
	StateVendorMenu      ConversationState = "vendor_menu"
)

// AllStates lists every known conversation state.
var AllStates = []ConversationState{
	StateInitial,
	StateRoleSelect,
	StateFarmerMenu,
	StateAddProductName,
	StateAddProductQty,
	StateAddProductPrice,
	StateAddProductDesc,
	StateSearchSupplies,
	StateVendorMenu,
}

// Valid reports whether s is one of the known states.
func (s ConversationState) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// DraftProduct accumulates the add-product form, one field per message.
// Nil numeric fields have not been captured yet.
type DraftProduct struct {
	Name              string   `json:"name"`
	QuantityAvailable *int     `json:"quantity_available,omitempty"`
	PricePerUnit      *float64 `json:"price_per_unit,omitempty"`
	Description       string   `json:"description,omitempty"`
}

// Complete reports whether the required fields have been collected. Description is free text and may be empty.
func (d *DraftProduct) Complete() bool {
	return d != nil && d.Name != "" && d.QuantityAvailable != nil && d.PricePerUnit != nil
}

// Session is the conversation state of one WhatsApp sender.
type Session struct {
	UserID    string            `json:"user_id"`
	State     ConversationState `json:"state"`
	Draft     *DraftProduct     `json:"draft,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns a session in the initial state.
func NewSession(userID string) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		State:     StateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so stores never share draft pointers with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Draft != nil {
		d := *s.Draft
		if s.Draft.QuantityAvailable != nil {
			q := *s.Draft.QuantityAvailable
			d.QuantityAvailable = &q
		}
		if s.Draft.PricePerUnit != nil {
			p := *s.Draft.PricePerUnit
			d.PricePerUnit = &p
		}
		out.Draft = &d
	}
	return &out
}

// WhatsAppSession stores conversation sessions in postgres
type WhatsAppSession struct {
	PhoneNumber string    `json:"phone_number" gorm:"primaryKey"`
	State       string    `json:"state" gorm:"not null"`
	Draft       string    `json:"draft"` // JSON encoded DraftProduct
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"index"`
}

// TableName pins the table name used by the session store.
func (WhatsAppSession) TableName() string {
	return "whatsapp_sessions"
}
