package models

// WebhookPayload is the WhatsApp Cloud API webhook delivery.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business account entry.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps a single change notification.
type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

// WebhookChangeValue holds the message data.
type WebhookChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []DeliveryStatus `json:"statuses,omitempty"`
}

// InboundMessage is a message sent by a WhatsApp user.
type InboundMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *MessageText `json:"text,omitempty"`
}

// MessageText holds a text message body.
type MessageText struct {
	Body string `json:"body"`
}

// DeliveryStatus is a sent/delivered/read receipt for an outbound message.
type DeliveryStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// FirstTextMessage returns entry[0].changes[0].value.messages[0] when it is a text message.
func (p *WebhookPayload) FirstTextMessage() (InboundMessage, bool) {
	if p == nil || len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return InboundMessage{}, false
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 || msgs[0].From == "" || msgs[0].Text == nil {
		return InboundMessage{}, false
	}
	return msgs[0], true
}

// TestMessageRequest drives the engine from the development test route.
type TestMessageRequest struct {
	From    string `json:"from"`
	Message string `json:"message"`
}
