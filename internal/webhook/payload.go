// Package webhook declares the wire types for provider webhook deliveries
// (the Meta Cloud API "entry → changes → value" envelope) and the normalizer
// that extracts the message-bearing change from a raw payload.
package webhook

// Payload is the top-level webhook delivery.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds the message data of a change. Any subset of Messages,
// Statuses, and Contacts may be present.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is a counterpart descriptor attached to a message-bearing payload.
type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

// Profile holds the counterpart's display name.
type Profile struct {
	Name string `json:"name"`
}

// Message is one inbound message event. Timestamp is in Unix seconds,
// transmitted as a decimal string. Exactly one of the typed payload fields
// is set, selected by Type.
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Text     *Text  `json:"text,omitempty"`
	Image    *Media `json:"image,omitempty"`
	Video    *Media `json:"video,omitempty"`
	Document *Media `json:"document,omitempty"`
	Audio    *Media `json:"audio,omitempty"`
}

// Text holds a text message body.
type Text struct {
	Body string `json:"body"`
}

// Media describes provider-hosted media attached to a message.
type Media struct {
	ID       string `json:"id"`
	Link     string `json:"link"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// Status is one delivery status update. Timestamp is in Unix seconds as a
// decimal string. ID may be either the message's own id or the meta id the
// provider assigned at creation.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Normalize extracts the message-bearing change from a raw payload.
//
// Only entry[0].changes[0] is consulted: the provider's batching contract has
// not been observed to deliver more, and additional entries are surfaced by
// ExtraChanges so callers can log them. Returns (nil, false) when the
// envelope does not match the expected shape (no entries, no changes, or a
// change field other than "messages"); malformed payloads are dropped, never
// an error.
func Normalize(p *Payload) (*Value, bool) {
	if p == nil || len(p.Entry) == 0 {
		return nil, false
	}
	changes := p.Entry[0].Changes
	if len(changes) == 0 {
		return nil, false
	}
	ch := changes[0]
	if ch.Field != "messages" {
		return nil, false
	}
	return &ch.Value, true
}

// ExtraChanges counts the entries and changes beyond the first of each that
// Normalize ignores. Non-zero values indicate the provider batched a
// delivery and data was skipped.
func ExtraChanges(p *Payload) int {
	if p == nil || len(p.Entry) == 0 {
		return 0
	}
	n := len(p.Entry) - 1
	if len(p.Entry[0].Changes) > 1 {
		n += len(p.Entry[0].Changes) - 1
	}
	return n
}
