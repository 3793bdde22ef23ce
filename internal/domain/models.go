// Package domain defines the persistence models for messages and contacts.
// These types are mapped with GORM and form the core data layer of the
// WhatsApp-web backend.
package domain

// MessageStatus is the delivery state of a message as reported by the
// provider. Statuses normally advance received/sent → delivered → read, but
// the pipeline does not enforce monotonicity: a late "delivered" callback
// arriving after "read" overwrites it, matching provider redelivery behavior.
type MessageStatus string

const (
	StatusReceived  MessageStatus = "received"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Valid reports whether s is one of the known delivery states.
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusSent, StatusDelivered, StatusRead:
		return true
	}
	return false
}

// Direction distinguishes messages received from the counterpart from
// messages sent by the owning account.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// BodyKind discriminates the polymorphic message body.
type BodyKind string

const (
	KindText     BodyKind = "text"
	KindImage    BodyKind = "image"
	KindVideo    BodyKind = "video"
	KindDocument BodyKind = "document"
	KindAudio    BodyKind = "audio"
)

// MediaRef points at provider-hosted media. Only set for non-text kinds.
type MediaRef struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Body is the tagged union carried by every message. Kind selects the
// payload: KindText uses Text, every other kind uses Media. Keeping the
// discriminant explicit (rather than many optional top-level fields) lets
// switch statements over Kind stay exhaustive.
type Body struct {
	Kind  BodyKind  `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Media *MediaRef `json:"media,omitempty"`
}

// TextBody builds a plain text body.
func TextBody(text string) Body { return Body{Kind: KindText, Text: text} }

// MediaBody builds a media body of the given kind.
func MediaBody(kind BodyKind, ref MediaRef) Body { return Body{Kind: kind, Media: &ref} }

// Message represents one inbound or outbound communication unit.
//
// Fields:
//   - WAMessageID: provider-issued message id, globally unique; primary key.
//     Upserts are keyed on it, so webhook redelivery never duplicates rows.
//   - MetaMsgID: secondary correlation id. Equal to WAMessageID at creation;
//     status callbacks may reference either one (OR-matched by the store).
//   - ConversationID: the counterpart's address; groups messages.
//   - Direction: "in" or "out", derived from sender vs the owning account.
//   - Body: tagged-union payload (see Body).
//   - CreatedAt: provider event time in Unix milliseconds.
//   - Status / StatusTimestamp: mutable delivery state; the only fields that
//     change after creation.
//   - DisplayName: best-effort sender label, falls back to ConversationID.
type Message struct {
	WAMessageID     string        `json:"wa_message_id"    gorm:"type:varchar(128);primaryKey"`
	MetaMsgID       string        `json:"meta_msg_id"      gorm:"type:varchar(128);index:idx_meta_msg"`
	ConversationID  string        `json:"conversation_id"  gorm:"type:varchar(64);not null;index:idx_conv_msgs,priority:1"`
	Direction       Direction     `json:"direction"        gorm:"type:varchar(8);not null;check:direction IN ('in','out')"`
	Body            Body          `json:"body"             gorm:"serializer:json"`
	CreatedAt       int64         `json:"created_at"       gorm:"not null;index:idx_conv_msgs,priority:2"`
	Status          MessageStatus `json:"status"           gorm:"type:varchar(16);not null;check:status IN ('received','sent','delivered','read')"`
	StatusTimestamp int64         `json:"status_timestamp"`
	DisplayName     string        `json:"display_name"     gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Preview returns a short human-readable rendering of the body, used for
// contact list previews.
func (m Message) Preview() string {
	switch m.Body.Kind {
	case KindText:
		return m.Body.Text
	case KindImage:
		return "[image]"
	case KindVideo:
		return "[video]"
	case KindDocument:
		return "[document]"
	case KindAudio:
		return "[audio]"
	}
	return ""
}

// Contact is one counterpart directory entry. Exactly one row exists per
// conversation id; rows are created on first message or contact event and
// never deleted by the ingestion pipeline.
//
// LastMessage is a denormalized copy (by value) of the most recent message
// for the conversation, recomputed on every new message so list views need
// no join.
type Contact struct {
	ConversationID string   `json:"conversation_id" gorm:"type:varchar(64);primaryKey"`
	DisplayName    string   `json:"display_name"    gorm:"type:varchar(255);not null"`
	UnreadCount    int      `json:"unread_count"    gorm:"not null;default:0"`
	LastMessage    *Message `json:"last_message"    gorm:"serializer:json"`
	LastMessageAt  int64    `json:"last_message_at" gorm:"index"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// StatusUpdate is the delta broadcast to realtime subscribers when a status
// callback is applied to a stored message.
type StatusUpdate struct {
	MessageID string        `json:"message_id"`
	Status    MessageStatus `json:"status"`
}
