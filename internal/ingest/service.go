package ingest

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/store"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/webhook"
)

var (
	// webhookEvents counts processed sub-events by type and outcome.
	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of webhook sub-events processed.",
		},
		[]string{"type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(webhookEvents)
}

// Broadcaster publishes applied deltas to realtime subscribers. It never
// mutates state and must not block.
type Broadcaster interface {
	PublishNewMessage(m *domain.Message)
	PublishStatus(conversationID string, u domain.StatusUpdate)
}

// Service is the reconciliation pipeline. One webhook payload is processed to
// completion in payload order (messages, then statuses, then contacts);
// per-item failures are contained to that item.
type Service struct {
	// Store is the persistence adapter (durable or fallback).
	Store store.Store
	// Hub receives one broadcast per applied message and status change.
	Hub Broadcaster
	// Log is the service logger; per-item skips are logged here, never
	// surfaced to the webhook caller.
	Log zerolog.Logger

	// Now is the clock used for locally sent messages. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// Summary reports what one payload's processing did. Returned for logging;
// the webhook endpoint answers 200 regardless.
type Summary struct {
	MessagesApplied   int
	MessagesSkipped   int
	StatusesApplied   int
	StatusesUnmatched int
	StatusesSkipped   int
	ContactsApplied   int
}

// ProcessPayload normalizes the envelope and applies every sub-event it
// carries. Malformed envelopes are a no-op, not an error: the provider must
// not be driven to retry shapes this system intentionally ignores.
func (s *Service) ProcessPayload(ctx context.Context, p *webhook.Payload) (Summary, error) {
	var sum Summary

	value, ok := webhook.Normalize(p)
	if !ok {
		s.Log.Debug().Msg("dropping payload without a message-bearing change")
		return sum, nil
	}
	if extra := webhook.ExtraChanges(p); extra > 0 {
		// Only entry[0].changes[0] is consulted; make batched deliveries
		// visible before anything is lost silently.
		s.Log.Warn().Int("skipped_changes", extra).Msg("payload carried extra entries or changes")
	}

	for _, wm := range value.Messages {
		m, err := s.applyMessage(ctx, value, wm)
		switch {
		case err == ErrMissingMessageID:
			sum.MessagesSkipped++
			webhookEvents.WithLabelValues("message", "skipped").Inc()
			s.Log.Warn().Str("from", wm.From).Msg("skipping message event without id")
		case err != nil:
			return sum, err
		default:
			sum.MessagesApplied++
			webhookEvents.WithLabelValues("message", "applied").Inc()
			s.Hub.PublishNewMessage(m)
		}
	}

	for _, ws := range value.Statuses {
		upd, err := s.applyStatus(ctx, ws)
		switch {
		case err == ErrMissingStatusID || err == ErrInvalidStatus:
			sum.StatusesSkipped++
			webhookEvents.WithLabelValues("status", "skipped").Inc()
			s.Log.Warn().Err(err).Str("status_id", ws.ID).Str("status", ws.Status).
				Msg("skipping status event")
		case err != nil:
			return sum, err
		case upd == nil:
			// Status events may race ahead of message persistence or
			// reference messages this system never stored.
			sum.StatusesUnmatched++
			webhookEvents.WithLabelValues("status", "unmatched").Inc()
			s.Log.Info().Str("status_id", ws.ID).Msg("status event matched no stored message")
		default:
			sum.StatusesApplied++
			webhookEvents.WithLabelValues("status", "applied").Inc()
			s.Hub.PublishStatus(upd.ConversationID, domain.StatusUpdate{
				MessageID: upd.WAMessageID,
				Status:    upd.Status,
			})
		}
	}

	for _, wc := range value.Contacts {
		if wc.WaID == "" {
			continue
		}
		name := normalizeDisplayName(wc.Profile.Name, wc.WaID)
		if err := s.Store.UpsertContactName(ctx, wc.WaID, name); err != nil {
			return sum, err
		}
		sum.ContactsApplied++
		webhookEvents.WithLabelValues("contact", "applied").Inc()
	}

	return sum, nil
}

// applyMessage converts one inbound message event into a canonical message
// and upserts it, updating the contact's last-message pointer and unread
// counter as a side effect. The broadcast is the caller's responsibility so
// event ordering stays in one place.
func (s *Service) applyMessage(ctx context.Context, v *webhook.Value, wm webhook.Message) (*domain.Message, error) {
	if wm.ID == "" {
		return nil, ErrMissingMessageID
	}

	direction := domain.DirectionIn
	if wm.From != "" && wm.From == v.Metadata.PhoneNumberID {
		direction = domain.DirectionOut
	}

	displayName := wm.From
	if len(v.Contacts) > 0 {
		displayName = normalizeDisplayName(v.Contacts[0].Profile.Name, wm.From)
	}

	m := &domain.Message{
		WAMessageID:    wm.ID,
		MetaMsgID:      wm.ID, // diverges only if the provider later references another key
		ConversationID: wm.From,
		Direction:      direction,
		Body:           s.bodyFromEvent(wm),
		CreatedAt:      s.eventMillis(wm.Timestamp),
		Status:         domain.StatusReceived,
		DisplayName:    displayName,
	}

	if err := s.Store.UpsertMessage(ctx, m); err != nil {
		return nil, err
	}
	if err := s.Store.TouchContact(ctx, m.ConversationID, m.DisplayName, m, direction == domain.DirectionIn); err != nil {
		return nil, err
	}
	return m, nil
}

// applyStatus applies one status transition. Returns the updated message, or
// nil when nothing matched.
func (s *Service) applyStatus(ctx context.Context, ws webhook.Status) (*domain.Message, error) {
	if ws.ID == "" {
		return nil, ErrMissingStatusID
	}
	status := domain.MessageStatus(strings.ToLower(strings.TrimSpace(ws.Status)))
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.Store.ApplyStatus(ctx, ws.ID, status, s.eventMillis(ws.Timestamp))
}

// SendLocal persists and broadcasts a message composed in this application.
// The server assigns the id and timestamp; the message starts in the "sent"
// state and never increments the unread counter.
func (s *Service) SendLocal(ctx context.Context, conversationID string, body domain.Body) (*domain.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, ErrMissingConversation
	}
	if body.Kind == "" || (body.Kind == domain.KindText && strings.TrimSpace(body.Text) == "") {
		return nil, ErrEmptyBody
	}

	id := uuid.NewString()
	m := &domain.Message{
		WAMessageID:    id,
		MetaMsgID:      id,
		ConversationID: conversationID,
		Direction:      domain.DirectionOut,
		Body:           body,
		CreatedAt:      s.now().UnixMilli(),
		Status:         domain.StatusSent,
		DisplayName:    conversationID,
	}

	if err := s.Store.UpsertMessage(ctx, m); err != nil {
		return nil, err
	}
	if err := s.Store.TouchContact(ctx, conversationID, conversationID, m, false); err != nil {
		return nil, err
	}
	s.Hub.PublishNewMessage(m)
	return m, nil
}

// MarkRead zeroes the unread counter for a conversation the viewer opened.
func (s *Service) MarkRead(ctx context.Context, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return ErrMissingConversation
	}
	return s.Store.ResetUnread(ctx, conversationID)
}

// bodyFromEvent maps the provider's per-type payload onto the tagged union.
// Unknown types degrade to an empty text body rather than dropping the
// message, so the conversation timeline stays complete.
func (s *Service) bodyFromEvent(wm webhook.Message) domain.Body {
	switch wm.Type {
	case "text":
		if wm.Text != nil {
			return domain.TextBody(wm.Text.Body)
		}
		return domain.TextBody("")
	case "image":
		return mediaBody(domain.KindImage, wm.Image)
	case "video":
		return mediaBody(domain.KindVideo, wm.Video)
	case "document":
		return mediaBody(domain.KindDocument, wm.Document)
	case "audio":
		return mediaBody(domain.KindAudio, wm.Audio)
	}
	s.Log.Warn().Str("type", wm.Type).Str("message_id", wm.ID).Msg("unknown message type, storing as empty text")
	return domain.TextBody("")
}

func mediaBody(kind domain.BodyKind, m *webhook.Media) domain.Body {
	if m == nil {
		return domain.Body{Kind: kind, Media: &domain.MediaRef{}}
	}
	return domain.MediaBody(kind, domain.MediaRef{
		ID:       m.ID,
		Link:     m.Link,
		Caption:  m.Caption,
		Filename: m.Filename,
		MimeType: m.MimeType,
	})
}

// eventMillis converts a provider timestamp (Unix seconds as a decimal
// string) to Unix milliseconds. Unparseable timestamps fall back to now.
func (s *Service) eventMillis(ts string) int64 {
	sec, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64)
	if err != nil {
		s.Log.Warn().Str("timestamp", ts).Msg("unparseable event timestamp, using current time")
		return s.now().UnixMilli()
	}
	return sec * 1000
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeDisplayName trims and collapses whitespace in a profile name,
// title-casing names that arrive entirely lower-case. Empty names fall back
// to the given identifier.
func normalizeDisplayName(name, fallback string) string {
	name = whitespaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return fallback
	}
	hasLetter := strings.IndexFunc(name, unicode.IsLetter) >= 0
	if hasLetter && name == strings.ToLower(name) {
		return cases.Title(language.Und).String(name)
	}
	return name
}
