// Package store implements the persistence layer for messages and contacts.
// Two implementations share one contract: a durable SQLite-backed store
// (GORM, pure Go driver) and an in-process fallback used when the durable
// store cannot be opened at startup. Both expose identical matching
// semantics, including the OR-match across the two message identity fields,
// so callers cannot observe which mode is active except through Mode().
package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

// Mode reports which backing implementation is active. It is surfaced by the
// health endpoint.
type Mode string

const (
	ModeConnected Mode = "connected"
	ModeMemory    Mode = "in-memory"
)

// Store is the persistence contract shared by the durable and fallback
// implementations. All mutating methods are safe for concurrent use; per-key
// effects are atomic (SQL upsert in the durable store, a single mutex in the
// fallback) so interleaved webhook deliveries never duplicate rows.
type Store interface {
	// UpsertMessage inserts m or fully replaces the row with the same
	// WAMessageID. Full replace, not merge: webhook redelivery applies the
	// latest event's fields wholesale.
	UpsertMessage(ctx context.Context, m *domain.Message) error

	// ApplyStatus updates status and status timestamp on the first message
	// whose WAMessageID or MetaMsgID equals id, returning the updated
	// message. Returns (nil, nil) when no message matches; that is not an
	// error.
	ApplyStatus(ctx context.Context, id string, status domain.MessageStatus, ts int64) (*domain.Message, error)

	// UpsertContactName writes the display name for the contact, creating
	// the row when absent. Unconditional write: the latest name wins.
	UpsertContactName(ctx context.Context, conversationID, displayName string) error

	// TouchContact records last as the conversation's most recent message,
	// creating the contact when absent (with displayName as fallback label)
	// and incrementing the unread counter when incrementUnread is set.
	TouchContact(ctx context.Context, conversationID, displayName string, last *domain.Message, incrementUnread bool) error

	// ResetUnread zeroes the unread counter for the conversation.
	ResetUnread(ctx context.Context, conversationID string) error

	// GetMessage fetches a message by its WAMessageID.
	GetMessage(ctx context.Context, id string) (*domain.Message, error)

	// ListMessages returns the conversation's messages ordered by CreatedAt
	// ascending (WAMessageID as tie-break). limit <= 0 returns all.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)

	// ListContacts returns all contacts, most recently active first.
	ListContacts(ctx context.Context) ([]domain.Contact, error)

	// Mode identifies the active implementation.
	Mode() Mode

	// Close releases the underlying resources.
	Close() error
}

// ErrNotFound is returned by GetMessage when no row matches.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// Open connects the durable store at path and falls back to the in-process
// store when opening or migrating fails. Degradation is non-fatal and logged;
// the caller always receives a usable Store.
func Open(path string, lg zerolog.Logger) Store {
	s, err := OpenGorm(path)
	if err != nil {
		lg.Warn().Err(err).Str("db_path", path).
			Msg("durable store unavailable, degrading to in-memory store")
		return NewMemory()
	}
	lg.Info().Str("db_path", path).Msg("durable store connected")
	return s
}
