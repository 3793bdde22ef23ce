// In-process fallback Store used when the durable store cannot be opened.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

// MemoryStore keeps all state in process memory behind one mutex. It mirrors
// the durable store's semantics exactly: upsert-replace keyed on WAMessageID,
// OR-match across both identity fields with the oldest message winning, and
// the same list orderings. State is lost at process exit; the caller is
// expected to treat this mode as degraded.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
	order    []string // insertion order of message ids
	contacts map[string]*domain.Contact
}

// NewMemory returns an empty in-process store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string]*domain.Message),
		contacts: make(map[string]*domain.Contact),
	}
}

func copyMessage(m *domain.Message) *domain.Message {
	if m == nil {
		return nil
	}
	cp := *m
	if m.Body.Media != nil {
		media := *m.Body.Media
		cp.Body.Media = &media
	}
	return &cp
}

// UpsertMessage implements Store.
func (s *MemoryStore) UpsertMessage(ctx context.Context, m *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.messages[m.WAMessageID]; !exists {
		s.order = append(s.order, m.WAMessageID)
	}
	s.messages[m.WAMessageID] = copyMessage(m)
	return nil
}

// ApplyStatus implements Store. Candidates are ordered the same way the
// durable store orders them (CreatedAt, then WAMessageID) before the first
// match is taken.
func (s *MemoryStore) ApplyStatus(ctx context.Context, id string, status domain.MessageStatus, ts int64) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *domain.Message
	for _, m := range s.messages {
		if m.WAMessageID != id && m.MetaMsgID != id {
			continue
		}
		if match == nil ||
			m.CreatedAt < match.CreatedAt ||
			(m.CreatedAt == match.CreatedAt && m.WAMessageID < match.WAMessageID) {
			match = m
		}
	}
	if match == nil {
		return nil, nil
	}
	match.Status = status
	match.StatusTimestamp = ts
	return copyMessage(match), nil
}

// UpsertContactName implements Store.
func (s *MemoryStore) UpsertContactName(ctx context.Context, conversationID, displayName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contacts[conversationID]; ok {
		c.DisplayName = displayName
		return nil
	}
	s.contacts[conversationID] = &domain.Contact{
		ConversationID: conversationID,
		DisplayName:    displayName,
	}
	return nil
}

// TouchContact implements Store.
func (s *MemoryStore) TouchContact(ctx context.Context, conversationID, displayName string, last *domain.Message, incrementUnread bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[conversationID]
	if !ok {
		c = &domain.Contact{ConversationID: conversationID, DisplayName: displayName}
		s.contacts[conversationID] = c
	}
	c.LastMessage = copyMessage(last)
	c.LastMessageAt = last.CreatedAt
	if incrementUnread {
		c.UnreadCount++
	}
	if c.DisplayName == "" {
		c.DisplayName = displayName
	}
	return nil
}

// ResetUnread implements Store.
func (s *MemoryStore) ResetUnread(ctx context.Context, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contacts[conversationID]; ok {
		c.UnreadCount = 0
	}
	return nil
}

// GetMessage implements Store.
func (s *MemoryStore) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMessage(m), nil
}

// ListMessages implements Store.
func (s *MemoryStore) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Message{}
	for _, id := range s.order {
		m := s.messages[id]
		if m.ConversationID == conversationID {
			out = append(out, *copyMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].WAMessageID < out[j].WAMessageID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListContacts implements Store.
func (s *MemoryStore) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Contact{}
	for _, c := range s.contacts {
		cp := *c
		cp.LastMessage = copyMessage(c.LastMessage)
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastMessageAt != out[j].LastMessageAt {
			return out[i].LastMessageAt > out[j].LastMessageAt
		}
		return out[i].ConversationID < out[j].ConversationID
	})
	return out, nil
}

// Mode implements Store.
func (s *MemoryStore) Mode() Mode { return ModeMemory }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
