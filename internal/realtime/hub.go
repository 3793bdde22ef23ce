// Package realtime implements the in-process publish/subscribe hub that fans
// ingestion deltas out to connected viewers, plus the websocket transport
// that carries them to browsers.
package realtime

import (
	"sync"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

// Event names carried on the wire.
const (
	EventNewMessage   = "newMessage"
	EventStatusUpdate = "messageStatusUpdate"
)

// Event is one delta published to subscribers.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Hub is an in-process publish/subscribe fan-out with per-conversation rooms.
// Publishing is fire-and-forget: sends to slow subscribers are non-blocking
// and drop rather than stall ingestion. A disconnected subscriber permanently
// misses events; reconnecting clients resync through the REST read path.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	ch    chan Event
	rooms map[string]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscription is one subscriber's handle: a receive channel plus room
// membership controls. Close must be called exactly once when done.
type Subscription struct {
	C <-chan Event

	hub  *Hub
	id   int
	once sync.Once
}

// Subscribe registers a new subscriber with the given channel buffer.
// Subscribers start with no room memberships; they still receive every
// newMessage event (the contact-list view needs them) but status updates
// only for rooms they have joined.
func (h *Hub) Subscribe(buf int) *Subscription {
	ch := make(chan Event, buf)
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = &subscriber{ch: ch, rooms: make(map[string]struct{})}
	h.mu.Unlock()
	return &Subscription{C: ch, hub: h, id: id}
}

// Join adds the subscription to a conversation room.
func (s *Subscription) Join(conversationID string) {
	s.hub.mu.Lock()
	if sub, ok := s.hub.subs[s.id]; ok {
		sub.rooms[conversationID] = struct{}{}
	}
	s.hub.mu.Unlock()
}

// Leave removes the subscription from a conversation room.
func (s *Subscription) Leave(conversationID string) {
	s.hub.mu.Lock()
	if sub, ok := s.hub.subs[s.id]; ok {
		delete(sub.rooms, conversationID)
	}
	s.hub.mu.Unlock()
}

// Close unregisters the subscription. The event channel is not closed;
// receivers should stop reading after Close returns.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}

// PublishNewMessage emits a newMessage event to every subscriber.
func (h *Hub) PublishNewMessage(m *domain.Message) {
	h.publish(Event{Name: EventNewMessage, Data: m}, "")
}

// PublishStatus emits a messageStatusUpdate event to subscribers that joined
// the affected conversation's room.
func (h *Hub) PublishStatus(conversationID string, u domain.StatusUpdate) {
	h.publish(Event{Name: EventStatusUpdate, Data: u}, conversationID)
}

// publish delivers evt to matching subscribers. An empty room means broadcast
// to all. Sends never block.
func (h *Hub) publish(evt Event, room string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if room != "" {
			if _, member := sub.rooms[room]; !member {
				continue
			}
		}
		select {
		case sub.ch <- evt:
		default:
			// Drop event if subscriber is full (non-blocking).
		}
	}
}

// Len reports the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
