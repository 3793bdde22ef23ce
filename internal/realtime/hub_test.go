package realtime

import (
	"testing"
	"time"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_NewMessageReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(4)
	defer a.Close()
	b := h.Subscribe(4)
	defer b.Close()
	b.Join("conv-other")

	m := &domain.Message{WAMessageID: "wamid.1", ConversationID: "conv-1"}
	h.PublishNewMessage(m)

	for _, sub := range []*Subscription{a, b} {
		evt := recvEvent(t, sub.C)
		if evt.Name != EventNewMessage {
			t.Errorf("event = %q", evt.Name)
		}
		got, ok := evt.Data.(*domain.Message)
		if !ok || got.WAMessageID != "wamid.1" {
			t.Errorf("payload = %+v", evt.Data)
		}
	}
}

func TestHub_StatusScopedToRoomMembers(t *testing.T) {
	h := NewHub()
	member := h.Subscribe(4)
	defer member.Close()
	member.Join("conv-1")
	outsider := h.Subscribe(4)
	defer outsider.Close()

	h.PublishStatus("conv-1", domain.StatusUpdate{MessageID: "wamid.1", Status: domain.StatusRead})

	evt := recvEvent(t, member.C)
	if evt.Name != EventStatusUpdate {
		t.Fatalf("event = %q", evt.Name)
	}
	u, ok := evt.Data.(domain.StatusUpdate)
	if !ok || u.MessageID != "wamid.1" || u.Status != domain.StatusRead {
		t.Fatalf("payload = %+v", evt.Data)
	}

	select {
	case evt := <-outsider.C:
		t.Fatalf("outsider must not receive status updates, got %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(4)
	defer sub.Close()
	sub.Join("conv-1")
	sub.Leave("conv-1")

	h.PublishStatus("conv-1", domain.StatusUpdate{MessageID: "wamid.1", Status: domain.StatusDelivered})

	select {
	case evt := <-sub.C:
		t.Fatalf("unexpected event after leave: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.PublishNewMessage(&domain.Message{WAMessageID: "wamid.flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHub_CloseUnregisters(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1)
	if h.Len() != 1 {
		t.Fatalf("len = %d", h.Len())
	}
	sub.Close()
	sub.Close() // idempotent
	if h.Len() != 0 {
		t.Fatalf("len after close = %d", h.Len())
	}
}
