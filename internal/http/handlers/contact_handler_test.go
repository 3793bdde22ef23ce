package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/store"
)

func TestListContacts_MostRecentFirst(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	older := &domain.Message{WAMessageID: "m1", ConversationID: "111", Body: domain.TextBody("a"), CreatedAt: 1000, Status: domain.StatusReceived, Direction: domain.DirectionIn}
	newer := &domain.Message{WAMessageID: "m2", ConversationID: "222", Body: domain.TextBody("b"), CreatedAt: 2000, Status: domain.StatusReceived, Direction: domain.DirectionIn}
	for _, m := range []*domain.Message{older, newer} {
		if err := st.UpsertMessage(ctx, m); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := st.TouchContact(ctx, m.ConversationID, m.ConversationID, m, true); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	r := newTestRouter(stubIngestSvc{}, st)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListContactsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(resp.Contacts))
	}
	if resp.Contacts[0].ConversationID != "222" {
		t.Fatalf("expected most recent conversation first, got %q", resp.Contacts[0].ConversationID)
	}
	if resp.Contacts[0].UnreadCount != 1 {
		t.Fatalf("unread = %d", resp.Contacts[0].UnreadCount)
	}
}

func TestListContacts_EmptyDirectory(t *testing.T) {
	r := newTestRouter(stubIngestSvc{}, store.NewMemory())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListContactsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Contacts == nil || len(resp.Contacts) != 0 {
		t.Fatalf("expected empty array, got %+v", resp.Contacts)
	}
}

func TestMarkConversationRead(t *testing.T) {
	var got string
	svc := stubIngestSvc{markRead: func(ctx context.Context, conversationID string) error {
		got = conversationID
		return nil
	}}
	r := newTestRouter(svc, store.NewMemory())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/919937320320/read", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body for 204")
	}
	if got != "919937320320" {
		t.Fatalf("conversation id = %q", got)
	}
}

func TestMarkConversationRead_ServiceError(t *testing.T) {
	svc := stubIngestSvc{markRead: func(context.Context, string) error {
		return errors.New("db closed")
	}}
	r := newTestRouter(svc, store.NewMemory())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/conversations/1/read", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHealth_ReportsStoreMode(t *testing.T) {
	r := newTestRouter(stubIngestSvc{}, store.NewMemory())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Database != string(store.ModeMemory) {
		t.Fatalf("database = %q, want in-memory", resp.Database)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", resp.Timestamp)
	}
}
