// Webhook HTTP handlers.
//
// This file exposes the Meta Cloud API webhook surface:
//   - GET  /webhook  (subscription verification handshake)
//   - POST /webhook  (event delivery: messages, statuses, contacts)
//
// Handlers are transport-thin: they decode the provider envelope and delegate
// to the ingest service. The POST endpoint acknowledges deliveries with 200
// whenever possible, because the provider re-sends anything it considers
// undelivered; only an unexpected persistence failure yields a 5xx.
package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/http/middleware"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/ingest"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/store"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/webhook"
)

//
// Service contracts (context-aware)
//

// IngestService defines the operations the HTTP layer delegates to.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IngestService interface {
	// ProcessPayload applies one webhook delivery and returns what it did.
	ProcessPayload(ctx context.Context, p *webhook.Payload) (ingest.Summary, error)
	// SendLocal persists and broadcasts a message composed in this app.
	SendLocal(ctx context.Context, conversationID string, body domain.Body) (*domain.Message, error)
	// MarkRead zeroes the unread counter for a conversation.
	MarkRead(ctx context.Context, conversationID string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the webhook, messages, and contacts.
// Reads go straight to the store; writes go through the ingest service so
// that persistence and realtime broadcast stay in one place.
type Handlers struct {
	svc         IngestService
	store       store.Store
	verifyToken string
}

// New constructs a Handlers instance bound to the given service and store.
func New(svc IngestService, st store.Store, verifyToken string) *Handlers {
	return &Handlers{svc: svc, store: st, verifyToken: verifyToken}
}

//
// Handlers
//

// VerifyWebhook godoc
// @ID          verifyWebhook
// @Summary     Webhook subscription handshake
// @Description Echoes hub.challenge when hub.mode is "subscribe" and the verify token matches.
// @Tags        Webhook
// @Produce     plain
// @Success     200  {string} string "Raw challenge value"
// @Failure     403  {object} handlers.ErrorResponse "Token mismatch"
// @Router      /webhook [get]
func (h *Handlers) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "verify token mismatch")
		return
	}
	// The provider expects the raw challenge back, not a JSON envelope.
	c.String(http.StatusOK, "%s", challenge)
}

// ReceiveWebhook godoc
// @ID          receiveWebhook
// @Summary     Receive a webhook delivery
// @Description Applies messages, statuses, and contacts from one provider delivery.
// @Tags        Webhook
// @Accept      json
// @Produce     json
// @Success     200  {object} map[string]string
// @Failure     500  {object} handlers.ErrorResponse "Persistence failure"
// @Router      /webhook [post]
func (h *Handlers) ReceiveWebhook(c *gin.Context) {
	var p webhook.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		// Acknowledge undecodable bodies; a 4xx would make the provider
		// re-deliver the same broken payload forever.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("webhook body not decodable")
		ok(c, http.StatusOK, gin.H{"status": "ok"})
		return
	}

	sum, err := h.svc.ProcessPayload(c.Request.Context(), &p)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		return
	}

	middleware.LoggerFrom(c).Debug().
		Int("messages_applied", sum.MessagesApplied).
		Int("statuses_applied", sum.StatusesApplied).
		Int("contacts_applied", sum.ContactsApplied).
		Msg("webhook processed")
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}
