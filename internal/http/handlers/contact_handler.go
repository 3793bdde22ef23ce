// Contact and health HTTP handlers.
//
// This file exposes REST endpoints for the conversation directory:
//   - GET  /contacts                    (list, most recent activity first)
//   - POST /conversations/{id}/read     (reset the unread counter)
//   - GET  /health                      (liveness plus persistence mode)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
)

// ListContactsResponse wraps the contact directory.
type ListContactsResponse struct {
	Contacts []domain.Contact `json:"contacts"`
}

// HealthResponse reports liveness and which persistence mode is active.
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2025-08-12T10:30:00Z"`
	Database  string `json:"database" example:"connected"`
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List contacts
// @Description Returns every known conversation ordered by most recent activity.
// @Tags        Contacts
// @Produce     json
// @Success     200  {object} handlers.ListContactsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	items, err := h.store.ListContacts(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Contact{}
	}
	ok(c, http.StatusOK, ListContactsResponse{Contacts: items})
}

// MarkConversationRead godoc
// @ID          markConversationRead
// @Summary     Mark a conversation as read
// @Description Resets the unread counter when the viewer opens a conversation.
// @Tags        Contacts
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /conversations/{id}/read [post]
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	conversationID := strings.TrimSpace(c.Param("id"))
	if conversationID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id required")
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), conversationID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// Health godoc
// @ID          health
// @Summary     Health check
// @Description Reports liveness and whether the durable store or the in-memory fallback is active.
// @Tags        Health
// @Produce     json
// @Success     200  {object} handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  string(h.store.Mode()),
	})
}
