// Message HTTP handlers.
//
// This file exposes REST endpoints for conversation messages:
//   - GET  /messages/{conversationID}  (list messages, oldest first)
//   - POST /messages                   (send a message composed in this app)
//
// Handlers are transport-thin: they validate and normalize inputs, delegate
// to the ingest service or the store, and translate results into HTTP
// responses.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/domain"
	"github.com/Roshan-b-tech/WHATSAAPWEB/internal/ingest"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for sending a message from this app.
type SendMessageRequest struct {
	// ConversationID is the counterparty's wa_id. It must be non-empty.
	ConversationID string `json:"conversation_id" binding:"required,min=1" example:"919937320320"`
	// Text is the message body. It must be non-empty after trimming.
	Text string `json:"text" binding:"required,min=1" example:"Hi, how are you?"`
}

// SendMessageResponse is the JSON envelope for a newly created message.
type SendMessageResponse struct {
	Message *domain.Message `json:"message"`
}

// ListMessagesResponse wraps the messages of one conversation.
type ListMessagesResponse struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []domain.Message `json:"messages"`
}

//
// Helpers
//

// clampLimit parses the optional `limit` query parameter. Zero means no cap;
// values above maxLimit are reduced to it.
func clampLimit(c *gin.Context) int {
	const maxLimit = 500
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

//
// Handlers
//

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages in a conversation
// @Description Returns the conversation's messages ordered oldest first.
// @Tags        Messages
// @Produce     json
// @Param       conversationID  path   string  true  "Counterparty wa_id"  example(919937320320)
// @Param       limit           query  int     false "Max messages to return"  minimum(0) maximum(500)
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{conversationID} [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	conversationID := strings.TrimSpace(c.Param("conversationID"))
	if conversationID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id required")
		return
	}

	items, err := h.store.ListMessages(c.Request.Context(), conversationID, clampLimit(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Message{}
	}
	ok(c, http.StatusOK, ListMessagesResponse{ConversationID: conversationID, Messages: items})
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Persists an outbound message with a server-assigned id and timestamp and broadcasts it.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SendMessageRequest  true  "Message payload"
// @Success     201  {object} handlers.SendMessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation_id and text required")
		return
	}

	m, err := h.svc.SendLocal(c.Request.Context(), req.ConversationID, domain.TextBody(req.Text))
	if err != nil {
		switch err {
		case ingest.ErrMissingConversation, ingest.ErrEmptyBody:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSendFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, SendMessageResponse{Message: m})
}
