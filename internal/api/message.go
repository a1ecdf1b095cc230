package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/service/messaging"
	"github.com/lalith-99/factorylink/internal/voice"
	"go.uber.org/zap"
)

type MessageHandler struct {
	svc    *messaging.Service
	logger *zap.Logger
}

func NewMessageHandler(svc *messaging.Service, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

// voice_attachment is base64 audio. A data URL ("data:audio/webm;base64,...")
// is accepted too; only the payload is kept.
type sendMessageRequest struct {
	RecipientEmail  string `json:"recipient_email" binding:"required"`
	Subject         string `json:"subject"`
	Content         string `json:"content"`
	VoiceAttachment string `json:"voice_attachment"`
}

type inboxCursor struct {
	Before   time.Time `json:"before"`
	BeforeID uuid.UUID `json:"before_id"`
}

type inboxResponse struct {
	Messages   []models.InboxMessage `json:"messages"`
	NextCursor *inboxCursor          `json:"next_cursor"`
}

// Send handles POST /v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	var audio []byte
	if req.VoiceAttachment != "" {
		decoded, _, err := voice.DecodePayload(req.VoiceAttachment)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "voice_attachment: must be non-empty base64 audio", "field": "voice_attachment"})
			return
		}
		audio = decoded
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), messaging.SendInput{
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		Content:        req.Content,
		Voice:          audio,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// List handles GET /v1/messages?limit=50&unread=true&before=<RFC3339>&before_id=<uuid>
//
// before and before_id come from the previous page's next_cursor and must
// be given together.
func (h *MessageHandler) List(c *gin.Context) {
	var q models.InboxQuery

	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			badRequest(c, "invalid 'limit' parameter")
			return
		}
		q.Limit = limit
	}

	if u := c.Query("unread"); u != "" {
		unread, err := strconv.ParseBool(u)
		if err != nil {
			badRequest(c, "invalid 'unread' parameter")
			return
		}
		q.UnreadOnly = unread
	}

	before, beforeID := c.Query("before"), c.Query("before_id")
	if (before == "") != (beforeID == "") {
		badRequest(c, "'before' and 'before_id' must be given together")
		return
	}
	if before != "" {
		ts, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			badRequest(c, "invalid 'before' parameter")
			return
		}
		id, err := uuid.Parse(beforeID)
		if err != nil {
			badRequest(c, "invalid 'before_id' parameter")
			return
		}
		q.After = &models.InboxCursor{CreatedAt: ts, ID: id}
	}

	msgs, err := h.svc.ListInbox(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := inboxResponse{Messages: msgs}
	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		resp.NextCursor = &inboxCursor{Before: last.CreatedAt, BeforeID: last.ID}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MessageHandler) messageID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid message id")
		return uuid.Nil, false
	}
	return id, true
}

// Get handles GET /v1/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}

	msg, err := h.svc.GetMessage(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// MarkRead handles POST /v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}

	msg, err := h.svc.MarkAsRead(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Delete handles DELETE /v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteMessage(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnreadCount handles GET /v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
