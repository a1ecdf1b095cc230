package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/service/feedback"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	svc    *feedback.Service
	logger *zap.Logger
}

func NewFeedbackHandler(svc *feedback.Service, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, logger: logger}
}

type submitFeedbackRequest struct {
	ToUserID *uuid.UUID `json:"to_user_id"`
	Rating   int        `json:"rating"`
	Comments string     `json:"comments"`
	Category string     `json:"category"`
}

// Submit handles POST /v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.svc.Submit(c.Request.Context(), feedback.Input{
		ToUserID: req.ToUserID,
		Rating:   req.Rating,
		Comments: req.Comments,
		Category: req.Category,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
