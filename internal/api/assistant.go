package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/gateway"
	"go.uber.org/zap"
)

// Completer is the chat-completions backend; *gateway.Client in production.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, query string) (string, error)
}

type AssistantHandler struct {
	completer Completer
	logger    *zap.Logger
}

func NewAssistantHandler(completer Completer, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{completer: completer, logger: logger}
}

type assistantRequest struct {
	Query        string `json:"query"`
	DocumentType string `json:"documentType"`
}

type assistantResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Query handles POST /v1/assistant/query
func (h *AssistantHandler) Query(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query: is required", "field": "query"})
		return
	}

	answer, err := h.completer.Complete(c.Request.Context(), gateway.SystemPrompt, req.Query)
	if err != nil {
		h.logger.Warn("assistant query failed", zap.Error(err))
		writeError(c, h.logger, err)
		return
	}

	// Retrieval is not wired yet, so sources is always empty.
	c.JSON(http.StatusOK, assistantResponse{Answer: answer, Sources: []string{}})
}
