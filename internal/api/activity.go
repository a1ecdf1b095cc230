package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/service/activity"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	svc    *activity.Service
	logger *zap.Logger
}

func NewActivityHandler(svc *activity.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// No worker_id field: logs are attributed to the caller, and a worker_id
// sent by the client is dropped like any unknown key.
type logActivityRequest struct {
	ActivityType string `json:"activity_type"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	Status       string `json:"status"`
}

// Log handles POST /v1/activity
func (h *ActivityHandler) Log(c *gin.Context) {
	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.svc.LogActivity(c.Request.Context(), activity.Input{
		ActivityType: req.ActivityType,
		Description:  req.Description,
		Location:     req.Location,
		Status:       req.Status,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "log": created})
}

// ListMine handles GET /v1/activity?limit=50
func (h *ActivityHandler) ListMine(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			badRequest(c, "invalid 'limit' parameter")
			return
		}
		limit = n
	}

	logs, err := h.svc.ListMine(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
