package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/service/profile"
	"go.uber.org/zap"
)

// ManagerHandler manages which workers a manager supervises. Only callers
// with the manager role get past the service.
type ManagerHandler struct {
	svc    *profile.Service
	logger *zap.Logger
}

func NewManagerHandler(svc *profile.Service, logger *zap.Logger) *ManagerHandler {
	return &ManagerHandler{svc: svc, logger: logger}
}

// LinkWorker handles POST /v1/manager/workers/:id
func (h *ManagerHandler) LinkWorker(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid worker id")
		return
	}

	if err := h.svc.LinkWorker(c.Request.Context(), workerID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnlinkWorker handles DELETE /v1/manager/workers/:id
func (h *ManagerHandler) UnlinkWorker(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid worker id")
		return
	}

	if err := h.svc.UnlinkWorker(c.Request.Context(), workerID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListWorkers handles GET /v1/manager/workers
func (h *ManagerHandler) ListWorkers(c *gin.Context) {
	workers, err := h.svc.ListWorkers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, workers)
}
