package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/service/profile"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	svc    *profile.Service
	logger *zap.Logger
}

func NewProfileHandler(svc *profile.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// GetMe handles GET /v1/profiles/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	p, err := h.svc.Me(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Absent fields are left unchanged; role and email are not editable here.
type updateProfileRequest struct {
	FullName   *string   `json:"full_name"`
	Department *string   `json:"department"`
	Position   *string   `json:"position"`
	Skills     *[]string `json:"skills"`
}

// Update handles PATCH /v1/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid profile id")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, models.ProfilePatch{
		FullName:   req.FullName,
		Department: req.Department,
		Position:   req.Position,
		Skills:     req.Skills,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
