package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/repository"
	"github.com/lalith-99/factorylink/internal/service/activity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles signup and login, the only public endpoints besides
// health. They issue the tokens everything else requires.
type AuthHandler struct {
	profiles repository.ProfileRepository
	activity *activity.Service
	tokens   auth.TokenConfig
	logger   *zap.Logger
}

func NewAuthHandler(
	profiles repository.ProfileRepository,
	activitySvc *activity.Service,
	tokens auth.TokenConfig,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		activity: activitySvc,
		tokens:   tokens,
		logger:   logger,
	}
}

// Self-service signup creates workers and managers. Factory admins are
// provisioned out of band.
type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=worker manager"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	existing, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	// bcrypt salts per password; equal passwords get different hashes.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), &models.Profile{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         models.Role(req.Role),
		PasswordHash: string(hash),
	})
	if err != nil {
		// A concurrent signup with the same email lands here as a conflict.
		writeError(c, h.logger, err)
		return
	}

	token, err := auth.GenerateToken(identityOf(profile), h.tokens)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token, Profile: profile})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	// Same answer for unknown email and wrong password.
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	id := identityOf(profile)
	token, err := auth.GenerateToken(id, h.tokens)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// Best-effort: a failed activity log never fails the login.
	ctx := auth.WithIdentity(c.Request.Context(), id)
	if _, err := h.activity.LogActivity(ctx, activity.Input{
		ActivityType: string(models.ActivityLogin),
		Status:       string(models.StatusActive),
	}); err != nil {
		h.logger.Warn("failed to log login activity", zap.String("user_id", id.ID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, authResponse{Token: token, Profile: profile})
}

func identityOf(p *models.Profile) auth.Identity {
	return auth.Identity{ID: p.ID, Email: p.Email, Role: p.Role}
}
