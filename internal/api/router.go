package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Profiles  *ProfileHandler
	Manager   *ManagerHandler
	Messages  *MessageHandler
	Activity  *ActivityHandler
	Feedback  *FeedbackHandler
	Assistant *AssistantHandler
	Stream    *StreamHandler
}

// NewRouter mounts every route. Health and auth are public; the rest of
// /v1 sits behind the JWT middleware.
func NewRouter(logger *zap.Logger, jwtSecret string, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(logger), middleware.Recovery(logger))

	r.GET("/v1/health", h.Health.Check)

	public := r.Group("/v1/auth")
	public.POST("/signup", h.Auth.Signup)
	public.POST("/login", h.Auth.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(jwtSecret))

	v1.GET("/profiles/me", h.Profiles.GetMe)
	v1.PATCH("/profiles/:id", h.Profiles.Update)

	v1.GET("/manager/workers", h.Manager.ListWorkers)
	v1.POST("/manager/workers/:id", h.Manager.LinkWorker)
	v1.DELETE("/manager/workers/:id", h.Manager.UnlinkWorker)

	v1.GET("/messages", h.Messages.List)
	v1.POST("/messages", h.Messages.Send)
	v1.GET("/messages/unread-count", h.Messages.UnreadCount)
	v1.GET("/messages/:id", h.Messages.Get)
	v1.POST("/messages/:id/read", h.Messages.MarkRead)
	v1.DELETE("/messages/:id", h.Messages.Delete)

	v1.POST("/activity", h.Activity.Log)
	v1.GET("/activity", h.Activity.ListMine)

	v1.POST("/feedback", h.Feedback.Submit)

	v1.POST("/assistant/query", h.Assistant.Query)

	v1.GET("/ws/inbox", h.Stream.Inbox)

	return r
}
