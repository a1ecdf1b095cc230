package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/models"
	"github.com/lalith-99/factorylink/internal/notify"
	"github.com/lalith-99/factorylink/internal/service/activity"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// The stream is authenticated by bearer token, not cookies, so any origin
// may open it.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler serves the live inbox. An open stream counts as an open
// view: the activity heartbeat runs for exactly as long as it is connected.
type StreamHandler struct {
	subscriber notify.Subscriber
	activity   *activity.Service
	interval   time.Duration
	logger     *zap.Logger
}

func NewStreamHandler(
	subscriber notify.Subscriber,
	activitySvc *activity.Service,
	interval time.Duration,
	logger *zap.Logger,
) *StreamHandler {
	return &StreamHandler{
		subscriber: subscriber,
		activity:   activitySvc,
		interval:   interval,
		logger:     logger,
	}
}

// Inbox handles GET /v1/ws/inbox?view=/worker
//
// view names the page the client is showing; it ends up in the heartbeat
// description as "Visited <view>".
func (h *StreamHandler) Inbox(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := auth.IdentityFromCtx(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	// Subscribe before upgrading so a broker failure is still a plain
	// HTTP error.
	sub, err := h.subscriber.Subscribe(ctx, caller.ID)
	if err != nil {
		h.logger.Error("inbox subscribe failed", zap.String("user_id", caller.ID.String()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	view := c.Query("view")
	if view == "" {
		view = "/messages"
	}
	hb := h.activity.NewHeartbeat(h.interval, activity.Input{
		ActivityType: string(models.ActivityPageView),
		Description:  "Visited " + view,
		Status:       string(models.StatusActive),
	})
	hb.Start(ctx)
	defer hb.Stop()

	h.logger.Debug("inbox stream opened", zap.String("user_id", caller.ID.String()))

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and keeps the read deadline moving on
// pongs. It closes closed when the peer goes away.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
