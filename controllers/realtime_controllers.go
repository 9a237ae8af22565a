package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/venue-booking/middlewares"
	"github.com/yeremiapane/venue-booking/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // token sudah divalidasi WebSocketAuthMiddleware
	},
}

type RealtimeController struct {
	Hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

// WebSocketHandler -> endpoint WebSocket untuk event booking_change/table_change
func (rc *RealtimeController) WebSocketHandler(c *gin.Context) {
	identity, exists := middlewares.CurrentIdentity(c)
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	rc.Hub.Register(ws, identity.UserID)

	// Baca pesan sampai client menutup koneksi
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	rc.Hub.Unregister(ws)
}
