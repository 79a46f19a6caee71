package ws

import (
	"net/http"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/game"
	"pipeline_rescue/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

// Handle upgrades /timer/ws connections and hands them to a Client.
func Handle(state *game.State, hub *broadcast.Hub, clock clockwork.Clock, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "err", err)
			return
		}

		client := NewClient(conn, state, hub, clock)
		go client.Run()
	}
}
