package sync

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"streamhub/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades to a WebSocket that streams sync events. The optional
// profileId query parameter narrows the stream to one profile.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		// welcome goes out before registering so it never races a broadcast
		_ = ws.WriteMessage(websocket.TextMessage, hub.welcome("websocket"))

		profileID := c.Query("profileId")
		hub.AddWS(ws, profileID)
		logging.Debug().Str("profile_id", profileID).Msg("ws client connected")

		// keep reading so close frames are processed
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		logging.Debug().Msg("ws client disconnected")
	}
}
