package controllers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"gloves/internal/logger"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var clientSeq atomic.Uint64

// HandleWebSocket upgrades the connection and subscribes it to the stream
func HandleWebSocket(hub *services.WebSocketHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithComponent("ws")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("upgrade failed")
			return
		}

		client := &services.ClientConnection{
			ID:    fmt.Sprintf("%s-%d", c.ClientIP(), clientSeq.Add(1)),
			Conn:  ws,
			Send:  make(chan services.WebSocketMessage, 64),
			Close: make(chan bool),
		}

		hub.Register(client)

		go readPump(client, hub)
		go writePump(client)
	}
}

// readPump reads messages from the WebSocket client
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	log := logger.WithComponent("ws")
	defer func() {
		close(client.Close)
		hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	for {
		var msg services.WebSocketMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client", client.ID).Msg("read error")
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case client.Send <- services.WebSocketMessage{Type: "pong", Timestamp: time.Now()}:
			default:
			}

		case "unsubscribe":
			return

		default:
			log.Debug().Str("client", client.ID).Str("type", msg.Type).Msg("unknown message type")
		}
	}
}

// writePump writes messages to the WebSocket client
func writePump(client *services.ClientConnection) {
	log := logger.WithComponent("ws")
	defer client.Conn.Close()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warn().Err(err).Str("client", client.ID).Msg("write error")
				}
				return
			}

		case <-client.Close:
			return
		}
	}
}
