package routes

import (
	"gloves/internal/controllers"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes registers the live stream endpoint
func RegisterWebSocketRoutes(r *gin.Engine, hub *services.WebSocketHub) {
	r.GET("/v1/ws", controllers.HandleWebSocket(hub))
}
