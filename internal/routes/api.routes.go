package routes

import (
	"time"

	"gloves/internal/controllers"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
)

// MotionService serves live and recorded motion samples
type MotionService interface {
	controllers.MotionSampler
	controllers.MotionHistory
	services.MotionSource
}

// Dependencies are the services the handlers read from
type Dependencies struct {
	Network   services.NetworkSource
	Hardware  controllers.HardwareProvider
	Motion    MotionService
	Hub       *services.WebSocketHub
	StartedAt time.Time
}

func RegisterRootRoutes(r *gin.Engine) {
	r.GET("/", controllers.GetRoot)
	r.GET("/teapot", controllers.GetTeapot)
}

func RegisterAPIRoutes(r *gin.Engine, deps Dependencies) {
	v1 := r.Group("/v1")
	{
		v1.GET("/status", controllers.GetStatus)
		v1.GET("/info", controllers.GetInfo(deps.Network, deps.Hardware, deps.StartedAt))
		v1.GET("/mpu", controllers.GetMotion(deps.Motion))
		v1.GET("/mpu/history", controllers.GetMotionHistory(deps.Motion))
	}
}
