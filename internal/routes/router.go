package routes

import (
	"gloves/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterOptions configures the middleware chain
type RouterOptions struct {
	RateLimit float64
	RateBurst int
	Logger    zerolog.Logger
}

// NewRouter builds the engine with middleware and every route
func NewRouter(deps Dependencies, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.ConnectionCloseMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst), opts.Logger))

	RegisterRootRoutes(r)
	RegisterAPIRoutes(r, deps)
	if deps.Hub != nil {
		RegisterWebSocketRoutes(r, deps.Hub)
	}

	return r
}
