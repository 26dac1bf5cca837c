package controllers

import (
	"context"
	"net/http"
	"time"

	"gloves/internal/models"

	"github.com/gin-gonic/gin"
)

// MotionSampler reads the sensors on demand
type MotionSampler interface {
	Sample(ctx context.Context) (models.MotionSample, error)
}

// MotionHistory serves recorded samples
type MotionHistory interface {
	History(duration time.Duration) []models.MotionSample
}

// GetMotion returns one fresh reading of the three motion sensors
func GetMotion(sampler MotionSampler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sample, err := sampler.Sample(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, sample.Reading())
	}
}

// GetMotionHistory returns recorded samples
// Query params: duration=10s|1m|5m (default: 1m)
func GetMotionHistory(history MotionHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		durationStr := c.DefaultQuery("duration", "1m")

		duration, err := time.ParseDuration(durationStr)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
			return
		}

		data := history.History(duration)
		c.JSON(http.StatusOK, gin.H{
			"duration": durationStr,
			"count":    len(data),
			"data":     data,
		})
	}
}
