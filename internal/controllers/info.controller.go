package controllers

import (
	"net/http"
	"time"

	"gloves/internal/models"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
)

// HardwareProvider is satisfied by services.HardwareCache
type HardwareProvider interface {
	Get() (*models.HardwareInfo, error)
}

// GetInfo returns network, software and hardware details
func GetInfo(network services.NetworkSource, hardware HardwareProvider, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		hw, err := hardware.Get()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.DeviceInfo{
			Network:  network.Status(),
			Software: services.GetSoftwareInfo(startedAt),
			Hardware: hw,
		})
	}
}
