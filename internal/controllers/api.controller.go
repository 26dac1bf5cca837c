package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const rootBanner = "esp gloves"

// GetRoot returns the plain text device banner
func GetRoot(c *gin.Context) {
	c.String(http.StatusOK, rootBanner)
}

// GetStatus is a liveness probe
func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetTeapot answers 418
func GetTeapot(c *gin.Context) {
	c.String(http.StatusTeapot, "I'm a teapot")
}
