package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wavetradeapp/wave_trader/config"
)

// ConfigHandler exposes the AI model configuration to clients.
func ConfigHandler(c *gin.Context) {
	cfg := config.GetAIConfig()
	c.JSON(http.StatusOK, gin.H{
		"model":   cfg.Model,
		"api_url": cfg.APIURL,
		"api_key": cfg.APIKey,
	})
}
