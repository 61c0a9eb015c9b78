package http

import (
	"errors"
	"net/http"

	"codepair/internal/features/config/application"
	"codepair/internal/features/config/domain"

	"github.com/gin-gonic/gin"
)

// AppConfigHandler holds the config service.
type AppConfigHandler struct {
	configService application.ConfigService
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(configService application.ConfigService) *AppConfigHandler {
	return &AppConfigHandler{
		configService: configService,
	}
}

// GetAppConfigHandler handles fetching the application configuration.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	appConfig, err := h.configService.GetConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load app config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, appConfig)
}

// SaveAppConfigHandler handles saving the application configuration.
func (h *AppConfigHandler) SaveAppConfigHandler(c *gin.Context) {
	var appConfig domain.AppConfig
	if err := c.ShouldBindJSON(&appConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configService.SaveConfig(&appConfig); err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save app config: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "App config saved successfully"})
}
