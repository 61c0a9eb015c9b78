package http

import (
	"errors"
	"net/http"

	"codepair/internal/config"
	"codepair/internal/features/generation/application"
	"codepair/internal/features/generation/domain"
	"codepair/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerationHandler holds the code pair service and app config service.
type GenerationHandler struct {
	service          application.CodePairService
	appConfigService config.AppConfigService
	logger           *zap.Logger
	metrics          *metrics.Metrics
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(service application.CodePairService, appConfigService config.AppConfigService, logger *zap.Logger, m *metrics.Metrics) *GenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationHandler{
		service:          service,
		appConfigService: appConfigService,
		logger:           logger,
		metrics:          m,
	}
}

// GenerateHandler handles POST /generate.
func (h *GenerationHandler) GenerateHandler(c *gin.Context) {
	var req domain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.CountRequest(application.OperationGenerate, err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	appConfig, err := h.appConfigService.LoadAppConfig()
	if err != nil {
		h.logger.Error("failed to load app config", zap.Error(err))
		h.metrics.CountRequest(application.OperationGenerate, err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to load app config: " + err.Error()})
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), &req, appConfig)
	h.metrics.CountRequest(application.OperationGenerate, err)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExplainHandler handles POST /explain.
func (h *GenerationHandler) ExplainHandler(c *gin.Context) {
	var req domain.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.CountRequest(application.OperationExplain, err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	appConfig, err := h.appConfigService.LoadAppConfig()
	if err != nil {
		h.logger.Error("failed to load app config", zap.Error(err))
		h.metrics.CountRequest(application.OperationExplain, err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: "Failed to load app config: " + err.Error()})
		return
	}

	resp, err := h.service.Explain(c.Request.Context(), &req, appConfig)
	h.metrics.CountRequest(application.OperationExplain, err)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GenerationHandler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), domain.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrEmptyCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
