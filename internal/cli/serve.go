package cli

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codepair/internal/config"
	configapp "codepair/internal/features/config/application"
	config_http "codepair/internal/features/config/presentation/http"
	"codepair/internal/features/generation/application"
	"codepair/internal/features/generation/infrastructure"
	generation_http "codepair/internal/features/generation/presentation/http"
	"codepair/internal/metrics"
	"codepair/internal/middleware"
	"codepair/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page and the /generate and /explain endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(settingsFile)
			if err != nil {
				return err
			}
			if addr != "" {
				settings.Addr = addr
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(!settings.IsProduction() && verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, settings, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides settings)")
	return cmd
}

func runServer(ctx context.Context, settings *config.Settings, logger *zap.Logger) error {
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	router, stopRouter, err := newRouter(settings, logger, reg)
	if err != nil {
		return err
	}
	defer stopRouter()

	srv := &http.Server{
		Addr:              settings.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("codepair listening",
			zap.String("addr", settings.Addr),
			zap.String("model", settings.Model),
			zap.Bool("api_key_configured", settings.APIKey != ""),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires every route of the service. The returned stop function
// releases the background work of the rate limiter.
func newRouter(settings *config.Settings, logger *zap.Logger, reg *prometheus.Registry) (*gin.Engine, func(), error) {
	m := metrics.New(reg)

	var client infrastructure.ChatClient
	if settings.APIKey != "" {
		c, err := infrastructure.NewOpenAIClient(settings.APIKey, settings.APIBaseURL, settings.Model, logger)
		if err != nil {
			return nil, nil, err
		}
		client = c
	} else {
		logger.Warn("no API key configured; /generate and /explain will report it")
	}

	appConfigService := config.NewAppConfigService(settings.AppConfigPath, logger)
	codePairService := application.NewCodePairService(client, settings.UpstreamTimeout, logger, m)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	static := web.Static()
	index, err := fs.ReadFile(static, "index.html")
	if err != nil {
		return nil, nil, err
	}
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	r.StaticFS("/static", http.FS(static))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Generation routes
	stop := func() {}
	generationGroup := r.Group("")
	if settings.RateLimit > 0 {
		limiter := middleware.PerMinute(settings.RateLimit)
		stop = limiter.Stop
		generationGroup.Use(middleware.RateLimitMiddleware(limiter))
	}
	{
		handler := generation_http.NewGenerationHandler(codePairService, appConfigService, logger, m)
		generationGroup.POST("/generate", handler.GenerateHandler)
		generationGroup.POST("/explain", handler.ExplainHandler)
	}

	// Config API routes
	configGroup := r.Group("/api/config")
	{
		handler := config_http.NewAppConfigHandler(configapp.NewConfigService(appConfigService))
		configGroup.GET("/app", handler.GetAppConfigHandler)
		configGroup.POST("/app", handler.SaveAppConfigHandler)
	}

	return r, stop, nil
}
