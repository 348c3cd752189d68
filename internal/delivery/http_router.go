package delivery

import (
	"adpulse/internal/delivery/middleware"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers       *HTTPHandlers
	logger         *logger.Logger
	metrics        *metrics.Metrics
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics, rateLimitRPS float64, rateLimitBurst int) *HTTPRouter {
	return &HTTPRouter{
		handlers:       handlers,
		logger:         logger,
		metrics:        metrics,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Report ingestion; uploads are the expensive path so they carry
		// the rate limiter.
		reports := v1.Group("/reports")
		reports.Use(middleware.RateLimit(r.rateLimitRPS, r.rateLimitBurst, r.logger))
		{
			reports.POST("/upload", r.handlers.UploadReports)
			reports.POST("/validate", r.handlers.ValidateReport)
		}

		// Dataset queries
		dataset := v1.Group("/dataset")
		{
			dataset.GET("/summary", r.handlers.GetSummary)
			dataset.GET("/campaigns", r.handlers.GetCampaigns)
			dataset.GET("/creatives", r.handlers.GetCreatives)
			dataset.GET("/apps", r.handlers.GetApps)
			dataset.GET("/exchanges", r.handlers.GetExchanges)
			dataset.GET("/inventory", r.handlers.GetInventory)
		}
		v1.DELETE("/dataset", r.handlers.ClearDataset)

		// Exports
		export := v1.Group("/export")
		{
			export.GET("/campaigns.csv", r.handlers.ExportCampaignsCSV)
			export.GET("/dataset.json", r.handlers.ExportDatasetJSON)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
