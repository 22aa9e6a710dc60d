package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/nutrient-tracker/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/rda", handler.CalculateRDA)
		api.GET("/foods/:name", handler.LookupFood)
		api.POST("/detections/summary", handler.SummarizeDetections)

		api.POST("/sessions", handler.OpenSession)
		api.DELETE("/sessions/:id", handler.CloseSession)
		api.POST("/sessions/:id/meals", handler.SaveMeal)
		api.GET("/sessions/:id/meals", handler.ListMeals)
		api.GET("/sessions/:id/dashboard", handler.Dashboard)
		api.GET("/sessions/:id/calendar", handler.Calendar)

		api.POST("/recommendations", handler.Recommend)
		api.POST("/vegetarian", handler.Vegetarian)
		api.POST("/food-info", handler.FoodInfo)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
