package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/dto"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/handler"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/middleware"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

type RouterConfig struct {
	GenerationHandler *handler.GenerationHandler
	RateLimiter       *middleware.RedisRateLimiter
	Logger            domain.LoggingRepository
	MaxAllowedSize    int
}

func SetupRoutes(config RouterConfig) *gin.Engine {

	g := gin.Default()
	g.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"https://*", "http://*"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.AddRequestIDAndTime(),
		middleware.PanicRecoveryMiddleware(config.Logger),
		middleware.LoggingRequestMiddleware(config.Logger),
		middleware.Metrics(),
	)

	// expensive routes pass the rate limiter before touching the device
	// or the feature extractor
	generate := g.Group("")
	generate.Use(middleware.RateLimiterMiddleware(config.RateLimiter, config.Logger), middleware.CheckContentType())
	{
		generate.Handle("POST", "/generate", middleware.CheckContentBody[dto.GenerateRequest](config.MaxAllowedSize), config.GenerationHandler.GenerateHandler)
		generate.Handle("POST", "/batch-generate", middleware.CheckContentBody[dto.BatchGenerateRequest](config.MaxAllowedSize), config.GenerationHandler.BatchGenerateHandler)
		generate.Handle("POST", "/evaluate", middleware.CheckContentBody[dto.EvaluateRequest](config.MaxAllowedSize), config.GenerationHandler.EvaluateHandler)
	}

	// public routes
	g.Handle("GET", "/health", config.GenerationHandler.HealthHandler)
	g.Handle("GET", "/generations", config.GenerationHandler.HistoryHandler)
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return g
}
