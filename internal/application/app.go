package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	router "github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/handler"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/adapters/http/middleware"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/config"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/diffusion"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/features"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/imaging"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/repository/postgres"
	redisrepo "github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/infrastructure/repository/redis"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/usecase"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/pkg/logger"
)

type App struct {
	Cfg *config.Config
}

func (a App) Run() {

	rootctx, rootcancel := context.WithCancel(context.Background())
	defer rootcancel()

	logger := logger.NewLogger(a.Cfg.LogFile)

	if err := imaging.EnsureDir(a.Cfg.OutputDir); err != nil {
		logger.Error("failed to create output directory", "reason", err.Error())
		panic(err)
	}

	dbPool, err := postgres.OpenDatabaseConnPool(a.Cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database connection failed", "reason", err.Error())
		panic(err)
	}
	defer dbPool.Close()

	redisConn, err := redisrepo.ConnectToRedis(a.Cfg.RedisAddr, a.Cfg.RedisDB)
	if err != nil {
		logger.Error("redis connection failed", slog.String("reason", err.Error()))
		panic(err)
	}
	defer redisConn.Close()

	generationRepo := postgres.NewGenerationRepo(dbPool)
	historyCache := redisrepo.NewHistoryCache(redisConn, a.Cfg.HistoryLimit)

	generator, err := a.buildGenerator(rootctx)
	if err != nil {
		logger.Error("failed to create generation backend", "reason", err.Error())
		panic(err)
	}
	logger.Info("generation backend ready", "backend", generator.Name())

	pipeline := usecase.NewGenerationPipeline(a.Cfg, generator, generationRepo, historyCache, logger)

	featureClient := features.NewClient(a.Cfg.FeaturesBaseURL, time.Duration(a.Cfg.FeaturesTimeout)*time.Second)
	evaluator := usecase.NewEvaluator(featureClient, a.Cfg.MinEvaluationImages, logger)

	rateLimiter := middleware.NewRedisRateLimiter(redisConn, a.Cfg.RataLimitCapacity, a.Cfg.RataLimitFillRate, time.Hour)

	h := handler.NewGenerationHandler(pipeline, evaluator, logger, generator.Name())

	routerCfg := router.RouterConfig{
		GenerationHandler: h,
		RateLimiter:       rateLimiter,
		Logger:            logger,
		MaxAllowedSize:    a.Cfg.MaxAllowedSize,
	}

	g := router.SetupRoutes(routerCfg)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.Cfg.ServerHost, a.Cfg.ServerPort),
		Handler: g,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr)
		serverErr := server.ListenAndServe()
		if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
			logger.Error("failed to start the server", "reason", serverErr.Error())
		}
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan

	shutdownctx, shutdowncancelFunc := context.WithTimeout(context.Background(), time.Duration(a.Cfg.ServerShutdownTimeout)*time.Second)
	defer shutdowncancelFunc()
	if err := server.Shutdown(shutdownctx); err != nil {
		logger.Error("server closed with error", "reason", err.Error())
	}

	logger.Info("server stopped")
}

func (a App) buildGenerator(ctx context.Context) (domain.ImageGenerator, error) {
	switch a.Cfg.Backend {
	case "imagen":
		return diffusion.NewImagenClient(ctx, a.Cfg.GeminiAPI, a.Cfg.GeminiModel)
	default:
		return diffusion.NewClient(a.Cfg.DiffusionBaseURL, a.Cfg.DiffusionModel, time.Duration(a.Cfg.DiffusionTimeout)*time.Second), nil
	}
}
