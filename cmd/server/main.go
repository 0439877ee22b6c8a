package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skillsprint/video-library-go/internal/config"
	"github.com/skillsprint/video-library-go/internal/events"
	"github.com/skillsprint/video-library-go/internal/handler"
	"github.com/skillsprint/video-library-go/internal/library"
	"github.com/skillsprint/video-library-go/internal/middleware"
	"github.com/skillsprint/video-library-go/internal/storage"
	"github.com/skillsprint/video-library-go/internal/youtube"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("starting video library service",
		zap.Int("port", cfg.Server.Port),
		zap.Int("maxUserVideos", cfg.Videos.MaxUserVideos),
		zap.Int("maxAiSearches", cfg.Videos.MaxAISearches),
		zap.Bool("probeEnabled", cfg.Videos.ProbeEnabled),
	)

	ctx := context.Background()

	pool, err := storage.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	logger.Log.Info("database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)

	// Event publishing is optional: with no broker host configured the
	// service runs without it.
	var publisher *events.Publisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err = events.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("failed to connect to RabbitMQ, library events disabled",
				zap.Error(err),
			)
			publisher = nil
		} else {
			defer publisher.Close()
			logger.Log.Info("RabbitMQ publisher initialized",
				zap.String("exchange", cfg.RabbitMQ.Exchange),
			)
		}
	}

	var prober youtube.Prober
	if cfg.Videos.ProbeEnabled {
		prober = youtube.NewOEmbedProber(nil, cfg.Videos.ProbeTimeout)
	} else {
		prober = youtube.StaticProber{Available: true}
	}

	userRepo := storage.NewUserVideoRepository(pool)
	courseRepo := storage.NewCourseModuleRepository(pool)
	service := library.New(prober, cfg.Videos.MaxUserVideos, cfg.Videos.MaxAISearches)

	videoHandler := handler.NewVideoHandler(service, userRepo, courseRepo, publisher)
	courseHandler := handler.NewCourseHandler(courseRepo)
	healthHandler := handler.NewHealthHandler(pool, publisher)

	router := setupRouter(cfg, videoHandler, courseHandler, healthHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server listening", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("server stopped gracefully")
	}
}

func setupRouter(
	cfg *config.Config,
	videoHandler *handler.VideoHandler,
	courseHandler *handler.CourseHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.NewAPIKeyAuth(cfg.Auth.APIKeys)

	api := router.Group("/api/v1", auth.Handler())

	modules := api.Group("/courses/:courseID/modules/:moduleID")

	// Video state is per user; responses must never be cached.
	videos := modules.Group("/videos", middleware.NoStore())
	videos.GET("", videoHandler.GetModuleVideos)
	videos.GET("/all", videoHandler.GetAllModuleVideos)
	videos.POST("", videoHandler.AddVideo)
	videos.POST("/ai", videoHandler.ProcessAISearch)
	videos.DELETE("", videoHandler.RemoveVideo)

	modules.GET("/content", courseHandler.GetContent)
	modules.PUT("/content", courseHandler.UpsertContent)

	return router
}
