package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/adapter/geocode"
	natsadapter "github.com/LunZaiZai0223/YelpCamp-v2/internal/adapter/messaging/nats"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/adapter/repository/mongodb"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/adapter/storage/s3"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/config"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/handler"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/metrics"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/router"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/usecase"
)

const staticDir = "./static"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	metricsManager := metrics.NewManager("yelpcamp")
	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	mongoClient, err := mongodb.NewConnection(cfg.MongoURI)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			appLogger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	imageStorage, err := s3.NewImageStorage(
		cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey,
		cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	publisher, err := natsadapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey, appLogger)

	userRepo := mongodb.NewUserRepository(db, appLogger)
	campgroundRepo := mongodb.NewCampgroundRepository(db, appLogger)
	reviewRepo := mongodb.NewReviewRepository(db, appLogger)

	userUC := usecase.NewUserUsecase(userRepo, campgroundRepo, imageStorage, publisher, metricsManager, appLogger)
	campgroundUC := usecase.NewCampgroundUsecase(campgroundRepo, reviewRepo, userRepo, imageStorage, geocoder, publisher, metricsManager, appLogger)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, campgroundRepo, publisher, metricsManager, appLogger)

	sessionStore := session.NewRedisStore(rdb, appLogger)
	sessionManager := middleware.NewSessionManager(sessionStore, appLogger)

	renderer, err := handler.NewRenderer(metricsManager, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to parse templates", zap.Error(err))
	}
	campgroundHandler := handler.NewCampgroundHandler(campgroundUC, renderer, appLogger)
	userHandler := handler.NewUserHandler(userUC, renderer, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewUC, renderer, appLogger)

	mux := router.New(campgroundHandler, userHandler, reviewHandler, renderer, sessionManager, staticDir, appLogger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
