package config

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName           string `mapstructure:"SERVICE_NAME"`
	HTTPPort              string `mapstructure:"HTTP_PORT"`
	MongoURI              string `mapstructure:"MONGO_URI"`
	MongoDatabase         string `mapstructure:"MONGO_DATABASE"`
	RedisAddress          string `mapstructure:"REDIS_ADDRESS"`
	NATSURL               string `mapstructure:"NATS_URL"`
	MinIOEndpoint         string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey        string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey        string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket           string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL           bool   `mapstructure:"MINIO_USE_SSL"`
	GeocoderURL           string `mapstructure:"GEOCODER_URL"`
	GeocoderAPIKey        string `mapstructure:"GEOCODER_API_KEY"`
	PrometheusMetricsPort string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	viper.SetDefault("SERVICE_NAME", "campground-service")
	viper.SetDefault("HTTP_PORT", "3000")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "sideProject1")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "campground-images")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("GEOCODER_URL", "https://maps.googleapis.com/maps/api/geocode/json")
	viper.SetDefault("GEOCODER_API_KEY", "")
	viper.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.MongoURI == "" {
		appLogger.Fatal("MONGO_URI is not set. This is required.")
	}
	if cfg.MongoDatabase == "" {
		appLogger.Fatal("MONGO_DATABASE is not set. This is required.")
	}
	if cfg.GeocoderAPIKey == "" {
		appLogger.Warn("GEOCODER_API_KEY is empty; geocoding requests will likely be rejected by the provider.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_address", cfg.RedisAddress),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("minio_endpoint", cfg.MinIOEndpoint),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
	)

	return &cfg, nil
}
