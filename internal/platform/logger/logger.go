package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps Zap with the application's environment-driven configuration.
type Logger struct {
	*zap.Logger
	config *LoggerConfig
}

var (
	globalLogger *Logger
	once         sync.Once
)

// NewLogger initializes the global logger based on configuration.
// It's designed to be called once; subsequent calls return the same instance.
func NewLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()

		var zapConfig zap.Config
		if cfg.Level == "debug" {
			zapConfig = zap.NewDevelopmentConfig()
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig = zap.NewProductionConfig()
			zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		if err := zapConfig.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Invalid LOG_LEVEL '%s', defaulting to 'info'. Error: %v\n", cfg.Level, err)
			zapConfig.Level.SetLevel(zapcore.InfoLevel)
		}

		if cfg.OutputFile != "stdout" && cfg.OutputFile != "stderr" {
			logDir := filepath.Dir(cfg.OutputFile)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to create log directory '%s', defaulting to stdout. Error: %v\n", logDir, err)
				zapConfig.OutputPaths = []string{"stdout"}
				zapConfig.ErrorOutputPaths = []string{"stderr"}
			} else {
				zapConfig.OutputPaths = []string{cfg.OutputFile, "stdout"}
				zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, "stderr"}
			}
		} else {
			zapConfig.OutputPaths = []string{cfg.OutputFile}
			zapConfig.ErrorOutputPaths = []string{"stderr"}
		}

		if strings.ToLower(cfg.Format) == "console" || strings.ToLower(cfg.Format) == "text" {
			zapConfig.Encoding = "console"
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig.Encoding = "json"
		}

		logger, err := zapConfig.Build(zap.AddCallerSkip(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing custom Zap logger: %v. Falling back to basic logger.\n", err)
			logger, _ = zap.NewProduction()
		}

		globalLogger = &Logger{Logger: logger, config: cfg}
		globalLogger.Info("Logger initialized", zap.String("level", cfg.Level), zap.String("format", cfg.Format))
	})
	return globalLogger
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}

// NewNop returns a no-op logger for tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: DefaultConfig()}
}
