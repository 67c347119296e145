package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// Logger logs each HTTP request with method, path, status and duration.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	requestLogger := log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			requestLogger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
