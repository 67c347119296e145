package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// Manager holds the application's Prometheus metrics.
type Manager struct {
	Registry                *prometheus.Registry
	UsersRegisteredTotal    prometheus.Counter
	LoginsTotal             prometheus.Counter
	CampgroundsCreatedTotal prometheus.Counter
	CampgroundsDeletedTotal prometheus.Counter
	ReviewsCreatedTotal     prometheus.Counter
	ReviewsDeletedTotal     prometheus.Counter
	HTTPErrorsTotal         *prometheus.CounterVec
}

// NewManager initializes and registers the metrics on a private registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	usersRegisteredTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "users_registered_total",
		Help:      "Total number of user registrations.",
	})
	loginsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	})
	campgroundsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "campgrounds_created_total",
		Help:      "Total number of campgrounds created.",
	})
	campgroundsDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "campgrounds_deleted_total",
		Help:      "Total number of campgrounds deleted.",
	})
	reviewsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews created.",
	})
	reviewsDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "reviews_deleted_total",
		Help:      "Total number of reviews deleted.",
	})
	httpErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP errors by error name.",
	}, []string{"error"})

	registry.MustRegister(
		usersRegisteredTotal,
		loginsTotal,
		campgroundsCreatedTotal,
		campgroundsDeletedTotal,
		reviewsCreatedTotal,
		reviewsDeletedTotal,
		httpErrorsTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:                registry,
		UsersRegisteredTotal:    usersRegisteredTotal,
		LoginsTotal:             loginsTotal,
		CampgroundsCreatedTotal: campgroundsCreatedTotal,
		CampgroundsDeletedTotal: campgroundsDeletedTotal,
		ReviewsCreatedTotal:     reviewsCreatedTotal,
		ReviewsDeletedTotal:     reviewsDeletedTotal,
		HTTPErrorsTotal:         httpErrorsTotal,
	}
}

// StartMetricsServer starts an HTTP server exposing /metrics.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
