package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/metrics"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer executes the server-rendered views. Every page receives the
// session-derived fields (current user, flashes) alongside its own data.
type Renderer struct {
	templates *template.Template
	metrics   *metrics.Manager
	logger    *logger.Logger
}

func NewRenderer(m *metrics.Manager, log *logger.Logger) (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		templates: templates,
		metrics:   m,
		logger:    log.Named("Renderer"),
	}, nil
}

type page struct {
	LoggedIn      bool
	CurrentUserID string
	Flashes       []session.Flash
	Data          interface{}
}

// Render executes the named template. Flashes queued on the session are
// consumed here, so a notice shows exactly once.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	rn.render(w, r, http.StatusOK, name, data)
}

func (rn *Renderer) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	p := page{Data: data}
	if sess := middleware.FromContext(r.Context()); sess != nil {
		p.LoggedIn = sess.Data.LoggedIn()
		p.CurrentUserID = sess.Data.UserID
		p.Flashes = sess.Data.ConsumeFlashes()
		if err := sess.Save(r.Context()); err != nil {
			rn.logger.Error("Failed to persist session", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rn.templates.ExecuteTemplate(w, name, p); err != nil {
		rn.logger.Error("Failed to execute template", zap.String("template", name), zap.Error(err))
	}
}

type alertData struct {
	Name    string
	Message string
}

// RenderError maps a domain error to an HTTP status and renders the alert
// page carrying the error's name and message.
func (rn *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status, name := classify(err)
	if rn.metrics != nil {
		rn.metrics.HTTPErrorsTotal.WithLabelValues(name).Inc()
	}
	if status >= http.StatusInternalServerError {
		rn.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		rn.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	rn.render(w, r, status, "alert.tmpl", alertData{Name: name, Message: err.Error()})
}

// NotFound handles unmatched paths. The dead-end URL was recorded as the
// return-to target by the session tracker before routing, so it is rolled
// back here; a later login then returns to the last real page instead of the
// typo.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.RestoreReturnTo()
		if err := sess.Save(r.Context()); err != nil {
			rn.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	if rn.metrics != nil {
		rn.metrics.HTTPErrorsTotal.WithLabelValues("NotFound").Inc()
	}
	rn.render(w, r, http.StatusNotFound, "alert.tmpl", alertData{Name: "NotFound", Message: "Page Not Found"})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "ValidationError"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UnsupportedFormat"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, "FileTooLarge"
	case errors.Is(err, domain.ErrGeocodeNoMatch):
		return http.StatusBadRequest, "GeocodeNoMatch"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "Conflict"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}
