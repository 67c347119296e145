package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
)

// ContextKey is a private type for context keys to avoid collisions.
type ContextKey string

const sessionCtxKey = ContextKey("session")

// CookieName carries the opaque session token.
const CookieName = "campground_session"

// Auth paths are excluded from return-to tracking so a login round trip does
// not clobber the destination the user was trying to reach.
const (
	LoginPath  = "/campgrounds/user/login"
	LogoutPath = "/campgrounds/user/logout"
)

// StaticPrefix is also excluded: pages reference stylesheets and default
// images, and those fetches must not overwrite the page as the return target.
const StaticPrefix = "/static/"

func tracksReturnTo(path string) bool {
	return path != LoginPath && path != LogoutPath && !strings.HasPrefix(path, StaticPrefix)
}

// Session is the per-request session handle placed in the request context.
type Session struct {
	Token string
	Data  *session.Data
	store session.Store
}

// Save persists the session record and refreshes its sliding expiry.
func (s *Session) Save(ctx context.Context) error {
	return s.store.Save(ctx, s.Token, s.Data)
}

// FromContext returns the request's session, or nil if the session
// middleware did not run.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionCtxKey).(*Session)
	return sess
}

// SessionManager loads sessions, tracks return-to targets and guards
// protected routes.
type SessionManager struct {
	store  session.Store
	logger *logger.Logger
}

func NewSessionManager(store session.Store, log *logger.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		logger: log.Named("SessionManager"),
	}
}

// LoadAndTrack resolves the session from the request cookie (creating a fresh
// anonymous one when absent or expired), records the requested path as the
// new return-to target for every non-auth request, and saves the record so
// the 7-day expiry slides on each hit.
func (m *SessionManager) LoadAndTrack(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		var data *session.Data

		if cookie, err := r.Cookie(CookieName); err == nil {
			token = cookie.Value
			loaded, err := m.store.Get(r.Context(), token)
			if err != nil {
				m.logger.Error("Failed to load session, issuing a fresh one", zap.Error(err))
			} else {
				data = loaded
			}
		}
		if token == "" || data == nil {
			token = session.NewToken()
			data = &session.Data{}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(session.TTL.Seconds()),
			HttpOnly: true,
		})

		if tracksReturnTo(r.URL.Path) {
			data.ShiftReturnTo(r.URL.RequestURI())
		}

		sess := &Session{Token: token, Data: data, store: m.store}
		if err := sess.Save(r.Context()); err != nil {
			m.logger.Error("Failed to persist session", zap.Error(err))
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous sessions to the login page with a
// transient notice. The return-to target recorded by LoadAndTrack brings the
// user back after a successful login.
func (m *SessionManager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := FromContext(r.Context())
		if sess == nil || !sess.Data.LoggedIn() {
			m.logger.Debug("Unauthenticated access to protected path", zap.String("path", r.URL.Path))
			if sess != nil {
				sess.Data.AddFlash(session.FlashError, "Please log in first")
				if err := sess.Save(r.Context()); err != nil {
					m.logger.Error("Failed to persist session", zap.Error(err))
				}
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
