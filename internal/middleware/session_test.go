package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]session.Data
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]session.Data)}
}

func (s *memoryStore) Get(_ context.Context, token string) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[token]
	if !ok {
		return nil, nil
	}
	copied := data
	return &copied, nil
}

func (s *memoryStore) Save(_ context.Context, token string, data *session.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[token] = *data
	return nil
}

func (s *memoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoadAndTrack_IssuesCookieAndRecordsReturnTo(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))

	cookie := sessionCookie(t, rec)
	data, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "/campgrounds/new", data.ReturnTo)
	assert.True(t, cookie.HttpOnly)
}

func TestLoadAndTrack_ShiftsReturnToAcrossRequests(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds", nil))
	cookie := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	data, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "/campgrounds/new", data.ReturnTo)
	assert.Equal(t, "/campgrounds", data.PreviousReturnTo)
}

func TestLoadAndTrack_AuthPathsDoNotTouchReturnTo(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	cookie := sessionCookie(t, rec)

	for _, path := range []string{LoginPath, LogoutPath} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	data, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "/campgrounds/new", data.ReturnTo)
}

func TestLoadAndTrack_StaticAssetsDoNotTouchReturnTo(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	cookie := sessionCookie(t, rec)

	// The page the user lands on pulls in stylesheets and default images;
	// those fetches must not become the post-login destination.
	for _, path := range []string{"/static/css/app.css", "/static/defaults/campground-default.jpg"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	data, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "/campgrounds/new", data.ReturnTo)
	assert.Equal(t, "", data.PreviousReturnTo)
}

func TestLoadAndTrack_UnknownTokenGetsFreshSession(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(noopHandler())

	req := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "expired-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookie := sessionCookie(t, rec)
	assert.NotEqual(t, "expired-token", cookie.Value)
}

func TestRequireLogin_RedirectsAnonymousWithFlash(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(manager.RequireLogin(noopHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	data, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.Len(t, data.Flashes, 1)
	assert.Equal(t, session.FlashError, data.Flashes[0].Kind)
	// The interrupted destination survives for the post-login redirect.
	assert.Equal(t, "/campgrounds/new", data.ReturnTo)
}

func TestRequireLogin_PassesAuthenticatedSessions(t *testing.T) {
	store := newMemoryStore()
	manager := NewSessionManager(store, logger.NewNop())
	handler := manager.LoadAndTrack(manager.RequireLogin(noopHandler()))

	token := session.NewToken()
	data := &session.Data{}
	data.SetUser(primitive.NewObjectID())
	require.NoError(t, store.Save(context.Background(), token, data))

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
