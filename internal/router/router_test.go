package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/handler"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/router"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/usecase"
)

// In-memory collaborators so the full HTTP stack runs without external
// services.

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

type stubUserRepo struct {
	user *domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.user != nil && r.user.Username == username {
		return r.user, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByIDs(context.Context, []primitive.ObjectID) ([]*domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) UsernameExists(context.Context, string) (bool, error) { return false, nil }
func (r *stubUserRepo) EmailExists(context.Context, string) (bool, error)    { return false, nil }
func (r *stubUserRepo) UpdateAvatar(context.Context, primitive.ObjectID, *domain.Image) error {
	return nil
}

type stubCampgroundRepo struct{}

func (stubCampgroundRepo) Create(context.Context, *domain.Campground) error { return nil }
func (stubCampgroundRepo) Update(context.Context, *domain.Campground) error { return nil }
func (stubCampgroundRepo) Delete(context.Context, primitive.ObjectID) (*domain.Campground, error) {
	return nil, domain.ErrNotFound
}
func (stubCampgroundRepo) FindByID(context.Context, primitive.ObjectID) (*domain.Campground, error) {
	return nil, domain.ErrNotFound
}
func (stubCampgroundRepo) FindAll(context.Context) ([]*domain.Campground, error) { return nil, nil }
func (stubCampgroundRepo) FindByAuthor(context.Context, primitive.ObjectID) ([]*domain.Campground, error) {
	return nil, nil
}
func (stubCampgroundRepo) AppendImages(context.Context, primitive.ObjectID, []domain.Image) error {
	return nil
}
func (stubCampgroundRepo) RemoveImagesByFilename(context.Context, primitive.ObjectID, []string) error {
	return nil
}
func (stubCampgroundRepo) PushReview(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (stubCampgroundRepo) PullReview(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (stubCampgroundRepo) AddLiker(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (stubCampgroundRepo) RemoveLiker(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

type stubReviewRepo struct{}

func (stubReviewRepo) Create(context.Context, *domain.Review) error          { return nil }
func (stubReviewRepo) Delete(context.Context, primitive.ObjectID) error      { return nil }
func (stubReviewRepo) DeleteMany(context.Context, []primitive.ObjectID) (int64, error) {
	return 0, nil
}
func (stubReviewRepo) FindByIDs(context.Context, []primitive.ObjectID) ([]*domain.Review, error) {
	return nil, nil
}

type stubStorage struct{}

func (stubStorage) Upload(_ context.Context, filename, _ string, _ []byte) (domain.Image, error) {
	return domain.Image{URL: "http://storage/" + filename, Filename: filename}, nil
}
func (stubStorage) Delete(context.Context, string) error { return nil }

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string) (float64, float64, error) {
	return 1.0, 2.0, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, string, interface{}) error { return nil }

func newTestServer(t *testing.T, users *stubUserRepo) http.Handler {
	t.Helper()
	log := logger.NewNop()
	store := newMemoryStore()

	userUC := usecase.NewUserUsecase(users, stubCampgroundRepo{}, stubStorage{}, stubPublisher{}, nil, log)
	campgroundUC := usecase.NewCampgroundUsecase(stubCampgroundRepo{}, stubReviewRepo{}, users,
		stubStorage{}, stubGeocoder{}, stubPublisher{}, nil, log)
	reviewUC := usecase.NewReviewUsecase(stubReviewRepo{}, stubCampgroundRepo{}, stubPublisher{}, nil, log)

	renderer, err := handler.NewRenderer(nil, log)
	require.NoError(t, err)

	return router.New(
		handler.NewCampgroundHandler(campgroundUC, renderer, log),
		handler.NewUserHandler(userUC, renderer, log),
		handler.NewReviewHandler(reviewUC, renderer, log),
		renderer,
		middleware.NewSessionManager(store, log),
		t.TempDir(),
		log,
	)
}

func fixtureUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           primitive.NewObjectID(),
		Username:     "camperone",
		Email:        "camper@example.com",
		PasswordHash: string(hash),
	}
}

func findCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

// A logged-out user who tries to create a campground is bounced to login and,
// after logging in, lands back on the page they were trying to reach.
func TestLoginReturnsToInterruptedPage(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{user: fixtureUser(t)})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
	cookie := findCookie(rec)
	require.NotNil(t, cookie)

	form := url.Values{"username": {"camperone"}, "password": {"supersecret"}}
	req := httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds/new", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWithoutHistoryFallsBackToIndex(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{user: fixtureUser(t)})

	form := url.Values{"username": {"camperone"}, "password": {"supersecret"}}
	req := httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))
}

func TestLoginWithBadPasswordBouncesBack(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{user: fixtureUser(t)})

	form := url.Values{"username": {"camperone"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
}

func TestLogoutReturnsToLastVisitedPage(t *testing.T) {
	user := fixtureUser(t)
	srv := newTestServer(t, &stubUserRepo{user: user})

	// Log in first.
	form := url.Values{"username": {"camperone"}, "password": {"supersecret"}}
	req := httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	cookie := findCookie(rec)
	require.NotNil(t, cookie)

	// Visit a page, then log out: logout returns there.
	req = httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
	req.AddCookie(cookie)
	srv.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, middleware.LogoutPath, nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))
}

// Asset fetches happen between the bounce to login and the login POST in
// every real browser session; they must not steal the redirect target.
func TestLoginReturnsToInterruptedPageDespiteAssetFetches(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{user: fixtureUser(t)})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	cookie := findCookie(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil)
	req.AddCookie(cookie)
	srv.ServeHTTP(httptest.NewRecorder(), req)

	form := url.Values{"username": {"camperone"}, "password": {"supersecret"}}
	req = httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds/new", rec.Header().Get("Location"))
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgroundz", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

// A typo URL visited before login must not become the post-login target: the
// catch-all rolls the return target back to the last real page.
func TestUnknownPathDoesNotBecomeLoginRedirectTarget(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{user: fixtureUser(t)})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))
	cookie := findCookie(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/campgroundz", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	form := url.Values{"username": {"camperone"}, "password": {"supersecret"}}
	req = httptest.NewRequest(http.MethodPost, middleware.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/campgrounds/new", rec.Header().Get("Location"))
}

func TestLogoutRequiresLogin(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, middleware.LogoutPath, nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))
}

func TestAnonymousCanBrowseIndex(t *testing.T) {
	srv := newTestServer(t, &stubUserRepo{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
