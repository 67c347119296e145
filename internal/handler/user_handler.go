package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/usecase"
)

// UserHandler serves registration, login/logout and profile pages.
type UserHandler struct {
	users    *usecase.UserUsecase
	renderer *Renderer
	logger   *logger.Logger
}

func NewUserHandler(users *usecase.UserUsecase, renderer *Renderer, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		renderer: renderer,
		logger:   log.Named("UserHandler"),
	}
}

// flashAndRedirect queues a transient notice and sends the client elsewhere.
func (h *UserHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.AddFlash(kind, message)
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// ShowRegisterForm renders the sign-up page. Logged-in users are sent to the
// campground index instead.
func (h *UserHandler) ShowRegisterForm(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.FromContext(r.Context()); sess != nil && sess.Data.LoggedIn() {
		h.flashAndRedirect(w, r, session.FlashError, "You are already logged in", "/campgrounds")
		return
	}
	h.renderer.Render(w, r, "user_register.tmpl", nil)
}

// Register creates the account, logs the new user in on the same session and
// sends them to the campground index.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: malformed form data", domain.ErrValidation))
		return
	}
	avatar, err := readSingleUpload(r, "image")
	if err != nil {
		h.flashAndRedirect(w, r, session.FlashError, err.Error(), "/campgrounds/user/register")
		return
	}

	user, err := h.users.Register(r.Context(),
		r.FormValue("username"), r.FormValue("email"), r.FormValue("password"), avatar)
	if err != nil {
		status, _ := classify(err)
		if status < http.StatusInternalServerError {
			h.flashAndRedirect(w, r, session.FlashError, err.Error(), "/campgrounds/user/register")
			return
		}
		h.renderer.RenderError(w, r, err)
		return
	}

	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.SetUser(user.ID)
		sess.Data.AddFlash(session.FlashSuccess, "Welcome to YelpCamp, "+user.Username)
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, "/campgrounds", http.StatusFound)
}

// ShowLoginForm renders the login page. Logged-in users are sent to the
// campground index instead.
func (h *UserHandler) ShowLoginForm(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.FromContext(r.Context()); sess != nil && sess.Data.LoggedIn() {
		h.flashAndRedirect(w, r, session.FlashError, "You are already logged in", "/campgrounds")
		return
	}
	h.renderer.Render(w, r, "user_login.tmpl", nil)
}

// Login authenticates and redirects to the remembered return-to target, so a
// user interrupted mid-flow lands back where they were headed.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.flashAndRedirect(w, r, session.FlashError, "Invalid username or password", middleware.LoginPath)
		return
	}

	target := "/campgrounds"
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.SetUser(user.ID)
		if sess.Data.ReturnTo != "" {
			target = sess.Data.ReturnTo
		}
		sess.Data.AddFlash(session.FlashSuccess, "Welcome back, "+user.Username)
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout clears the authenticated user from the session and redirects to the
// remembered return-to target, falling back to the home page.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.ClearUser()
		if sess.Data.ReturnTo != "" {
			target = sess.Data.ReturnTo
		}
		sess.Data.AddFlash(session.FlashSuccess, "Logged you out!")
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type profileData struct {
	User        *domain.User
	Campgrounds []*domain.Campground
}

// ShowProfile renders a user's public page with the campgrounds they
// authored.
func (h *UserHandler) ShowProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrValidation))
		return
	}
	user, campgrounds, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.renderer.Render(w, r, "user_profile.tmpl", profileData{User: user, Campgrounds: campgrounds})
}

// ChangeAvatar updates or clears the acting user's avatar and returns to the
// profile page.
func (h *UserHandler) ChangeAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrValidation))
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: malformed form data", domain.ErrValidation))
		return
	}
	file, err := readSingleUpload(r, "image")
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}

	sess := middleware.FromContext(r.Context())
	if err := h.users.ChangeAvatar(r.Context(), sess.Data.CurrentUserID(), userID, file); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Avatar updated", "/campgrounds/user/"+userID.Hex())
}
