package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/middleware"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/session"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/usecase"
)

// CampgroundHandler serves the campground index, detail, form and like
// endpoints.
type CampgroundHandler struct {
	campgrounds *usecase.CampgroundUsecase
	renderer    *Renderer
	logger      *logger.Logger
}

func NewCampgroundHandler(campgrounds *usecase.CampgroundUsecase, renderer *Renderer, log *logger.Logger) *CampgroundHandler {
	return &CampgroundHandler{
		campgrounds: campgrounds,
		renderer:    renderer,
		logger:      log.Named("CampgroundHandler"),
	}
}

func (h *CampgroundHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.AddFlash(kind, message)
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func campgroundID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid campground id", domain.ErrValidation)
	}
	return id, nil
}

func parseCampgroundForm(r *http.Request) (usecase.CampgroundInput, error) {
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return usecase.CampgroundInput{}, fmt.Errorf("%w: price must be a number", domain.ErrValidation)
	}
	uploads, err := readUploads(r, "image")
	if err != nil {
		return usecase.CampgroundInput{}, err
	}
	return usecase.CampgroundInput{
		Title:       r.FormValue("title"),
		Location:    r.FormValue("location"),
		Price:       price,
		Description: r.FormValue("description"),
		Uploads:     uploads,
	}, nil
}

// Home renders the landing page.
func (h *CampgroundHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "home.tmpl", nil)
}

// Index lists every campground, newest first.
func (h *CampgroundHandler) Index(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.campgrounds.ListAll(r.Context())
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.renderer.Render(w, r, "campgrounds_index.tmpl", summaries)
}

// New renders the create form.
func (h *CampgroundHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "campgrounds_new.tmpl", nil)
}

// Create makes a new campground and redirects to its detail page.
func (h *CampgroundHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: malformed form data", domain.ErrValidation))
		return
	}
	input, err := parseCampgroundForm(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}

	sess := middleware.FromContext(r.Context())
	camp, err := h.campgrounds.Create(r.Context(), sess.Data.CurrentUserID(), input)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Successfully created a campground!",
		"/campgrounds/"+camp.ID.Hex())
}

type showData struct {
	View      *domain.CampgroundView
	LikedByMe bool
}

// Show renders the detail page. A bad or unknown ID sends the user back to
// the index with a notice, and the return-to target rolls back so a later
// login does not land on the dead page.
func (h *CampgroundHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err == nil {
		var view *domain.CampgroundView
		if view, err = h.campgrounds.Get(r.Context(), id); err == nil {
			data := showData{View: view}
			if sess := middleware.FromContext(r.Context()); sess != nil && sess.Data.LoggedIn() {
				data.LikedByMe = view.Campground.LikedBy(sess.Data.CurrentUserID())
			}
			h.renderer.Render(w, r, "campgrounds_show.tmpl", data)
			return
		}
	}

	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.RestoreReturnTo()
		if saveErr := sess.Save(r.Context()); saveErr != nil {
			h.logger.Error("Failed to persist session", zap.Error(saveErr))
		}
	}
	h.logger.Debug("Campground show failed", zap.Error(err))
	h.flashAndRedirect(w, r, session.FlashError, "Campground not found", "/campgrounds")
}

// Edit renders the edit form for the owner.
func (h *CampgroundHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	view, err := h.campgrounds.Get(r.Context(), id)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	sess := middleware.FromContext(r.Context())
	if view.Campground.Author != sess.Data.CurrentUserID() {
		h.renderer.RenderError(w, r, domain.ErrForbidden)
		return
	}
	h.renderer.Render(w, r, "campgrounds_edit.tmpl", view.Campground)
}

// Update edits a campground and returns to its detail page.
func (h *CampgroundHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: malformed form data", domain.ErrValidation))
		return
	}
	base, err := parseCampgroundForm(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	input := usecase.UpdateCampgroundInput{
		CampgroundInput: base,
		DeleteFilenames: r.Form["deleteImages"],
	}

	sess := middleware.FromContext(r.Context())
	if _, err := h.campgrounds.Update(r.Context(), id, sess.Data.CurrentUserID(), input); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Successfully updated the campground!",
		"/campgrounds/"+id.Hex())
}

// Delete removes a campground and returns to the index.
func (h *CampgroundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := campgroundID(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	sess := middleware.FromContext(r.Context())
	if err := h.campgrounds.Delete(r.Context(), id, sess.Data.CurrentUserID()); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Campground deleted", "/campgrounds")
}

// Like records the current user's like and returns to the detail page.
func (h *CampgroundHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.campgrounds.Like)
}

// Unlike removes the current user's like and returns to the detail page.
func (h *CampgroundHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.campgrounds.Unlike)
}

func (h *CampgroundHandler) toggleLike(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id, userID primitive.ObjectID) error,
) {
	id, err := campgroundID(r)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	sess := middleware.FromContext(r.Context())
	if err := op(r.Context(), id, sess.Data.CurrentUserID()); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/campgrounds/"+id.Hex(), http.StatusFound)
}
