package handler

import (
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

// ReviewHandler serves review creation and removal under a campground.
type ReviewHandler struct {
	reviews  *usecase.ReviewUsecase
	renderer *Renderer
	logger   *logger.Logger
}

func NewReviewHandler(reviews *usecase.ReviewUsecase, renderer *Renderer, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		renderer: renderer,
		logger:   log.Named("ReviewHandler"),
	}
}

func (h *ReviewHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	if sess := middleware.FromContext(r.Context()); sess != nil {
		sess.Data.AddFlash(kind, message)
		if err := sess.Save(r.Context()); err != nil {
			h.logger.Error("Failed to persist session", zap.Error(err))
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Create posts a review on a campground and returns to its detail page.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	campID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: invalid campground id", domain.ErrValidation))
		return
	}
	point, err := strconv.ParseInt(r.FormValue("point"), 10, 32)
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: point must be a number", domain.ErrValidation))
		return
	}

	sess := middleware.FromContext(r.Context())
	if _, err := h.reviews.Create(r.Context(), campID, sess.Data.CurrentUserID(),
		r.FormValue("review"), int32(point)); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Review added", "/campgrounds/"+campID.Hex())
}

// Delete removes a review and returns to the campground's detail page.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	campID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: invalid campground id", domain.ErrValidation))
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewId"))
	if err != nil {
		h.renderer.RenderError(w, r, fmt.Errorf("%w: invalid review id", domain.ErrValidation))
		return
	}

	if err := h.reviews.Delete(r.Context(), campID, reviewID); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	h.flashAndRedirect(w, r, session.FlashSuccess, "Review deleted", "/campgrounds/"+campID.Hex())
}
