package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/metrics"
)

// ReviewUsecase implements review creation and removal, keeping the parent
// campground's review list in sync.
type ReviewUsecase struct {
	reviews     domain.ReviewRepository
	campgrounds domain.CampgroundRepository
	publisher   domain.EventPublisher
	metrics     *metrics.Manager
	logger      *logger.Logger
}

func NewReviewUsecase(
	reviews domain.ReviewRepository,
	campgrounds domain.CampgroundRepository,
	publisher domain.EventPublisher,
	m *metrics.Manager,
	log *logger.Logger,
) *ReviewUsecase {
	return &ReviewUsecase{
		reviews:     reviews,
		campgrounds: campgrounds,
		publisher:   publisher,
		metrics:     m,
		logger:      log.Named("ReviewUsecase"),
	}
}

// Create validates and stores a review, then attaches it to the campground.
// The campground must exist before anything is written.
func (uc *ReviewUsecase) Create(ctx context.Context, campgroundID, authorID primitive.ObjectID, body string, point int32) (*domain.Review, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: review body cannot be empty", domain.ErrValidation)
	}
	if point < domain.MinReviewPoint || point > domain.MaxReviewPoint {
		return nil, fmt.Errorf("%w: point must be between %d and %d", domain.ErrValidation, domain.MinReviewPoint, domain.MaxReviewPoint)
	}

	if _, err := uc.campgrounds.FindByID(ctx, campgroundID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Body:   body,
		Point:  point,
		Author: authorID,
	}
	if err := uc.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := uc.campgrounds.PushReview(ctx, campgroundID, review.ID); err != nil {
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, "review.created", map[string]interface{}{
		"review_id":     review.ID.Hex(),
		"campground_id": campgroundID.Hex(),
		"author_id":     authorID.Hex(),
	}); err != nil {
		uc.logger.Warn("Failed to publish review.created event", zap.Error(err))
	}
	if uc.metrics != nil {
		uc.metrics.ReviewsCreatedTotal.Inc()
	}

	uc.logger.Info("Review created",
		zap.String("review_id", review.ID.Hex()),
		zap.String("campground_id", campgroundID.Hex()))
	return review, nil
}

// Delete detaches the review from the campground and removes the review
// document. The two deletes are independent: a failed detach is logged and
// the document delete still runs.
func (uc *ReviewUsecase) Delete(ctx context.Context, campgroundID, reviewID primitive.ObjectID) error {
	if err := uc.campgrounds.PullReview(ctx, campgroundID, reviewID); err != nil {
		uc.logger.Error("Failed to detach review from campground",
			zap.String("review_id", reviewID.Hex()),
			zap.String("campground_id", campgroundID.Hex()),
			zap.Error(err))
	}
	if err := uc.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	if err := uc.publisher.Publish(ctx, "review.deleted", map[string]interface{}{
		"review_id":     reviewID.Hex(),
		"campground_id": campgroundID.Hex(),
	}); err != nil {
		uc.logger.Warn("Failed to publish review.deleted event", zap.Error(err))
	}
	if uc.metrics != nil {
		uc.metrics.ReviewsDeletedTotal.Inc()
	}

	uc.logger.Info("Review deleted", zap.String("review_id", reviewID.Hex()))
	return nil
}
