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

// CampgroundInput carries the user-editable campground fields shared by the
// create and update flows.
type CampgroundInput struct {
	Title       string
	Location    string
	Price       float64
	Description string
	Uploads     []Upload
}

// UpdateCampgroundInput additionally names the image filenames the owner
// flagged for removal.
type UpdateCampgroundInput struct {
	CampgroundInput
	DeleteFilenames []string
}

// CampgroundUsecase implements the campground lifecycle: creation with
// geocoding and image handling, owner-guarded updates and deletes with
// cascading cleanup, and the like toggle.
type CampgroundUsecase struct {
	campgrounds domain.CampgroundRepository
	reviews     domain.ReviewRepository
	users       domain.UserRepository
	storage     domain.Storage
	geocoder    domain.Geocoder
	publisher   domain.EventPublisher
	metrics     *metrics.Manager
	logger      *logger.Logger
}

func NewCampgroundUsecase(
	campgrounds domain.CampgroundRepository,
	reviews domain.ReviewRepository,
	users domain.UserRepository,
	storage domain.Storage,
	geocoder domain.Geocoder,
	publisher domain.EventPublisher,
	m *metrics.Manager,
	log *logger.Logger,
) *CampgroundUsecase {
	return &CampgroundUsecase{
		campgrounds: campgrounds,
		reviews:     reviews,
		users:       users,
		storage:     storage,
		geocoder:    geocoder,
		publisher:   publisher,
		metrics:     m,
		logger:      log.Named("CampgroundUsecase"),
	}
}

func validateCampgroundInput(in CampgroundInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: location cannot be empty", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description cannot be empty", domain.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if len(in.Uploads) > domain.MaxImagesPerUpload {
		return fmt.Errorf("%w: at most %d images per upload", domain.ErrValidation, domain.MaxImagesPerUpload)
	}
	return nil
}

// uploadAll stores every upload and returns the resulting image descriptors.
// The first failure aborts the batch.
func (uc *CampgroundUsecase) uploadAll(ctx context.Context, uploads []Upload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	for _, u := range uploads {
		image, err := uc.storage.Upload(ctx, u.Filename, u.ContentType, u.Data)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

// Create validates the input, geocodes the location and persists a new
// campground owned by authorID. Without uploads the placeholder image is
// attached so a campground never exists with an empty image list. A geocoding
// failure aborts before anything is written.
func (uc *CampgroundUsecase) Create(ctx context.Context, authorID primitive.ObjectID, in CampgroundInput) (*domain.Campground, error) {
	if err := validateCampgroundInput(in); err != nil {
		return nil, err
	}

	lat, lng, err := uc.geocoder.Geocode(ctx, in.Location)
	if err != nil {
		uc.logger.Warn("Geocoding failed", zap.String("location", in.Location), zap.Error(err))
		return nil, err
	}

	var images []domain.Image
	if len(in.Uploads) > 0 {
		if images, err = uc.uploadAll(ctx, in.Uploads); err != nil {
			return nil, err
		}
	} else {
		images = []domain.Image{domain.PlaceholderCampgroundImage}
	}

	camp := &domain.Campground{
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		Latitude:    lat,
		Longitude:   lng,
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		Images:      images,
		Author:      authorID,
	}
	if err := uc.campgrounds.Create(ctx, camp); err != nil {
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, "campground.created", map[string]interface{}{
		"campground_id": camp.ID.Hex(),
		"author_id":     authorID.Hex(),
		"title":         camp.Title,
	}); err != nil {
		uc.logger.Warn("Failed to publish campground.created event", zap.Error(err))
	}
	if uc.metrics != nil {
		uc.metrics.CampgroundsCreatedTotal.Inc()
	}

	uc.logger.Info("Campground created", zap.String("campground_id", camp.ID.Hex()))
	return camp, nil
}

// Update edits a campground the actor owns. The location is re-geocoded on
// every update regardless of whether it changed. New uploads are appended
// after the scalar fields are written; flagged images are then removed, with
// the placeholder never deleted from storage and restored if the removal
// empties the list.
func (uc *CampgroundUsecase) Update(ctx context.Context, id, actorID primitive.ObjectID, in UpdateCampgroundInput) (*domain.Campground, error) {
	camp, err := uc.campgrounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if camp.Author != actorID {
		uc.logger.Warn("Forbidden campground update attempt",
			zap.String("campground_id", id.Hex()), zap.String("actor_id", actorID.Hex()))
		return nil, domain.ErrForbidden
	}
	if err := validateCampgroundInput(in.CampgroundInput); err != nil {
		return nil, err
	}

	lat, lng, err := uc.geocoder.Geocode(ctx, in.Location)
	if err != nil {
		uc.logger.Warn("Geocoding failed", zap.String("location", in.Location), zap.Error(err))
		return nil, err
	}

	camp.Title = strings.TrimSpace(in.Title)
	camp.Location = strings.TrimSpace(in.Location)
	camp.Latitude = lat
	camp.Longitude = lng
	camp.Price = in.Price
	camp.Description = strings.TrimSpace(in.Description)
	if err := uc.campgrounds.Update(ctx, camp); err != nil {
		return nil, err
	}

	if len(in.Uploads) > 0 {
		images, err := uc.uploadAll(ctx, in.Uploads)
		if err != nil {
			return nil, err
		}
		if err := uc.campgrounds.AppendImages(ctx, id, images); err != nil {
			return nil, err
		}
	}

	if len(in.DeleteFilenames) > 0 {
		for _, filename := range in.DeleteFilenames {
			if filename == domain.PlaceholderCampgroundImage.Filename {
				continue
			}
			if err := uc.storage.Delete(ctx, filename); err != nil {
				uc.logger.Error("Failed to delete image from storage",
					zap.String("filename", filename), zap.Error(err))
			}
		}
		if err := uc.campgrounds.RemoveImagesByFilename(ctx, id, in.DeleteFilenames); err != nil {
			return nil, err
		}
	}

	updated, err := uc.campgrounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updated.Images) == 0 {
		if err := uc.campgrounds.AppendImages(ctx, id, []domain.Image{domain.PlaceholderCampgroundImage}); err != nil {
			return nil, err
		}
		updated.Images = []domain.Image{domain.PlaceholderCampgroundImage}
	}

	uc.logger.Info("Campground updated", zap.String("campground_id", id.Hex()))
	return updated, nil
}

// Delete removes a campground the actor owns, then cascades: every attached
// non-placeholder image is deleted from storage and every attached review is
// removed. Cascade failures are logged and do not undo the primary delete.
func (uc *CampgroundUsecase) Delete(ctx context.Context, id, actorID primitive.ObjectID) error {
	camp, err := uc.campgrounds.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if camp.Author != actorID {
		uc.logger.Warn("Forbidden campground delete attempt",
			zap.String("campground_id", id.Hex()), zap.String("actor_id", actorID.Hex()))
		return domain.ErrForbidden
	}

	deleted, err := uc.campgrounds.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, image := range deleted.Images {
		if image.IsPlaceholder() {
			continue
		}
		if err := uc.storage.Delete(ctx, image.Filename); err != nil {
			uc.logger.Error("Cascade image delete failed",
				zap.String("filename", image.Filename), zap.Error(err))
		}
	}
	if len(deleted.Reviews) > 0 {
		if _, err := uc.reviews.DeleteMany(ctx, deleted.Reviews); err != nil {
			uc.logger.Error("Cascade review delete failed",
				zap.String("campground_id", id.Hex()), zap.Error(err))
		}
	}

	if err := uc.publisher.Publish(ctx, "campground.deleted", map[string]interface{}{
		"campground_id": id.Hex(),
	}); err != nil {
		uc.logger.Warn("Failed to publish campground.deleted event", zap.Error(err))
	}
	if uc.metrics != nil {
		uc.metrics.CampgroundsDeletedTotal.Inc()
	}

	uc.logger.Info("Campground deleted", zap.String("campground_id", id.Hex()))
	return nil
}

// Like records the user in the campground's liker set. Liking twice is a
// no-op.
func (uc *CampgroundUsecase) Like(ctx context.Context, id, userID primitive.ObjectID) error {
	return uc.campgrounds.AddLiker(ctx, id, userID)
}

// Unlike removes the user from the liker set. Unliking a campground the user
// never liked is a no-op.
func (uc *CampgroundUsecase) Unlike(ctx context.Context, id, userID primitive.ObjectID) error {
	return uc.campgrounds.RemoveLiker(ctx, id, userID)
}

// Get resolves a campground with its author, likers and reviews (each review
// with its own author) for the detail page.
func (uc *CampgroundUsecase) Get(ctx context.Context, id primitive.ObjectID) (*domain.CampgroundView, error) {
	camp, err := uc.campgrounds.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	author, err := uc.users.FindByID(ctx, camp.Author)
	if err != nil {
		return nil, err
	}

	reviews, err := uc.reviews.FindByIDs(ctx, camp.Reviews)
	if err != nil {
		return nil, err
	}
	reviewAuthorIDs := make([]primitive.ObjectID, 0, len(reviews))
	for _, rev := range reviews {
		reviewAuthorIDs = append(reviewAuthorIDs, rev.Author)
	}
	reviewAuthors, err := uc.users.FindByIDs(ctx, reviewAuthorIDs)
	if err != nil {
		return nil, err
	}
	authorsByID := make(map[primitive.ObjectID]*domain.User, len(reviewAuthors))
	for _, u := range reviewAuthors {
		authorsByID[u.ID] = u
	}
	resolved := make([]domain.ResolvedReview, 0, len(reviews))
	for _, rev := range reviews {
		resolved = append(resolved, domain.ResolvedReview{
			Review: rev,
			Author: authorsByID[rev.Author],
		})
	}

	likers, err := uc.users.FindByIDs(ctx, camp.Likers)
	if err != nil {
		return nil, err
	}

	return &domain.CampgroundView{
		Campground: camp,
		Author:     author,
		Reviews:    resolved,
		Likers:     likers,
	}, nil
}

// ListAll returns every campground, newest first, with the author's username
// resolved for display.
func (uc *CampgroundUsecase) ListAll(ctx context.Context) ([]domain.CampgroundSummary, error) {
	camps, err := uc.campgrounds.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]primitive.ObjectID, 0, len(camps))
	seen := make(map[primitive.ObjectID]bool, len(camps))
	for _, camp := range camps {
		if !seen[camp.Author] {
			seen[camp.Author] = true
			authorIDs = append(authorIDs, camp.Author)
		}
	}
	authors, err := uc.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	namesByID := make(map[primitive.ObjectID]string, len(authors))
	for _, u := range authors {
		namesByID[u.ID] = u.Username
	}

	summaries := make([]domain.CampgroundSummary, 0, len(camps))
	for _, camp := range camps {
		summaries = append(summaries, domain.CampgroundSummary{
			Campground: camp,
			AuthorName: namesByID[camp.Author],
		})
	}
	return summaries, nil
}
