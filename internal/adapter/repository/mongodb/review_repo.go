package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

const reviewCollectionName = "reviews"

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Body      string             `bson:"review"`
	Point     int32              `bson:"point"`
	Author    primitive.ObjectID `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID:        d.ID,
		Body:      d.Body,
		Point:     d.Point,
		Author:    d.Author,
		CreatedAt: d.CreatedAt,
	}
}

func fromDomainReview(rv *domain.Review) *reviewDocument {
	return &reviewDocument{
		ID:        rv.ID,
		Body:      rv.Body,
		Point:     rv.Point,
		Author:    rv.Author,
		CreatedAt: rv.CreatedAt,
	}
}

// ReviewRepository implements domain.ReviewRepository using MongoDB.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReviewRepository(db *mongo.Database, log *logger.Logger) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection(reviewCollectionName),
		logger:     log.Named("ReviewRepository"),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.logger.Info("Creating review in DB", zap.String("author", review.Author.Hex()))

	doc := fromDomainReview(review)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	review.ID = doc.ID

	now := time.Now().UTC()
	doc.CreatedAt = now
	review.CreatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert review into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	r.logger.Info("Review created successfully in DB", zap.String("review_id", doc.ID.Hex()))
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.logger.Info("Deleting review from DB", zap.String("review_id", id.Hex()))
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete review from DB", zap.Error(err), zap.String("review_id", id.Hex()))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMany removes every review whose ID is in ids. Used by the campground
// delete cascade.
func (r *ReviewRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	r.logger.Info("Deleting reviews from DB", zap.Int("count", len(ids)))
	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.logger.Error("Failed to delete reviews from DB", zap.Error(err))
		return 0, fmt.Errorf("db deletemany failed: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *ReviewRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to find reviews by IDs from DB", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode reviews from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	reviews := make([]*domain.Review, len(docs))
	for i, doc := range docs {
		reviews[i] = doc.toDomain()
	}
	return reviews, nil
}
