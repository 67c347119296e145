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

const campgroundCollectionName = "campgrounds"

type campgroundDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Location    string               `bson:"location"`
	Latitude    float64              `bson:"latitude"`
	Longitude   float64              `bson:"longitude"`
	Price       float64              `bson:"price"`
	Description string               `bson:"description"`
	Images      []imageDocument      `bson:"image"`
	Author      primitive.ObjectID   `bson:"author"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	Likers      []primitive.ObjectID `bson:"likers"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func (d *campgroundDocument) toDomain() *domain.Campground {
	images := make([]domain.Image, len(d.Images))
	for i, img := range d.Images {
		images[i] = img.toDomain()
	}
	return &domain.Campground{
		ID:          d.ID,
		Title:       d.Title,
		Location:    d.Location,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Price:       d.Price,
		Description: d.Description,
		Images:      images,
		Author:      d.Author,
		Reviews:     d.Reviews,
		Likers:      d.Likers,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func fromDomainCampground(c *domain.Campground) *campgroundDocument {
	images := make([]imageDocument, len(c.Images))
	for i, img := range c.Images {
		images[i] = fromDomainImage(img)
	}
	return &campgroundDocument{
		ID:          c.ID,
		Title:       c.Title,
		Location:    c.Location,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Price:       c.Price,
		Description: c.Description,
		Images:      images,
		Author:      c.Author,
		Reviews:     c.Reviews,
		Likers:      c.Likers,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CampgroundRepository implements domain.CampgroundRepository using MongoDB.
type CampgroundRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewCampgroundRepository(db *mongo.Database, log *logger.Logger) *CampgroundRepository {
	collection := db.Collection(campgroundCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to create indexes for campgrounds collection (may already exist)", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for campgrounds collection")
	}

	return &CampgroundRepository{
		collection: collection,
		logger:     log.Named("CampgroundRepository"),
	}
}

func (r *CampgroundRepository) Create(ctx context.Context, campground *domain.Campground) error {
	r.logger.Info("Creating campground in DB", zap.String("title", campground.Title), zap.String("author", campground.Author.Hex()))

	doc := fromDomainCampground(campground)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	campground.ID = doc.ID

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	campground.CreatedAt = now
	campground.UpdatedAt = now

	if doc.Reviews == nil {
		doc.Reviews = []primitive.ObjectID{}
	}
	if doc.Likers == nil {
		doc.Likers = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert campground into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	r.logger.Info("Campground created successfully in DB", zap.String("campground_id", doc.ID.Hex()))
	return nil
}

// Update replaces the mutable listing fields. Relation lists (images, reviews,
// likers) are mutated through their own operations, not here.
func (r *CampgroundRepository) Update(ctx context.Context, campground *domain.Campground) error {
	r.logger.Info("Updating campground in DB", zap.String("campground_id", campground.ID.Hex()))
	if campground.ID.IsZero() {
		return errors.New("cannot update campground without ID")
	}

	campground.UpdatedAt = time.Now().UTC()
	updatePayload := bson.M{
		"$set": bson.M{
			"title":       campground.Title,
			"location":    campground.Location,
			"latitude":    campground.Latitude,
			"longitude":   campground.Longitude,
			"price":       campground.Price,
			"description": campground.Description,
			"updated_at":  campground.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": campground.ID}, updatePayload)
	if err != nil {
		r.logger.Error("Failed to update campground in DB", zap.Error(err), zap.String("campground_id", campground.ID.Hex()))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the campground and returns the deleted document so the
// caller can run the review and image cascades against it.
func (r *CampgroundRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Campground, error) {
	r.logger.Info("Deleting campground from DB", zap.String("campground_id", id.Hex()))

	var doc campgroundDocument
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to delete campground from DB", zap.Error(err), zap.String("campground_id", id.Hex()))
		return nil, fmt.Errorf("db findoneanddelete failed: %w", err)
	}

	r.logger.Info("Campground deleted successfully from DB", zap.String("campground_id", id.Hex()))
	return doc.toDomain(), nil
}

func (r *CampgroundRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Campground, error) {
	r.logger.Debug("Getting campground by ID from DB", zap.String("campground_id", id.Hex()))
	var doc campgroundDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get campground by ID from DB", zap.Error(err), zap.String("campground_id", id.Hex()))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CampgroundRepository) FindAll(ctx context.Context) ([]*domain.Campground, error) {
	r.logger.Debug("Listing all campgrounds from DB")
	return r.findMany(ctx, bson.M{})
}

func (r *CampgroundRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*domain.Campground, error) {
	r.logger.Debug("Listing campgrounds by author from DB", zap.String("author", authorID.Hex()))
	return r.findMany(ctx, bson.M{"author": authorID})
}

func (r *CampgroundRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.Campground, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to find campgrounds in DB", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*campgroundDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode campgrounds from DB", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	campgrounds := make([]*domain.Campground, len(docs))
	for i, doc := range docs {
		campgrounds[i] = doc.toDomain()
	}
	return campgrounds, nil
}

func (r *CampgroundRepository) AppendImages(ctx context.Context, id primitive.ObjectID, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	docs := make([]imageDocument, len(images))
	for i, img := range images {
		docs[i] = fromDomainImage(img)
	}
	update := bson.M{
		"$push": bson.M{"image": bson.M{"$each": docs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateByID(ctx, id, update, "append images")
}

func (r *CampgroundRepository) RemoveImagesByFilename(ctx context.Context, id primitive.ObjectID, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}
	update := bson.M{
		"$pull": bson.M{"image": bson.M{"filename": bson.M{"$in": filenames}}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateByID(ctx, id, update, "remove images")
}

func (r *CampgroundRepository) PushReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	update := bson.M{"$push": bson.M{"reviews": reviewID}}
	return r.updateByID(ctx, id, update, "push review")
}

func (r *CampgroundRepository) PullReview(ctx context.Context, id, reviewID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"reviews": reviewID}}
	return r.updateByID(ctx, id, update, "pull review")
}

// AddLiker uses $addToSet so liking twice leaves a single membership entry.
func (r *CampgroundRepository) AddLiker(ctx context.Context, id, userID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"likers": userID}}
	return r.updateByID(ctx, id, update, "add liker")
}

// RemoveLiker pulls all occurrences; removing an absent liker is a no-op.
func (r *CampgroundRepository) RemoveLiker(ctx context.Context, id, userID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"likers": userID}}
	return r.updateByID(ctx, id, update, "remove liker")
}

func (r *CampgroundRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M, op string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to "+op+" in DB", zap.Error(err), zap.String("campground_id", id.Hex()))
		return fmt.Errorf("db %s failed: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
