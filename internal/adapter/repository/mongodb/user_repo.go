package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/domain"
	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

const userCollectionName = "users"

type imageDocument struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

func (d imageDocument) toDomain() domain.Image {
	return domain.Image{URL: d.URL, Filename: d.Filename}
}

func fromDomainImage(i domain.Image) imageDocument {
	return imageDocument{URL: i.URL, Filename: i.Filename}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Avatar       *imageDocument     `bson:"image,omitempty"`
}

func (d *userDocument) toDomain() *domain.User {
	user := &domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
	if d.Avatar != nil {
		avatar := d.Avatar.toDomain()
		user.Avatar = &avatar
	}
	return user
}

func fromDomainUser(u *domain.User) *userDocument {
	doc := &userDocument{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	if u.Avatar != nil {
		avatar := fromDomainImage(*u.Avatar)
		doc.Avatar = &avatar
	}
	return doc
}

// UserRepository implements domain.UserRepository using MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewUserRepository creates the repository and ensures the unique indexes on
// username and email. Index creation is idempotent.
func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	collection := db.Collection(userCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		collection: collection,
		logger:     log.Named("UserRepository"),
	}
}

// Create inserts a new user. The caller must have hashed the password already;
// this layer never sees plaintext.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.logger.Info("Creating user in DB", zap.String("username", user.Username))

	doc := fromDomainUser(user)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	user.ID = doc.ID

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		var writeException mongo.WriteException
		if errors.As(err, &writeException) {
			for _, writeError := range writeException.WriteErrors {
				if writeError.Code == 11000 {
					if strings.Contains(writeError.Message, "username_1") {
						r.logger.Warn("Duplicate username during user creation", zap.String("username", user.Username))
						return primitive.NilObjectID, domain.ErrDuplicateUsername
					}
					if strings.Contains(writeError.Message, "email_1") {
						r.logger.Warn("Duplicate email during user creation", zap.String("email", user.Email))
						return primitive.NilObjectID, domain.ErrDuplicateEmail
					}
				}
			}
		}
		r.logger.Error("Database error during user creation", zap.String("username", user.Username), zap.Error(err))
		return primitive.NilObjectID, fmt.Errorf("db insert failed: %w", err)
	}

	r.logger.Info("User created successfully in DB", zap.String("user_id", doc.ID.Hex()))
	return doc.ID, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.logger.Debug("Getting user by ID from DB", zap.String("user_id", id.Hex()))
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Database error fetching user by ID", zap.String("user_id", id.Hex()), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.logger.Debug("Getting user by username from DB", zap.String("username", username))
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Database error fetching user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.logger.Error("Database error fetching users by IDs", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Error decoding users by IDs", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i, doc := range docs {
		users[i] = doc.toDomain()
	}
	return users, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		r.logger.Error("Database error checking username existence", zap.String("username", username), zap.Error(err))
		return false, fmt.Errorf("db count failed: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		r.logger.Error("Database error checking email existence", zap.String("email", email), zap.Error(err))
		return false, fmt.Errorf("db count failed: %w", err)
	}
	return count > 0, nil
}

// UpdateAvatar replaces the avatar descriptor; a nil avatar clears it.
func (r *UserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar *domain.Image) error {
	r.logger.Info("Updating user avatar in DB", zap.String("user_id", id.Hex()), zap.Bool("clearing", avatar == nil))

	var update bson.M
	if avatar == nil {
		update = bson.M{"$unset": bson.M{"image": ""}}
	} else {
		update = bson.M{"$set": bson.M{"image": fromDomainImage(*avatar)}}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Database error updating avatar", zap.String("user_id", id.Hex()), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
