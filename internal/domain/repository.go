package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository persists user accounts. Create must map storage-level
// uniqueness violations to ErrDuplicateUsername / ErrDuplicateEmail.
type UserRepository interface {
	Create(ctx context.Context, user *User) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar *Image) error
}

// CampgroundRepository persists campground listings and their relation lists.
type CampgroundRepository interface {
	Create(ctx context.Context, campground *Campground) error
	Update(ctx context.Context, campground *Campground) error
	// Delete removes the record and returns the deleted document so the
	// caller can drive the review and image cascades from it.
	Delete(ctx context.Context, id primitive.ObjectID) (*Campground, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Campground, error)
	FindAll(ctx context.Context) ([]*Campground, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]*Campground, error)
	AppendImages(ctx context.Context, id primitive.ObjectID, images []Image) error
	// RemoveImagesByFilename removes every image entry whose filename matches,
	// Mongo $pull-with-$in style.
	RemoveImagesByFilename(ctx context.Context, id primitive.ObjectID, filenames []string) error
	PushReview(ctx context.Context, id, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, id, reviewID primitive.ObjectID) error
	// AddLiker treats likers as a true set: adding an existing liker is a no-op.
	AddLiker(ctx context.Context, id, userID primitive.ObjectID) error
	// RemoveLiker removes all occurrences; removing an absent liker is a no-op.
	RemoveLiker(ctx context.Context, id, userID primitive.ObjectID) error
}

// ReviewRepository persists review records.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Review, error)
}

// Storage is the opaque object-storage collaborator. Upload enforces the
// format and size constraints before anything is sent to the provider.
type Storage interface {
	Upload(ctx context.Context, originalFilename, contentType string, data []byte) (Image, error)
	// Delete is idempotent; deleting an absent asset is not an error.
	Delete(ctx context.Context, filename string) error
}

// Geocoder converts a free-text location into coordinates. One-shot call,
// no retry or backoff; an unresolvable location yields ErrGeocodeNoMatch.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (lat, lng float64, err error)
}

// EventPublisher broadcasts lifecycle events. Publish failures are
// non-critical for callers; they log and continue.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
