package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxImagesPerUpload bounds how many images a single create/update request
// may attach. A request carrying more is rejected, not truncated.
const MaxImagesPerUpload = 3

// Campground is a user-submitted location listing. Latitude and longitude
// are derived from Location on every create and update. The image sequence
// is never empty: absence of an upload resolves to the placeholder image.
type Campground struct {
	ID          primitive.ObjectID
	Title       string
	Location    string
	Latitude    float64
	Longitude   float64
	Price       float64
	Description string
	Images      []Image
	Author      primitive.ObjectID
	Reviews     []primitive.ObjectID
	Likers      []primitive.ObjectID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LikedBy reports whether the given user already likes the campground.
func (c *Campground) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range c.Likers {
		if id == userID {
			return true
		}
	}
	return false
}

// CampgroundSummary is the lightweight index-view projection: the campground
// plus its author's username only.
type CampgroundSummary struct {
	Campground *Campground
	AuthorName string
}

// ResolvedReview pairs a review with its resolved author.
type ResolvedReview struct {
	Review *Review
	Author *User
}

// CampgroundView is the fully-resolved show-page projection.
type CampgroundView struct {
	Campground *Campground
	Author     *User
	Reviews    []ResolvedReview
	Likers     []*User
}
