package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rated comment on a campground. It is independently addressable
// but owned by its parent campground for cascade-delete purposes; membership
// lives in the campground's review reference list.
type Review struct {
	ID        primitive.ObjectID
	Body      string
	Point     int32
	Author    primitive.ObjectID
	CreatedAt time.Time
}

const (
	MinReviewPoint int32 = 1
	MaxReviewPoint int32 = 5
)
