package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. PasswordHash is a bcrypt digest; the
// plaintext password is hashed exactly once, at registration, and is never
// persisted or logged.
type User struct {
	ID           primitive.ObjectID
	Username     string
	Email        string
	PasswordHash string
	Avatar       *Image // nil means the default avatar is shown
}

const (
	// MinUsernameLength is enforced before any uniqueness check.
	MinUsernameLength = 5
	// MinPasswordLength is enforced before any uniqueness check.
	MinPasswordLength = 8
	// PasswordHashCost is the bcrypt cost factor used at registration.
	PasswordHashCost = 12
)
