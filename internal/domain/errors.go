package domain

import "errors"

var (
	// ErrValidation indicates missing or malformed user-correctable input.
	ErrValidation = errors.New("invalid input data")
	// ErrDuplicateUsername indicates a registration conflict on the username.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail indicates a registration conflict on the email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so that login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound indicates a missing campground, review or user.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates the acting user does not own the entity.
	ErrForbidden = errors.New("action forbidden")
	// ErrUnauthenticated indicates a protected action without a logged-in session.
	ErrUnauthenticated = errors.New("login required")
	// ErrUnsupportedFormat indicates an upload that is not jpeg/jpg/png.
	ErrUnsupportedFormat = errors.New("only .jpeg/.jpg/.png images are supported")
	// ErrFileTooLarge indicates an upload above the 5MB limit.
	ErrFileTooLarge = errors.New("image file too large, the upload limit is 5MB")
	// ErrGeocodeNoMatch indicates the location text could not be resolved.
	ErrGeocodeNoMatch = errors.New("location could not be resolved to coordinates")
)
