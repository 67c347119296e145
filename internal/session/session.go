package session

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Flash kinds rendered by the views.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a transient notice, consumed on the next render.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data is the server-side session record. The client only ever holds the
// opaque token the record is keyed by.
//
// ReturnTo tracks the most recently visited non-auth path; PreviousReturnTo
// keeps a one-slot history so an interrupted page (e.g. an invalid show URL)
// can restore the prior target.
type Data struct {
	UserID           string  `json:"user_id,omitempty"`
	ReturnTo         string  `json:"return_to,omitempty"`
	PreviousReturnTo string  `json:"previous_return_to,omitempty"`
	Flashes          []Flash `json:"flashes,omitempty"`
}

// LoggedIn reports whether the session is authenticated.
func (d *Data) LoggedIn() bool {
	return d.UserID != ""
}

// CurrentUserID parses the logged-in user's ID. Returns the nil ObjectID for
// anonymous sessions or corrupted values.
func (d *Data) CurrentUserID() primitive.ObjectID {
	if d.UserID == "" {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(d.UserID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// SetUser transitions the session to Authenticated.
func (d *Data) SetUser(id primitive.ObjectID) {
	d.UserID = id.Hex()
}

// ClearUser transitions the session back to Anonymous.
func (d *Data) ClearUser() {
	d.UserID = ""
}

// AddFlash queues a transient notice.
func (d *Data) AddFlash(kind, message string) {
	d.Flashes = append(d.Flashes, Flash{Kind: kind, Message: message})
}

// ConsumeFlashes returns the queued notices and clears them.
func (d *Data) ConsumeFlashes() []Flash {
	flashes := d.Flashes
	d.Flashes = nil
	return flashes
}

// ShiftReturnTo records path as the new return target, moving the previous
// one into the single-slot history.
func (d *Data) ShiftReturnTo(path string) {
	d.PreviousReturnTo = d.ReturnTo
	d.ReturnTo = path
}

// RestoreReturnTo rolls the return target back to the previous one. Used when
// the current request turned out to be a dead end (e.g. an invalid ID).
func (d *Data) RestoreReturnTo() {
	d.ReturnTo = d.PreviousReturnTo
}
