package model

import "time"

// Notification kinds produced by the auth event consumer.
const (
	NotificationSignedUp       = "signed_up"
	NotificationSignedIn       = "signed_in"
	NotificationSignedOut      = "signed_out"
	NotificationProfileUpdated = "profile_updated"
)

// Notification represents a row in the `notifications` table.  Rows are
// written by the queue consumer from auth events and surfaced on the
// dashboard; they are informational only.
type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
