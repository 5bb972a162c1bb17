package authstate

import (
	"context"
	"time"

	"github.com/sportmaps/sportmaps-server/internal/model"
)

// EventKind classifies a session-change notification.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Session is the credential pair bound to one identity.  The orchestrator
// treats it as an opaque value it can watch for change events but never
// constructs itself; the hint fields mirror the sign-up metadata so a
// missing profile can be synthesized without an extra round trip.
type Session struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time

	UserID   string
	Email    string
	FullName string // sign-up metadata hint, may be empty
	Role     string // sign-up metadata hint, may be empty
}

// SessionStore is the contract the orchestrator consumes from the identity
// provider.  Implementations must deliver change events in the order they
// occur and must never invoke the callback re-entrantly from within one of
// the store's own methods still on the caller's stack.
type SessionStore interface {
	// CurrentSession returns the active session or nil when anonymous.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnSessionChange registers a callback for establish/refresh/clear
	// events.  The returned function cancels the subscription.
	OnSessionChange(fn func(EventKind, *Session)) (unsubscribe func())

	// SignIn exchanges credentials for a session.  Rejected credentials
	// surface as ErrInvalidCredentials.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new identity.  Fails with ErrDuplicateAccount,
	// ErrWeakPassword or ErrInvalidEmail.
	SignUp(ctx context.Context, email, password string, fields model.ProfileFields) (*Session, error)

	// SignOut invalidates the session.  Implementations clear their local
	// session state even when the remote call fails.
	SignOut(ctx context.Context) error
}

// ProfileStore is the contract for the profile backend.
type ProfileStore interface {
	// Fetch returns (nil, nil) when no profile row exists; that is the
	// expected state for a fresh identity, not a fault.
	Fetch(ctx context.Context, id string) (*model.Profile, error)

	// Create inserts a profile, tolerating concurrent creation: a
	// duplicate insert resolves to the existing row.
	Create(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error)

	// Update applies a partial update and stamps updated_at.
	Update(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error)
}

// Notifier receives user-facing operation outcomes (the toast channel of
// the original application).  Deliveries are observable side effects, not
// correctness-critical; implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string, string) {}

// AuthState is the time-varying tuple published to consumers.  A single
// value is always internally consistent: writers replace the whole struct
// under the manager's lock, never field by field.
type AuthState struct {
	User    *model.Identity
	Profile *model.Profile
	Session *Session
	Loading bool
}

// Authenticated reports whether a signed-in user is present.
func (s AuthState) Authenticated() bool { return s.User != nil }
