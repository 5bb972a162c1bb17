// Package authstate implements the session/profile bootstrap orchestrator:
// it composes a SessionStore and a ProfileStore into a single published
// AuthState value that the rest of the application observes.  The package
// also defines the error taxonomy shared by the session layer.
package authstate

import "errors"

// Sign-in / sign-up failures.  These are user-correctable and are meant to
// be shown on the form that triggered them, not logged as system faults.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// ErrNotAuthenticated is returned when an operation requiring an active
// session is attempted without one.  This indicates stale caller state and
// should fail fast.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrPersistence wraps backend read/write failures on the profile store.
var ErrPersistence = errors.New("persistence failure")

// ErrTimeout marks a network call that exceeded its bounded deadline,
// distinct from a backend failure.
var ErrTimeout = errors.New("request timed out")
