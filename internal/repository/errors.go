// Package repository implements MySQL persistence for identities, profiles,
// refresh tokens, schools and notifications.  Sentinel errors defined here
// let handlers translate failure scenarios into HTTP codes with errors.Is
// instead of string matching.
package repository

import "errors"

// ErrEmailExists is returned when an identity insert collides with an
// existing email.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a looked-up row does not exist and absence
// is a client-visible condition (schools, notifications).  Profile absence
// is intentionally NOT an error; see ProfileRepo.Fetch.
var ErrNotFound = errors.New("not found")
