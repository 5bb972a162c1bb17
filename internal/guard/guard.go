// Package guard decides render-vs-redirect for protected surfaces.  The
// decision is a pure function of the published AuthState and the allowed
// role list; precedence is part of the contract: authentication outranks
// profile completeness, which outranks role authorization.
package guard

import (
	"github.com/sportmaps/sportmaps-server/internal/authstate"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// Outcome enumerates the possible guard decisions.
type Outcome int

const (
	// ShowLoading blocks rendering while the auth bootstrap is running.
	ShowLoading Outcome = iota
	// RedirectSignIn sends an anonymous visitor to the sign-in page.
	RedirectSignIn
	// RedirectCompleteProfile signals a signed-in user whose profile row
	// is missing: a data-consistency gap, not an auth failure.
	RedirectCompleteProfile
	// RedirectUnauthorized rejects a role outside the allowed set.
	RedirectUnauthorized
	// Render allows the protected content through.
	Render
)

// Redirect destinations mirrored by the HTTP layer.
const (
	SignInPath          = "/login"
	CompleteProfilePath = "/complete-profile"
	UnauthorizedPath    = "/unauthorized"
)

// Decision is an Outcome plus the redirect target, carrying the original
// destination so sign-in can return the user there.
type Decision struct {
	Outcome  Outcome
	Location string // redirect target, empty for ShowLoading/Render
	From     string // original destination, preserved on sign-in redirects
}

// Decide evaluates the guard for one state.  allowedRoles == nil means any
// authenticated role with a profile may pass.  The order of the checks is
// the contract; reordering silently leaks access.
func Decide(state authstate.AuthState, allowedRoles []rbac.Role, from string) Decision {
	if state.Loading {
		return Decision{Outcome: ShowLoading}
	}
	if state.User == nil {
		return Decision{Outcome: RedirectSignIn, Location: SignInPath, From: from}
	}
	if state.Profile == nil {
		return Decision{Outcome: RedirectCompleteProfile, Location: CompleteProfilePath, From: from}
	}
	if len(allowedRoles) > 0 && !rbac.For(state.Profile.Role).HasRole(allowedRoles...) {
		return Decision{Outcome: RedirectUnauthorized, Location: UnauthorizedPath}
	}
	return Decision{Outcome: Render}
}
