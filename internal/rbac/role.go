// Package rbac centralizes role and permission logic for SportMaps.  The
// role→permission matrix is static data: no I/O, deterministic, and total
// over the Role enumeration.  Checks against an unknown role always answer
// false and never panic, so callers may consult permissions before an
// authenticated role is available.
package rbac

import "strings"

// Role is the closed set of user categories.  Exactly one role belongs to
// each profile and drives every downstream authorization and dashboard
// decision.  The zero value is RoleUnknown, which holds no permissions.
type Role string

const (
	RoleUnknown              Role = ""
	RoleAthlete              Role = "athlete"
	RoleParent               Role = "parent"
	RoleCoach                Role = "coach"
	RoleSchool               Role = "school"
	RoleWellnessProfessional Role = "wellness_professional"
	RoleStoreOwner           Role = "store_owner"
	RoleAdmin                Role = "admin"
)

// AllRoles lists every valid role.  Table iterations (permission matrix,
// dashboard configs, tests) range over this slice so adding a role is a
// single-site change.
var AllRoles = []Role{
	RoleAthlete,
	RoleParent,
	RoleCoach,
	RoleSchool,
	RoleWellnessProfessional,
	RoleStoreOwner,
	RoleAdmin,
}

// ParseRole normalizes a raw string into a Role.  Unrecognized input maps
// to RoleUnknown rather than an error; an unknown role simply fails every
// permission check.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return RoleUnknown
}

// Valid reports whether the role is a member of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAthlete, RoleParent, RoleCoach, RoleSchool,
		RoleWellnessProfessional, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
