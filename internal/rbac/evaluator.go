package rbac

// Evaluator binds permission checks to one role so callers do not thread
// the role through every check.  The role may be RoleUnknown before auth
// resolves; every method then answers false.
type Evaluator struct {
	role Role
}

// For returns an evaluator for the given role.  The role is not required
// to be valid.
func For(role Role) Evaluator {
	return Evaluator{role: role}
}

// Can reports whether the bound role holds the permission.
func (e Evaluator) Can(perm Permission) bool {
	return HasPermission(e.role, perm)
}

// CanAccess reports whether the bound role may perform act on res.
func (e Evaluator) CanAccess(res Resource, act Action) bool {
	return CanAccess(e.role, res, act)
}

// HasFeature reports whether the feature flag is on for the bound role.
func (e Evaluator) HasFeature(f Feature) bool {
	return HasFeature(e.role, f)
}

// IsAdmin is shorthand for role == admin.
func (e Evaluator) IsAdmin() bool {
	return e.role == RoleAdmin
}

// HasRole reports whether the bound role is one of the given roles.
func (e Evaluator) HasRole(roles ...Role) bool {
	if !e.role.Valid() {
		return false
	}
	for _, r := range roles {
		if e.role == r {
			return true
		}
	}
	return false
}

// Role returns the bound role; RoleUnknown before auth resolves.
func (e Evaluator) Role() Role { return e.role }
