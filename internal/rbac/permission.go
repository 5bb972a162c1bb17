package rbac

// Resource names an area of the application a permission applies to.
type Resource string

// Action names what may be done with a resource.
type Action string

// Permission is a typed "resource:action" capability token.  Tokens are
// built through Perm() so a typo in either half is a compile-time error,
// not a silently failing string.
type Permission string

const (
	ResDashboard Resource = "dashboard"
	ResCalendar  Resource = "calendar"
	ResTeams     Resource = "teams"
	ResStudents  Resource = "students"
	ResStats     Resource = "stats"
	ResReports   Resource = "reports"
	ResFinances  Resource = "finances"
	ResMessages  Resource = "messages"
	ResSettings  Resource = "settings"
	ResAdmin     Resource = "admin"
)

const (
	ActView   Action = "view"
	ActCreate Action = "create"
	ActEdit   Action = "edit"
	ActDelete Action = "delete"
	ActManage Action = "manage"
	ActSend   Action = "send"
	ActUsers  Action = "users"
	ActSystem Action = "system"
	ActAll    Action = "all"
)

// Perm builds the canonical permission token for a resource/action pair.
func Perm(res Resource, act Action) Permission {
	return Permission(string(res) + ":" + string(act))
}

// rolePermissions is the role→capability matrix, carried over from the
// SportMaps permission model.  Every valid role has an entry; RoleUnknown
// deliberately has none.
var rolePermissions = map[Role][]Permission{
	RoleAthlete: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView),
		Perm(ResTeams, ActView),
		Perm(ResStats, ActView),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleParent: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView),
		Perm(ResStudents, ActView),
		Perm(ResStats, ActView),
		Perm(ResReports, ActView),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleCoach: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView), Perm(ResCalendar, ActCreate),
		Perm(ResCalendar, ActEdit), Perm(ResCalendar, ActDelete),
		Perm(ResTeams, ActView), Perm(ResTeams, ActCreate), Perm(ResTeams, ActEdit),
		Perm(ResStudents, ActView), Perm(ResStudents, ActEdit),
		Perm(ResStats, ActView), Perm(ResStats, ActEdit),
		Perm(ResReports, ActView), Perm(ResReports, ActCreate),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleSchool: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView), Perm(ResCalendar, ActCreate),
		Perm(ResCalendar, ActEdit), Perm(ResCalendar, ActDelete),
		Perm(ResTeams, ActView), Perm(ResTeams, ActCreate),
		Perm(ResTeams, ActEdit), Perm(ResTeams, ActDelete),
		Perm(ResStudents, ActView), Perm(ResStudents, ActCreate),
		Perm(ResStudents, ActEdit), Perm(ResStudents, ActDelete),
		Perm(ResStats, ActView), Perm(ResStats, ActEdit),
		Perm(ResReports, ActView), Perm(ResReports, ActCreate),
		Perm(ResFinances, ActView), Perm(ResFinances, ActManage),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleWellnessProfessional: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView), Perm(ResCalendar, ActCreate),
		Perm(ResStudents, ActView), Perm(ResStudents, ActEdit),
		Perm(ResReports, ActView), Perm(ResReports, ActCreate),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleStoreOwner: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView),
		Perm(ResStats, ActView),
		Perm(ResReports, ActView), Perm(ResReports, ActCreate),
		Perm(ResFinances, ActView), Perm(ResFinances, ActManage),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
	},
	RoleAdmin: {
		Perm(ResDashboard, ActView),
		Perm(ResCalendar, ActView), Perm(ResCalendar, ActCreate),
		Perm(ResCalendar, ActEdit), Perm(ResCalendar, ActDelete),
		Perm(ResTeams, ActView), Perm(ResTeams, ActCreate),
		Perm(ResTeams, ActEdit), Perm(ResTeams, ActDelete),
		Perm(ResStudents, ActView), Perm(ResStudents, ActCreate),
		Perm(ResStudents, ActEdit), Perm(ResStudents, ActDelete),
		Perm(ResStats, ActView), Perm(ResStats, ActEdit),
		Perm(ResReports, ActView), Perm(ResReports, ActCreate),
		Perm(ResFinances, ActView), Perm(ResFinances, ActManage),
		Perm(ResMessages, ActView), Perm(ResMessages, ActSend),
		Perm(ResSettings, ActView), Perm(ResSettings, ActEdit),
		Perm(ResAdmin, ActUsers), Perm(ResAdmin, ActSystem), Perm(ResAdmin, ActAll),
	},
}

// Feature is a named UI capability toggled per role.
type Feature string

const (
	FeatureCreateEvents Feature = "canCreateEvents"
	FeatureManageTeams  Feature = "canManageTeams"
	FeatureViewFinances Feature = "canViewFinances"
	FeatureAccessAdmin  Feature = "canAccessAdmin"
	FeatureExportData   Feature = "canExportData"
)

var featureFlags = map[Role]map[Feature]bool{
	RoleAthlete: {},
	RoleParent: {
		FeatureViewFinances: true,
	},
	RoleCoach: {
		FeatureCreateEvents: true,
		FeatureManageTeams:  true,
		FeatureExportData:   true,
	},
	RoleSchool: {
		FeatureCreateEvents: true,
		FeatureManageTeams:  true,
		FeatureViewFinances: true,
		FeatureExportData:   true,
	},
	RoleWellnessProfessional: {
		FeatureCreateEvents: true,
		FeatureExportData:   true,
	},
	RoleStoreOwner: {
		FeatureViewFinances: true,
		FeatureExportData:   true,
	},
	RoleAdmin: {
		FeatureCreateEvents: true,
		FeatureManageTeams:  true,
		FeatureViewFinances: true,
		FeatureAccessAdmin:  true,
		FeatureExportData:   true,
	},
}

// HasPermission reports whether the role holds the given permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// CanAccess reports whether the role may perform an action on a resource.
func CanAccess(role Role, res Resource, act Action) bool {
	return HasPermission(role, Perm(res, act))
}

// HasFeature reports whether a UI feature is enabled for the role.
func HasFeature(role Role, f Feature) bool {
	return featureFlags[role][f]
}

// Permissions returns a copy of the role's permission set.  Unknown roles
// get an empty slice, never nil dereferences.
func Permissions(role Role) []Permission {
	src := rolePermissions[role]
	out := make([]Permission, len(src))
	copy(out, src)
	return out
}

// HasAnyPermission reports whether the role holds at least one of perms.
func HasAnyPermission(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every one of perms.
func HasAllPermissions(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}
