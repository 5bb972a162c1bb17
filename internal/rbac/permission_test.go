package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAthlete, ParseRole("athlete"))
	assert.Equal(t, RoleCoach, ParseRole("  Coach "))
	assert.Equal(t, RoleWellnessProfessional, ParseRole("WELLNESS_PROFESSIONAL"))
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}

func TestEveryRoleHasPermissions(t *testing.T) {
	for _, role := range AllRoles {
		perms := Permissions(role)
		require.NotEmpty(t, perms, "role %s has no permissions", role)
		// every role can at least see its dashboard
		assert.True(t, HasPermission(role, Perm(ResDashboard, ActView)), "role %s", role)
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	assert.False(t, HasPermission(RoleUnknown, Perm(ResDashboard, ActView)))
	assert.False(t, CanAccess(RoleUnknown, ResSettings, ActEdit))
	assert.False(t, HasFeature(RoleUnknown, FeatureAccessAdmin))
	assert.Empty(t, Permissions(RoleUnknown))
	assert.Empty(t, Permissions(Role("ghost")))
}

func TestPermTokenFormat(t *testing.T) {
	assert.Equal(t, Permission("admin:users"), Perm(ResAdmin, ActUsers))
	assert.Equal(t, Permission("messages:send"), Perm(ResMessages, ActSend))
}

func TestAdminHoldsAdminPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, Perm(ResAdmin, ActUsers)))
	assert.True(t, HasPermission(RoleAdmin, Perm(ResAdmin, ActSystem)))
	assert.True(t, HasFeature(RoleAdmin, FeatureAccessAdmin))

	for _, role := range AllRoles {
		if role == RoleAdmin {
			continue
		}
		assert.False(t, HasPermission(role, Perm(ResAdmin, ActUsers)), "role %s", role)
		assert.False(t, HasFeature(role, FeatureAccessAdmin), "role %s", role)
	}
}

func TestRoleMatrixSpotChecks(t *testing.T) {
	// athletes read but never manage
	assert.True(t, CanAccess(RoleAthlete, ResCalendar, ActView))
	assert.False(t, CanAccess(RoleAthlete, ResCalendar, ActCreate))
	assert.False(t, CanAccess(RoleAthlete, ResFinances, ActView))

	// coaches create events but do not touch finances
	assert.True(t, CanAccess(RoleCoach, ResCalendar, ActCreate))
	assert.True(t, HasFeature(RoleCoach, FeatureCreateEvents))
	assert.False(t, CanAccess(RoleCoach, ResFinances, ActView))

	// schools carry the widest non-admin set
	assert.True(t, CanAccess(RoleSchool, ResStudents, ActDelete))
	assert.True(t, CanAccess(RoleSchool, ResFinances, ActManage))

	// store owners see finances, not teams
	assert.True(t, CanAccess(RoleStoreOwner, ResFinances, ActView))
	assert.False(t, CanAccess(RoleStoreOwner, ResTeams, ActView))

	// parents view finances via feature flag only
	assert.True(t, HasFeature(RoleParent, FeatureViewFinances))
	assert.False(t, CanAccess(RoleParent, ResFinances, ActManage))
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	assert.True(t, HasAnyPermission(RoleAthlete, Perm(ResFinances, ActView), Perm(ResStats, ActView)))
	assert.False(t, HasAnyPermission(RoleAthlete, Perm(ResFinances, ActView), Perm(ResAdmin, ActAll)))
	assert.True(t, HasAllPermissions(RoleCoach, Perm(ResTeams, ActView), Perm(ResTeams, ActEdit)))
	assert.False(t, HasAllPermissions(RoleCoach, Perm(ResTeams, ActView), Perm(ResTeams, ActDelete)))
}

func TestPermissionsReturnsCopy(t *testing.T) {
	a := Permissions(RoleAthlete)
	require.NotEmpty(t, a)
	a[0] = Permission("tampered")
	assert.NotContains(t, Permissions(RoleAthlete), Permission("tampered"))
}

func TestEvaluator(t *testing.T) {
	admin := For(RoleAdmin)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.Can(Perm(ResAdmin, ActUsers)))
	assert.True(t, admin.HasRole(RoleCoach, RoleAdmin))

	unknown := For(RoleUnknown)
	assert.False(t, unknown.IsAdmin())
	assert.False(t, unknown.Can(Perm(ResDashboard, ActView)))
	assert.False(t, unknown.HasRole(AllRoles...))
	assert.False(t, unknown.CanAccess(ResSettings, ActView))
	assert.False(t, unknown.HasFeature(FeatureExportData))

	athlete := For(RoleAthlete)
	assert.True(t, athlete.HasRole(RoleAthlete))
	assert.False(t, athlete.HasRole(RoleCoach, RoleSchool))
	assert.Equal(t, RoleAthlete, athlete.Role())
}
