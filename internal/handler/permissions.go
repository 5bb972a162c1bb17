package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// Permissions returns the capability snapshot for the caller's role: the
// full permission list, the feature flags, and the shorthand checks the
// client evaluator exposes.  The guard has already resolved the role, so
// an unknown role can only mean a stale token; it yields an empty, not an
// error.
func Permissions(c echo.Context) error {
	roleStr, _ := c.Get(middleware.CtxRole).(string)
	role := rbac.ParseRole(roleStr)
	eval := rbac.For(role)

	features := echo.Map{}
	for _, f := range []rbac.Feature{
		rbac.FeatureCreateEvents,
		rbac.FeatureManageTeams,
		rbac.FeatureViewFinances,
		rbac.FeatureAccessAdmin,
		rbac.FeatureExportData,
	} {
		features[string(f)] = eval.HasFeature(f)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"role":        role.String(),
		"permissions": rbac.Permissions(role),
		"features":    features,
		"is_admin":    eval.IsAdmin(),
	})
}
