package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/dashboard"
	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
	"github.com/sportmaps/sportmaps-server/internal/repository"
)

// DashboardHandler serves the role-resolved dashboard configuration with
// the caller's stored notifications merged in.
type DashboardHandler struct {
	Notifications *repository.NotificationRepo
}

func NewDashboardHandler(n *repository.NotificationRepo) *DashboardHandler {
	return &DashboardHandler{Notifications: n}
}

// Get resolves the dashboard config for the caller's role.  Notification
// lookup failures degrade to the static config; the dashboard must render
// regardless.
func (h *DashboardHandler) Get(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(string)
	roleStr, _ := c.Get(middleware.CtxRole).(string)
	cfg := dashboard.Resolve(rbac.ParseRole(roleStr))

	if h.Notifications != nil && uid != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		rows, err := h.Notifications.ListForUser(ctx, uid, 10)
		if err != nil {
			log.Printf("dashboard: list notifications for %s: %v", uid, err)
		}
		for _, n := range rows {
			cfg.Notifications = append(cfg.Notifications, dashboard.Notification{
				Title: n.Title,
				Body:  n.Body,
				Time:  n.CreatedAt.Format(time.RFC3339),
			})
		}
	}

	return c.JSON(http.StatusOK, cfg)
}
