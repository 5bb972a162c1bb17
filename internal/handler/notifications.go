package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/repository"
)

// NotificationHandler lists and acknowledges the caller's notifications.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's most recent notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Notifications.ListForUser(ctx, uid, 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notifications failed"})
	}

	out := make([]echo.Map, 0, len(rows))
	for _, n := range rows {
		out = append(out, echo.Map{
			"id":         n.ID,
			"kind":       n.Kind,
			"title":      n.Title,
			"body":       n.Body,
			"read":       n.Read,
			"created_at": n.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, uid, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
