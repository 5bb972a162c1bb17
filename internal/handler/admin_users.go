package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/repository"
)

// AdminHandler serves the admin user directory.  Routes are mounted behind
// the admin:users permission check, so every caller here is already an
// admin.
type AdminHandler struct {
	Identities *repository.IdentityRepo
	Profiles   *repository.ProfileRepo
}

func NewAdminHandler(identities *repository.IdentityRepo, profiles *repository.ProfileRepo) *AdminHandler {
	return &AdminHandler{Identities: identities, Profiles: profiles}
}

// ListUsers pages through registered accounts with their profile, if any.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	limit, offset := 50, 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	if raw := c.QueryParam("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid offset"})
		}
		offset = n
	}

	users, err := h.Identities.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]echo.Map, 0, len(users))
	for _, u := range users {
		item := echo.Map{
			"id":         u.ID,
			"email":      u.Email,
			"is_active":  u.IsActive,
			"created_at": u.CreatedAt,
		}
		p, err := h.Profiles.Fetch(ctx, u.ID)
		if err == nil {
			item["profile"] = profileJSON(p)
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "limit": limit, "offset": offset})
}

type setActiveReq struct {
	Active *bool `json:"active"`
}

// SetUserActive enables or disables an account.  Admins cannot disable
// themselves; that would lock the last admin out mid-session.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	var req setActiveReq
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	target := c.Param("id")
	if uid, _ := c.Get(middleware.CtxUserID).(string); uid == target && !*req.Active {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot disable own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Identities.SetActive(ctx, target, *req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
