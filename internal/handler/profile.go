package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/queue"
	"github.com/sportmaps/sportmaps-server/internal/repository"
)

// ProfileHandler serves profile reads and partial updates.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Events   EventPublisher
}

func NewProfileHandler(profiles *repository.ProfileRepo, events EventPublisher) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Events: events}
}

type updateProfileReq struct {
	FullName         *string `json:"full_name"`
	Phone            *string `json:"phone"`
	AvatarURL        *string `json:"avatar_url"`
	Bio              *string `json:"bio"`
	DateOfBirth      *string `json:"date_of_birth"` // YYYY-MM-DD
	SubscriptionTier *string `json:"subscription_tier"`
}

// Update applies a partial profile update for the authenticated user.
// Role is deliberately not updatable here: it is immutable after
// assignment in the normal flow.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	fields := model.ProfileFields{
		FullName:  req.FullName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	}
	if req.SubscriptionTier != nil {
		switch *req.SubscriptionTier {
		case model.TierFree, model.TierBasic, model.TierPremium, model.TierEnterprise:
			fields.SubscriptionTier = req.SubscriptionTier
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription tier"})
		}
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_of_birth"})
		}
		fields.DateOfBirth = &dob
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Create is idempotent; it recovers a missing profile row so this
	// endpoint doubles as the complete-profile path.
	if _, err := h.Profiles.Create(ctx, uid, fields); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	p, err := h.Profiles.Update(ctx, uid, fields)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	if h.Events != nil {
		email, _ := c.Get(middleware.CtxEmail).(string)
		go func() {
			pctx, pcancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer pcancel()
			_ = h.Events.PublishAuthEvent(pctx, newProfileUpdatedEvent(uid, email))
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{"profile": profileJSON(p)})
}

// profileJSON renders a profile for API responses; nil stays null so
// clients can distinguish "no profile yet" from an empty one.
func profileJSON(p *model.Profile) interface{} {
	if p == nil {
		return nil
	}
	var dob *string
	if p.DateOfBirth != nil {
		s := p.DateOfBirth.Format("2006-01-02")
		dob = &s
	}
	return echo.Map{
		"id":                p.ID,
		"full_name":         p.FullName,
		"phone":             p.Phone,
		"role":              p.Role.String(),
		"avatar_url":        p.AvatarURL,
		"bio":               p.Bio,
		"date_of_birth":     dob,
		"sportmaps_points":  p.SportmapsPoints,
		"subscription_tier": p.SubscriptionTier,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}

func newProfileUpdatedEvent(userID, email string) queue.AuthEvent {
	return queue.NewAuthEvent(userID, email, model.NotificationProfileUpdated,
		"Perfil actualizado", "Tus datos han sido actualizados exitosamente")
}
