package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/config"
	"github.com/sportmaps/sportmaps-server/internal/middleware"
	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/queue"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
	"github.com/sportmaps/sportmaps-server/internal/repository"
	"github.com/sportmaps/sportmaps-server/internal/utils"
)

// EventPublisher pushes auth events to the notification queue.  Publishing
// is best-effort: failures are logged, never surfaced to the client.
type EventPublisher interface {
	PublishAuthEvent(ctx context.Context, ev queue.AuthEvent) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg        config.Config
	Identities *repository.IdentityRepo
	Profiles   *repository.ProfileRepo
	Tokens     *repository.TokenRepo
	Events     EventPublisher
}

func NewAuthHandler(cfg config.Config, ids *repository.IdentityRepo, profiles *repository.ProfileRepo, tokens *repository.TokenRepo, events EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Identities: ids, Profiles: profiles, Tokens: tokens, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // athlete|parent|coach|school|wellness_professional|store_owner
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates an identity plus its profile and returns tokens
// immediately.  Role defaults to athlete; admin cannot be self-assigned.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !utils.StrongEnough(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too weak"})
	}
	role := rbac.ParseRole(req.Role)
	if role == rbac.RoleUnknown || role == rbac.RoleAdmin {
		role = rbac.RoleAthlete
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Identities.Create(ctx, req.Email, req.Password, req.FullName, role.String(), h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	fields := model.ProfileFields{Role: &role}
	if req.FullName != "" {
		fields.FullName = &req.FullName
	}
	if req.Phone != "" {
		fields.Phone = &req.Phone
	}
	profile, err := h.Profiles.Create(ctx, uid, fields)
	if err != nil {
		// The identity exists; the profile will be synthesized on first
		// session resolution instead.
		log.Printf("register: create profile for %s: %v", uid, err)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Email, role.String(), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	h.publishEvent(uid, req.Email, model.NotificationSignedUp,
		"¡Registro exitoso!", "Bienvenido a SportMaps. Tu cuenta ha sido creada.")

	fullName := req.FullName
	if profile != nil {
		fullName = profile.FullName
	}
	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Email: req.Email, FullName: fullName, Role: role.String()},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identities.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}

	role, fullName := h.resolveRole(ctx, u)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, role.String(), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	h.publishEvent(u.ID, u.Email, model.NotificationSignedIn,
		"Inicio de sesión exitoso", "Bienvenido a SportMaps")

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Email: u.Email, FullName: fullName, Role: role.String()},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Identities.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	role, fullName := h.resolveRole(ctx, u)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Email, role.String(), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: userID, Email: u.Email, FullName: fullName, Role: role.String()},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// RefreshAccess issues a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	u, err := h.Identities.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	role, _ := h.resolveRole(ctx, u)
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Email, role.String(), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes either one refresh token (body) or every active token for
// the bearer of a valid access token.  Local revocation always proceeds;
// event publishing failures never block the sign-out.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid, email string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
			uid = claims.UserID
			email = claims.Email
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case uid != "" && refreshToken == "":
		// Revoke all sessions across devices.
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if ownerID, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		} else if uid == "" {
			uid = ownerID
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}

	h.publishEvent(uid, email, model.NotificationSignedOut,
		"Sesión cerrada", "Has cerrado sesión exitosamente")
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's identity and profile.  A nil profile is a valid
// degraded state (fresh identity whose profile creation failed); clients
// route it to profile recovery.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := c.Get(middleware.CtxUserID).(string)
	email, _ := c.Get(middleware.CtxEmail).(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Identities.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	profile, err := h.Profiles.Fetch(ctx, uid)
	if err != nil {
		log.Printf("me: fetch profile %s: %v", uid, err)
		profile = nil
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":             u.ID,
			"email":          u.Email,
			"meta_full_name": u.MetaFullName,
			"meta_role":      u.MetaRole,
		},
		"profile": profileJSON(profile),
		"email":   email,
	})
}

// resolveRole picks the authoritative role: profile first, sign-up
// metadata second, athlete as the final fallback.
func (h *AuthHandler) resolveRole(ctx context.Context, u model.Identity) (rbac.Role, string) {
	profile, err := h.Profiles.Fetch(ctx, u.ID)
	if err != nil {
		log.Printf("resolve role for %s: %v", u.ID, err)
	}
	if profile != nil {
		return profile.Role, profile.FullName
	}
	role := rbac.ParseRole(u.MetaRole)
	if role == rbac.RoleUnknown {
		role = rbac.RoleAthlete
	}
	return role, u.MetaFullName
}

func (h *AuthHandler) publishEvent(userID, email, kind, title, body string) {
	if h.Events == nil || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ev := queue.NewAuthEvent(userID, email, kind, title, body)
	if err := h.Events.PublishAuthEvent(ctx, ev); err != nil {
		log.Printf("publish %s event for %s: %v", kind, userID, err)
	}
}
