package authstate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// HTTPStore talks to the SportMaps auth API and implements both
// SessionStore and ProfileStore for client-side use.  The session lives
// in memory; change events are delivered through a single dispatcher
// goroutine so subscribers never run on the caller's stack.
type HTTPStore struct {
	BaseURL string
	Client  *http.Client

	mu      sync.Mutex
	session *Session
	subs    map[uint64]func(EventKind, *Session)
	subSeq  uint64

	events chan storeEvent
	once   sync.Once
}

type storeEvent struct {
	kind EventKind
	sess *Session
}

// NewHTTPStore builds a store against the given API base URL, e.g.
// "http://localhost:8080".
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
		subs:    map[uint64]func(EventKind, *Session){},
		events:  make(chan storeEvent, 32),
	}
}

func (s *HTTPStore) startDispatcher() {
	s.once.Do(func() {
		go func() {
			for ev := range s.events {
				s.mu.Lock()
				fns := make([]func(EventKind, *Session), 0, len(s.subs))
				for _, fn := range s.subs {
					fns = append(fns, fn)
				}
				s.mu.Unlock()
				for _, fn := range fns {
					fn(ev.kind, ev.sess)
				}
			}
		}()
	})
}

func (s *HTTPStore) emit(kind EventKind, sess *Session) {
	s.startDispatcher()
	s.events <- storeEvent{kind: kind, sess: sess}
}

// CurrentSession returns the in-memory session, nil when anonymous.
func (s *HTTPStore) CurrentSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	cp := *s.session
	return &cp, nil
}

// OnSessionChange registers a callback for session events.
func (s *HTTPStore) OnSessionChange(fn func(EventKind, *Session)) func() {
	s.startDispatcher()
	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// wire DTOs matching the server's auth responses.

type wireToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type wireUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
type wireAuthResp struct {
	User    wireUser  `json:"user"`
	Access  wireToken `json:"access"`
	Refresh wireToken `json:"refresh"`
}

// SignIn exchanges credentials for a session.
func (s *HTTPStore) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp wireAuthResp
	status, _, err := s.postJSON(ctx, "/v1/auth/login", body, &resp)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("%w: login status %d", ErrPersistence, status)
	}
	sess := sessionFromResp(resp)
	s.setSession(sess)
	s.emit(EventSignedIn, sess)
	return sess, nil
}

// SignUp registers a new identity and establishes its session.
func (s *HTTPStore) SignUp(ctx context.Context, email, password string, fields model.ProfileFields) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	if fields.FullName != nil {
		body["full_name"] = *fields.FullName
	}
	if fields.Phone != nil {
		body["phone"] = *fields.Phone
	}
	if fields.Role != nil {
		body["role"] = fields.Role.String()
	}
	var resp wireAuthResp
	status, apiErr, err := s.postJSON(ctx, "/v1/auth/register", body, &resp)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusCreated:
	case http.StatusConflict:
		return nil, ErrDuplicateAccount
	case http.StatusBadRequest:
		// The server is the single validation authority; its error
		// message says which rule the request broke.
		if strings.Contains(apiErr, "password") {
			return nil, ErrWeakPassword
		}
		return nil, ErrInvalidEmail
	default:
		return nil, fmt.Errorf("%w: register status %d", ErrPersistence, status)
	}
	sess := sessionFromResp(resp)
	s.setSession(sess)
	s.emit(EventSignedIn, sess)
	return sess, nil
}

// SignOut clears the local session first and then revokes it remotely.
// The remote error, if any, is returned after local state is already
// gone.
func (s *HTTPStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	old := s.session
	s.session = nil
	s.mu.Unlock()
	s.emit(EventSignedOut, nil)

	if old == nil {
		return nil
	}
	body := map[string]string{"refresh_token": old.RefreshToken}
	status, _, err := s.postJSON(ctx, "/v1/auth/logout", body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("%w: logout status %d", ErrPersistence, status)
	}
	return nil
}

// RefreshSession rotates the refresh token and updates the session.
func (s *HTTPStore) RefreshSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	cur := s.session
	s.mu.Unlock()
	if cur == nil {
		return nil, ErrNotAuthenticated
	}
	body := map[string]string{"refresh_token": cur.RefreshToken}
	var resp wireAuthResp
	status, _, err := s.postJSON(ctx, "/v1/auth/refresh", body, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: refresh status %d", ErrPersistence, status)
	}
	sess := sessionFromResp(resp)
	s.setSession(sess)
	s.emit(EventTokenRefreshed, sess)
	return sess, nil
}

// Fetch loads the caller's profile via GET /v1/me; a null profile in the
// response maps to (nil, nil).
func (s *HTTPStore) Fetch(ctx context.Context, id string) (*model.Profile, error) {
	var out struct {
		Profile *wireProfile `json:"profile"`
	}
	status, _, err := s.getJSON(ctx, "/v1/me", &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: me status %d", ErrPersistence, status)
	}
	return out.Profile.toModel(), nil
}

// Create recovers a missing profile through the idempotent profile
// endpoint.
func (s *HTTPStore) Create(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	return s.Update(ctx, id, fields)
}

// Update applies a partial profile update via PATCH /v1/me/profile.
func (s *HTTPStore) Update(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	body := map[string]any{}
	if fields.FullName != nil {
		body["full_name"] = *fields.FullName
	}
	if fields.Phone != nil {
		body["phone"] = *fields.Phone
	}
	if fields.AvatarURL != nil {
		body["avatar_url"] = *fields.AvatarURL
	}
	if fields.Bio != nil {
		body["bio"] = *fields.Bio
	}
	if fields.DateOfBirth != nil {
		body["date_of_birth"] = fields.DateOfBirth.Format("2006-01-02")
	}
	if fields.SubscriptionTier != nil {
		body["subscription_tier"] = *fields.SubscriptionTier
	}

	var out struct {
		Profile *wireProfile `json:"profile"`
	}
	status, _, err := s.doJSON(ctx, http.MethodPatch, "/v1/me/profile", body, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: update profile status %d", ErrPersistence, status)
	}
	return out.Profile.toModel(), nil
}

type wireProfile struct {
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	Phone            *string   `json:"phone"`
	Role             string    `json:"role"`
	AvatarURL        *string   `json:"avatar_url"`
	Bio              *string   `json:"bio"`
	DateOfBirth      *string   `json:"date_of_birth"`
	SportmapsPoints  int       `json:"sportmaps_points"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (w *wireProfile) toModel() *model.Profile {
	if w == nil {
		return nil
	}
	p := &model.Profile{
		ID:               w.ID,
		FullName:         w.FullName,
		Phone:            w.Phone,
		Role:             rbac.ParseRole(w.Role),
		AvatarURL:        w.AvatarURL,
		Bio:              w.Bio,
		SportmapsPoints:  w.SportmapsPoints,
		SubscriptionTier: w.SubscriptionTier,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
	}
	if w.DateOfBirth != nil {
		if t, err := time.Parse("2006-01-02", *w.DateOfBirth); err == nil {
			p.DateOfBirth = &t
		}
	}
	return p
}

func sessionFromResp(r wireAuthResp) *Session {
	return &Session{
		AccessToken:      r.Access.Token,
		RefreshToken:     r.Refresh.Token,
		AccessExpiresAt:  r.Access.Expires,
		RefreshExpiresAt: r.Refresh.Expires,
		UserID:           r.User.ID,
		Email:            r.User.Email,
		FullName:         r.User.FullName,
		Role:             r.User.Role,
	}
}

func (s *HTTPStore) setSession(sess *Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func (s *HTTPStore) postJSON(ctx context.Context, path string, body, out any) (int, string, error) {
	return s.doJSON(ctx, http.MethodPost, path, body, out)
}

func (s *HTTPStore) getJSON(ctx context.Context, path string, out any) (int, string, error) {
	return s.doJSON(ctx, http.MethodGet, path, nil, out)
}

// doJSON performs one API call.  On a 2xx the body is decoded into out; on
// anything else the server's {"error": ...} message is returned so callers
// can map it to a sentinel instead of guessing from the status alone.
func (s *HTTPStore) doJSON(ctx context.Context, method, path string, body, out any) (int, string, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, "", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, &buf)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	s.mu.Lock()
	if s.session != nil {
		req.Header.Set("Authorization", "Bearer "+s.session.AccessToken)
	}
	s.mu.Unlock()

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, apiErr.Error, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", err
		}
	}
	return resp.StatusCode, "", nil
}
