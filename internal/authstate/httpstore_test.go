package authstate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportmaps/sportmaps-server/internal/model"
)

func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": "u1", "email": req.Email, "full_name": "Ana", "role": "coach"},
			"access": map[string]any{
				"token": "acc-token", "expires": time.Now().Add(15 * time.Minute),
			},
			"refresh": map[string]any{
				"token": "ref-token", "expires": time.Now().Add(7 * 24 * time.Hour),
			},
		})
	})
	mux.HandleFunc("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	mux.HandleFunc("/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"profile": nil})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStoreSignInEstablishesSession(t *testing.T) {
	srv := fakeAuthServer(t)
	store := NewHTTPStore(srv.URL)

	var mu sync.Mutex
	var events []EventKind
	unsub := store.OnSessionChange(func(kind EventKind, s *Session) {
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	})
	defer unsub()

	sess, err := store.SignIn(context.Background(), "a@b.co", "correct-pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "coach", sess.Role)
	assert.Equal(t, "acc-token", sess.AccessToken)

	cur, err := store.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "u1", cur.UserID)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1 && events[0] == EventSignedIn
	}, time.Second, 5*time.Millisecond)
}

func TestHTTPStoreSignInBadCredentials(t *testing.T) {
	srv := fakeAuthServer(t)
	store := NewHTTPStore(srv.URL)

	_, err := store.SignIn(context.Background(), "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	cur, err := store.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestHTTPStoreSignUpDuplicate(t *testing.T) {
	srv := fakeAuthServer(t)
	store := NewHTTPStore(srv.URL)

	_, err := store.SignUp(context.Background(), "a@b.co", "longenough", model.ProfileFields{})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestHTTPStoreSignUpMapsServerValidationErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusBadRequest)
		if req.Password == "short" {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "password too weak"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid email"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	store := NewHTTPStore(srv.URL)

	// The server decides which rule a 400 broke; the store must not
	// second-guess it with its own checks.
	_, err := store.SignUp(context.Background(), "a@b.co", "short", model.ProfileFields{})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = store.SignUp(context.Background(), "not-an-email", "longenough", model.ProfileFields{})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestHTTPStoreSignOutClearsLocalSessionFirst(t *testing.T) {
	srv := fakeAuthServer(t)
	store := NewHTTPStore(srv.URL)

	_, err := store.SignIn(context.Background(), "a@b.co", "correct-pass")
	require.NoError(t, err)

	require.NoError(t, store.SignOut(context.Background()))
	cur, err := store.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)

	// signing out while anonymous is a no-op
	require.NoError(t, store.SignOut(context.Background()))
}

func TestHTTPStoreFetchNullProfile(t *testing.T) {
	srv := fakeAuthServer(t)
	store := NewHTTPStore(srv.URL)

	_, err := store.SignIn(context.Background(), "a@b.co", "correct-pass")
	require.NoError(t, err)

	p, err := store.Fetch(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, p, "null profile maps to nil, not an error")
}
