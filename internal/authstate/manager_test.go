package authstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

// fakeSessionStore is an in-memory SessionStore whose events are fired
// manually from tests.
type fakeSessionStore struct {
	mu         sync.Mutex
	current    *Session
	currentErr error
	signInErr  error
	signOutErr error
	cb         func(EventKind, *Session)
	signOuts   int
}

func (f *fakeSessionStore) CurrentSession(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakeSessionStore) OnSessionChange(fn func(EventKind, *Session)) func() {
	f.mu.Lock()
	f.cb = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cb = nil
		f.mu.Unlock()
	}
}

func (f *fakeSessionStore) emit(kind EventKind, s *Session) {
	f.mu.Lock()
	cb := f.cb
	f.mu.Unlock()
	if cb != nil {
		cb(kind, s)
	}
}

func (f *fakeSessionStore) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	s := &Session{UserID: "u-signin", Email: email}
	f.mu.Lock()
	f.current = s
	f.mu.Unlock()
	return s, nil
}

func (f *fakeSessionStore) SignUp(ctx context.Context, email, password string, fields model.ProfileFields) (*Session, error) {
	s := &Session{UserID: "u-signup", Email: email}
	f.mu.Lock()
	f.current = s
	f.mu.Unlock()
	return s, nil
}

func (f *fakeSessionStore) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.current = nil
	f.mu.Unlock()
	return f.signOutErr
}

// fakeProfileStore keeps profiles in a map; fetch can be stalled per user
// through the block channel to simulate slow backends.
type fakeProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]*model.Profile
	fetchErr  error
	createErr error
	creates   int
	block     map[string]chan struct{}
}

func newFakeProfiles() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: map[string]*model.Profile{},
		block:    map[string]chan struct{}{},
	}
}

func (f *fakeProfileStore) Fetch(ctx context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	gate := f.block[id]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.profiles[id], nil
}

func (f *fakeProfileStore) Create(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	p := &model.Profile{ID: id, FullName: "Usuario", Role: rbac.RoleAthlete}
	if fields.FullName != nil {
		p.FullName = *fields.FullName
	}
	if fields.Role != nil {
		p.Role = *fields.Role
	}
	f.profiles[id] = p
	return p, nil
}

func (f *fakeProfileStore) Update(ctx context.Context, id string, fields model.ProfileFields) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, errors.New("no profile")
	}
	cp := *p
	if fields.FullName != nil {
		cp.FullName = *fields.FullName
	}
	f.profiles[id] = &cp
	return &cp, nil
}

func waitResolved(t *testing.T, m *Manager) AuthState {
	t.Helper()
	require.Eventually(t, func() bool {
		return !m.State().Loading
	}, 2*time.Second, 5*time.Millisecond)
	return m.State()
}

func TestBootstrapAnonymous(t *testing.T) {
	sessions := &fakeSessionStore{}
	m := NewManager(sessions, newFakeProfiles())
	defer m.Close()

	require.True(t, m.State().Loading)
	require.NoError(t, m.Start(context.Background()))

	st := waitResolved(t, m)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.Nil(t, st.Session)
	assert.False(t, st.Authenticated())
}

func TestBootstrapSessionReadErrorResolvesAnonymous(t *testing.T) {
	sessions := &fakeSessionStore{currentErr: errors.New("storage corrupt")}
	m := NewManager(sessions, newFakeProfiles())
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	assert.False(t, st.Authenticated())
}

func TestBootstrapAuthenticatedWithProfile(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{UserID: "u1", Email: "a@b.co"}}
	profiles := newFakeProfiles()
	profiles.profiles["u1"] = &model.Profile{ID: "u1", FullName: "Ana", Role: rbac.RoleCoach}
	m := NewManager(sessions, profiles)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
	require.NotNil(t, st.Profile)
	assert.Equal(t, rbac.RoleCoach, st.Profile.Role)
	assert.Equal(t, 0, profiles.creates)
}

func TestMissingProfileIsCreatedFromHints(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{
		UserID: "u2", Email: "c@d.co", FullName: "Carlos", Role: "coach",
	}}
	profiles := newFakeProfiles()
	m := NewManager(sessions, profiles)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Carlos", st.Profile.FullName)
	assert.Equal(t, rbac.RoleCoach, st.Profile.Role)
	assert.Equal(t, 1, profiles.creates)
}

func TestMissingProfileDefaultsWithoutHints(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{UserID: "u3", Email: "e@f.co"}}
	profiles := newFakeProfiles()
	m := NewManager(sessions, profiles)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "Usuario", st.Profile.FullName)
	assert.Equal(t, rbac.RoleAthlete, st.Profile.Role)
}

func TestProfileCreateFailureDegradesState(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{UserID: "u4", Email: "g@h.co"}}
	profiles := newFakeProfiles()
	profiles.createErr = errors.New("insert failed")
	m := NewManager(sessions, profiles)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.NotNil(t, st.User, "user must survive a profile failure")
	assert.Nil(t, st.Profile)
	assert.True(t, st.Authenticated())
}

func TestSignOutClearsStateEvenWhenRemoteFails(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{UserID: "u5", Email: "i@j.co"}}
	profiles := newFakeProfiles()
	profiles.profiles["u5"] = &model.Profile{ID: "u5", FullName: "Iris", Role: rbac.RoleParent}
	m := NewManager(sessions, profiles)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.True(t, st.Authenticated())

	sessions.signOutErr = errors.New("network down")
	err := m.SignOut(context.Background())
	require.Error(t, err)

	st = m.State()
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.Nil(t, st.Session)
	assert.False(t, st.Loading)
}

func TestLastEventWins(t *testing.T) {
	sessions := &fakeSessionStore{}
	profiles := newFakeProfiles()
	profiles.profiles["slow"] = &model.Profile{ID: "slow", FullName: "Slow", Role: rbac.RoleAthlete}
	profiles.profiles["fast"] = &model.Profile{ID: "fast", FullName: "Fast", Role: rbac.RoleCoach}
	gate := make(chan struct{})
	profiles.block["slow"] = gate

	m := NewManager(sessions, profiles)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)

	// older event whose profile fetch stalls, then a newer one
	sessions.emit(EventSignedIn, &Session{UserID: "slow"})
	sessions.emit(EventSignedIn, &Session{UserID: "fast"})

	require.Eventually(t, func() bool {
		st := m.State()
		return st.User != nil && st.User.ID == "fast"
	}, 2*time.Second, 5*time.Millisecond)

	// the stale resolution completes late and must be discarded
	close(gate)
	time.Sleep(50 * time.Millisecond)
	st := m.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "fast", st.User.ID)
	assert.Equal(t, "Fast", st.Profile.FullName)
}

// eagerSessionStore fires a signed_in event the moment the subscription is
// installed, racing the bootstrap's CurrentSession read.
type eagerSessionStore struct {
	fakeSessionStore
	eager *Session
}

func (f *eagerSessionStore) OnSessionChange(fn func(EventKind, *Session)) func() {
	unsub := f.fakeSessionStore.OnSessionChange(fn)
	fn(EventSignedIn, f.eager)
	return unsub
}

func TestEventDuringBootstrapOutranksInitialRead(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.profiles["u-early"] = &model.Profile{ID: "u-early", FullName: "Early", Role: rbac.RoleAthlete}
	sessions := &eagerSessionStore{eager: &Session{UserID: "u-early"}}

	m := NewManager(sessions, profiles)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.Eventually(t, func() bool {
		st := m.State()
		return !st.Loading && st.User != nil && st.User.ID == "u-early"
	}, 2*time.Second, 5*time.Millisecond,
		"sign-in delivered during bootstrap must beat the stale anonymous read")
}

func TestSignOutInvalidatesInFlightResolution(t *testing.T) {
	sessions := &fakeSessionStore{}
	profiles := newFakeProfiles()
	profiles.profiles["u6"] = &model.Profile{ID: "u6", FullName: "Late", Role: rbac.RoleAthlete}
	gate := make(chan struct{})
	profiles.block["u6"] = gate

	m := NewManager(sessions, profiles)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)

	sessions.emit(EventSignedIn, &Session{UserID: "u6"})
	require.NoError(t, m.SignOut(context.Background()))

	close(gate)
	time.Sleep(50 * time.Millisecond)
	st := m.State()
	assert.Nil(t, st.User, "stale resolution must not resurrect a signed-out session")
}

func TestSessionChangeCallbackDoesNotBlock(t *testing.T) {
	sessions := &fakeSessionStore{}
	profiles := newFakeProfiles()
	gate := make(chan struct{})
	profiles.block["u7"] = gate

	m := NewManager(sessions, profiles)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)

	done := make(chan struct{})
	go func() {
		// must return immediately even though resolution is stalled
		sessions.emit(EventSignedIn, &Session{UserID: "u7"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("session-change callback blocked on profile resolution")
	}
	close(gate)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	sessions := &fakeSessionStore{}
	profiles := newFakeProfiles()
	profiles.profiles["u8"] = &model.Profile{ID: "u8", FullName: "Sub", Role: rbac.RoleSchool}

	m := NewManager(sessions, profiles)
	defer m.Close()
	ch, cancel := m.Subscribe()
	defer cancel()

	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)
	sessions.emit(EventSignedIn, &Session{UserID: "u8"})

	require.Eventually(t, func() bool {
		for {
			select {
			case st := <-ch:
				if st.User != nil && st.User.ID == "u8" {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 5*time.Millisecond)
}

func TestUpdateProfileRequiresAuthentication(t *testing.T) {
	m := NewManager(&fakeSessionStore{}, newFakeProfiles())
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)

	name := "Nuevo"
	_, err := m.UpdateProfile(context.Background(), model.ProfileFields{FullName: &name})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateProfileFoldsIntoState(t *testing.T) {
	sessions := &fakeSessionStore{current: &Session{UserID: "u9", Email: "k@l.co"}}
	profiles := newFakeProfiles()
	profiles.profiles["u9"] = &model.Profile{ID: "u9", FullName: "Before", Role: rbac.RoleAthlete}

	m := NewManager(sessions, profiles)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	st := waitResolved(t, m)
	require.True(t, st.Authenticated())

	name := "After"
	p, err := m.UpdateProfile(context.Background(), model.ProfileFields{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "After", p.FullName)
	assert.Equal(t, "After", m.State().Profile.FullName)
}

func TestSignInSurfacesStoreError(t *testing.T) {
	sessions := &fakeSessionStore{signInErr: ErrInvalidCredentials}
	m := NewManager(sessions, newFakeProfiles())
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	waitResolved(t, m)

	err := m.SignIn(context.Background(), "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, m.State().Authenticated())
}
