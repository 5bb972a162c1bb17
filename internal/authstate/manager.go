package authstate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/rbac"
)

const defaultCallTimeout = 5 * time.Second

// Manager owns the process-wide AuthState.  It listens to session-change
// events, resolves the matching profile asynchronously and publishes merged
// snapshots.  All mutation happens inside the manager; everything else is a
// read-only consumer.
//
// Resolution ordering: events are delivered in order, but the profile work
// they trigger is not guaranteed to finish in order.  Each resolution is
// stamped with a monotonically increasing generation when its event
// arrives; a publish whose generation is no longer the newest issued one is
// discarded, so the last event always wins.
type Manager struct {
	sessions SessionStore
	profiles ProfileStore
	notify   Notifier
	timeout  time.Duration

	mu     sync.Mutex
	state  AuthState
	issued uint64
	subs   map[uint64]chan AuthState
	subSeq uint64
	unsub  func()
	wg     sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier routes user-facing operation outcomes through n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// WithCallTimeout bounds every session and profile network call.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// NewManager builds a manager in the initial bootstrapping state
// {nil, nil, nil, loading=true}.  Call Start to begin resolution.
func NewManager(sessions SessionStore, profiles ProfileStore, opts ...Option) *Manager {
	m := &Manager{
		sessions: sessions,
		profiles: profiles,
		notify:   NopNotifier{},
		timeout:  defaultCallTimeout,
		state:    AuthState{Loading: true},
		subs:     make(map[uint64]chan AuthState),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start reads the current session once and subscribes to change events.
// It returns immediately; the state stays Loading until the first
// resolution publishes.  The session-change callback never does profile
// work on the provider's callback stack: it only stamps a generation and
// hands off to a new goroutine.
func (m *Manager) Start(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	sess, err := m.sessions.CurrentSession(cctx)
	cancel()
	if err != nil {
		// Treat an unreadable session as anonymous rather than wedging
		// the app in the loading state.
		log.Printf("authstate: read current session: %v", err)
		sess = nil
	}

	// The initial resolution's generation is stamped before subscribing:
	// any event delivered from the moment the subscription exists must
	// outrank the CurrentSession read, which is older by construction.
	gen := m.nextGen()

	m.unsub = m.sessions.OnSessionChange(func(kind EventKind, s *Session) {
		g := m.nextGen()
		m.wg.Add(1)
		go m.resolve(g, s)
	})

	m.wg.Add(1)
	go m.resolve(gen, sess)
	return nil
}

// Close cancels the event subscription and waits for in-flight resolutions.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.wg.Wait()
}

// State returns the current published snapshot.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers an observer channel.  Snapshots are delivered
// best-effort; slow consumers miss intermediate states, never see torn
// ones.  The returned function cancels the subscription.
func (m *Manager) Subscribe() (<-chan AuthState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subSeq++
	id := m.subSeq
	ch := make(chan AuthState, 16)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// SignIn exchanges credentials for a session.  The resulting state change
// arrives through the store's session-change event.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sess, err := m.sessions.SignIn(cctx, email, password)
	if err != nil {
		err = mapTimeout(err)
		m.notify.Notify(ctx, "", "sign_in_failed", "Error en el inicio de sesión", err.Error())
		return err
	}
	m.notify.Notify(ctx, sess.UserID, model.NotificationSignedIn, "Inicio de sesión exitoso", "Bienvenido a SportMaps")
	return nil
}

// SignUp registers a new identity with its initial profile fields.
func (m *Manager) SignUp(ctx context.Context, email, password string, fields model.ProfileFields) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	sess, err := m.sessions.SignUp(cctx, email, password, fields)
	if err != nil {
		err = mapTimeout(err)
		m.notify.Notify(ctx, "", "sign_up_failed", "Error en el registro", err.Error())
		return err
	}
	m.notify.Notify(ctx, sess.UserID, model.NotificationSignedUp, "¡Registro exitoso!", "Bienvenido a SportMaps. Tu cuenta ha sido creada.")
	return nil
}

// SignOut clears the local state synchronously and then attempts the
// remote sign-out.  The local clear is unconditional: a network failure on
// the remote call must not leave the application looking authenticated.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.issued++ // invalidate any in-flight resolution
	uid := ""
	if m.state.User != nil {
		uid = m.state.User.ID
	}
	m.state = AuthState{Loading: false}
	m.fanoutLocked()
	m.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.sessions.SignOut(cctx); err != nil {
		err = mapTimeout(err)
		log.Printf("authstate: remote sign-out: %v", err)
		return err
	}
	m.notify.Notify(ctx, uid, model.NotificationSignedOut, "Sesión cerrada", "Has cerrado sesión exitosamente")
	return nil
}

// UpdateProfile applies a partial update for the signed-in user and folds
// the result into the published state.
func (m *Manager) UpdateProfile(ctx context.Context, fields model.ProfileFields) (*model.Profile, error) {
	m.mu.Lock()
	user := m.state.User
	m.mu.Unlock()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	p, err := m.profiles.Update(cctx, user.ID, fields)
	if err != nil {
		err = mapTimeout(err)
		m.notify.Notify(ctx, user.ID, "profile_update_failed", "Error", err.Error())
		return nil, err
	}

	m.mu.Lock()
	if m.state.User != nil && m.state.User.ID == p.ID {
		m.state.Profile = p
		m.fanoutLocked()
	}
	m.mu.Unlock()
	m.notify.Notify(ctx, user.ID, model.NotificationProfileUpdated, "Perfil actualizado", "Tus datos han sido actualizados exitosamente")
	return p, nil
}

func (m *Manager) nextGen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	return m.issued
}

// resolve turns one session value into a published AuthState.  A nil
// session resolves to anonymous.  Profile fetch/create failures degrade to
// a user-without-profile state instead of failing the whole bootstrap;
// consumers route that gap to profile recovery.
func (m *Manager) resolve(gen uint64, sess *Session) {
	defer m.wg.Done()

	if sess == nil {
		m.publish(gen, AuthState{Loading: false})
		return
	}

	user := &model.Identity{
		ID:           sess.UserID,
		Email:        sess.Email,
		MetaFullName: sess.FullName,
		MetaRole:     sess.Role,
		IsActive:     true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	profile, err := m.profiles.Fetch(ctx, sess.UserID)
	if err == nil && profile == nil {
		profile, err = m.profiles.Create(ctx, sess.UserID, defaultProfileFields(sess))
	}
	if err != nil {
		// Swallowed on purpose: a transient backend hiccup must not strand
		// the user on a blank screen.
		log.Printf("authstate: resolve profile for %s: %v", sess.UserID, mapTimeout(err))
		profile = nil
	}

	m.publish(gen, AuthState{User: user, Profile: profile, Session: sess, Loading: false})
}

// publish installs a snapshot unless a newer resolution has been issued in
// the meantime; stale results are discarded so state is last-event-wins.
func (m *Manager) publish(gen uint64, st AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.issued {
		return
	}
	m.state = st
	m.fanoutLocked()
}

func (m *Manager) fanoutLocked() {
	for _, ch := range m.subs {
		select {
		case ch <- m.state:
		default:
		}
	}
}

// defaultProfileFields synthesizes the lazily-created profile from sign-up
// metadata: name falls back to "Usuario", role to athlete.
func defaultProfileFields(sess *Session) model.ProfileFields {
	name := sess.FullName
	if name == "" {
		name = "Usuario"
	}
	role := rbac.ParseRole(sess.Role)
	if role == rbac.RoleUnknown {
		role = rbac.RoleAthlete
	}
	return model.ProfileFields{FullName: &name, Role: &role}
}

func mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
