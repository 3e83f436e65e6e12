// Package session owns the authenticated-session state machine.
package session

import (
	"context"
	"sync"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/credstore"
	"github.com/barberpro/barberpro-mobile/internal/validate"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

// State is the authentication state. Initializing lasts until startup
// restoration settles; auth-gated navigation is deferred while in it.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Listener observes every state transition. Invoked synchronously with the
// transition; user is nil outside Authenticated.
type Listener func(state State, user *api.AuthUser)

// Manager drives the Unauthenticated/Authenticated machine. All reads are
// consistent with completed transitions.
type Manager struct {
	mu        sync.Mutex
	state     State
	user      *api.AuthUser
	client    *api.Client
	store     *credstore.Store
	logger    *logging.Logger
	listeners []Listener
}

// NewManager creates a Manager in the Initializing state and registers it as
// the gateway's session invalidator.
func NewManager(client *api.Client, store *credstore.Store, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		state:  StateInitializing,
		client: client,
		store:  store,
		logger: logger,
	}
	client.SetInvalidator(m)
	return m
}

// Subscribe registers a transition listener and returns its removal func.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
	idx := len(m.listeners) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners[idx] = nil
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a user session is active.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *api.AuthUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Restore attempts startup restoration from the credential store. When both
// token and user are present the session is restored optimistically, without
// a network round-trip; the token's validity is confirmed lazily by the next
// API call.
func (m *Manager) Restore(ctx context.Context) {
	sess, ok := m.store.LoadSession(ctx)
	if !ok {
		_ = m.store.ClearSession(ctx)
		m.transition(StateUnauthenticated, nil)
		return
	}
	m.logger.Info("session restored", "user_id", sess.User.ID)
	m.transition(StateAuthenticated, &sess.User)
}

// Login authenticates with the mobile login endpoint. On success the session
// is persisted before the transition; on failure the state is unchanged and
// the server's message is surfaced verbatim.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := validate.Required("email", email); err != nil {
		return err
	}
	if err := validate.Required("contraseña", password); err != nil {
		return err
	}

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.store.SaveSession(ctx, resp.Token, resp.User); err != nil {
		return err
	}
	m.transition(StateAuthenticated, &resp.User)
	return nil
}

// Register creates the account and then performs the Login transition with
// the same credentials; registration itself returns no usable token. When
// login fails after a successful register the account exists server-side but
// no client session does; the failure surfaces as a login failure.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := validate.Required("nombre", req.Name); err != nil {
		return err
	}
	if err := validate.Email(req.Email); err != nil {
		return err
	}
	if err := validate.Password(req.Password); err != nil {
		return err
	}

	if err := m.client.Register(ctx, req); err != nil {
		return err
	}
	return m.Login(ctx, req.Email, req.Password)
}

// Logout clears the session. It is local-only and always succeeds regardless
// of network reachability.
func (m *Manager) Logout(ctx context.Context) {
	_ = m.store.ClearSession(ctx)
	m.transition(StateUnauthenticated, nil)
}

// HandleSessionExpired implements api.SessionInvalidator. It is invoked by
// the gateway on any 401 and is the only path that changes session state
// outside direct user action. Clearing is idempotent: concurrent 401s
// transition exactly once.
func (m *Manager) HandleSessionExpired() {
	m.mu.Lock()
	if m.state == StateUnauthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateUnauthenticated
	m.user = nil
	// Clear the store before releasing the lock so no later call can read a
	// stale token.
	_ = m.store.ClearSession(context.Background())
	listeners := m.snapshotListenersLocked()
	m.mu.Unlock()

	m.logger.Warn("session expired, cleared credentials")
	for _, l := range listeners {
		l(StateUnauthenticated, nil)
	}
}

func (m *Manager) transition(state State, user *api.AuthUser) {
	m.mu.Lock()
	m.state = state
	m.user = user
	listeners := m.snapshotListenersLocked()
	m.mu.Unlock()

	for _, l := range listeners {
		l(state, user)
	}
}

func (m *Manager) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}
