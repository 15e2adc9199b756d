package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/apufleet/fleetauth/pkg/authsdk"
)

// ErrSignInInFlight is returned when SignIn is called while a previous
// sign-in attempt is still running.
var ErrSignInInFlight = errors.New("a sign-in attempt is already in progress")

// DefaultSignInTimeout bounds how long a sign-in attempt may take
// before the manager gives up and records an error.
const DefaultSignInTimeout = 10 * time.Second

// Authenticator verifies a username/password pair and returns the
// signed-in principal. *authsdk.Client implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (authsdk.Principal, error)
}

// State is a snapshot of the session. Exactly one of the following
// holds: no principal, not loading and no error (signed out); Loading
// set (a sign-in attempt is running); Principal set (signed in); Err
// set (the last attempt failed).
type State struct {
	Principal *authsdk.Principal
	Loading   bool
	Err       string
}

// Authenticated reports whether a principal is signed in.
func (s State) Authenticated() bool { return s.Principal != nil }

// Manager owns the sign-in lifecycle for one dashboard client: it runs
// sign-in attempts through an Authenticator, keeps the current State,
// and persists the principal through a Store so a restart resumes the
// session without a network round trip.
type Manager struct {
	auth    Authenticator
	store   Store
	timeout time.Duration

	// mu guards state. ops serializes SignIn attempts without holding
	// mu across the network call.
	mu    sync.Mutex
	ops   chan struct{}
	state State
}

// NewManager returns a Manager that is signed out. Call Restore to
// resume a persisted session.
func NewManager(auth Authenticator, store Store) *Manager {
	m := &Manager{
		auth:    auth,
		store:   store,
		timeout: DefaultSignInTimeout,
		ops:     make(chan struct{}, 1),
	}
	m.ops <- struct{}{}
	return m
}

// SetSignInTimeout overrides the per-attempt timeout. Zero or negative
// values restore the default.
func (m *Manager) SetSignInTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultSignInTimeout
	}
	m.mu.Lock()
	m.timeout = d
	m.mu.Unlock()
}

// State returns the current session snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Restore loads a previously persisted session from the store. It never
// touches the network. A missing record leaves the manager signed out;
// a record that no longer parses is deleted and likewise leaves the
// manager signed out, so one bad write cannot wedge the client.
func (m *Manager) Restore() error {
	raw, ok := m.store.Get(KeyCurrentUser)
	if !ok {
		return nil
	}

	var p authsdk.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Username == "" {
		if delErr := m.store.Delete(KeyCurrentUser); delErr != nil {
			return delErr
		}
		return nil
	}
	p.UserRole = authsdk.NormalizeRole(p.Role)

	m.mu.Lock()
	m.state = State{Principal: &p}
	m.mu.Unlock()
	return nil
}

// SignIn runs one sign-in attempt. While an attempt is in flight any
// further call returns ErrSignInInFlight immediately. On success the
// principal and its normalized role are persisted and the state moves
// to signed in; on failure the state records the error message and the
// store is left untouched.
func (m *Manager) SignIn(ctx context.Context, username, password string) (authsdk.Principal, error) {
	select {
	case <-m.ops:
	default:
		return authsdk.Principal{}, ErrSignInInFlight
	}
	defer func() { m.ops <- struct{}{} }()

	m.mu.Lock()
	timeout := m.timeout
	m.state = State{Loading: true}
	m.mu.Unlock()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p, err := m.auth.Authenticate(attemptCtx, username, password)
	if err != nil {
		m.mu.Lock()
		m.state = State{Err: signInErrMessage(err)}
		m.mu.Unlock()
		return authsdk.Principal{}, err
	}

	p.UserRole = authsdk.NormalizeRole(p.Role)
	if err := m.persist(p); err != nil {
		m.mu.Lock()
		m.state = State{Err: signInErrMessage(err)}
		m.mu.Unlock()
		return authsdk.Principal{}, err
	}

	m.mu.Lock()
	m.state = State{Principal: &p}
	m.mu.Unlock()
	return p, nil
}

// SignOut clears the session. Both persisted keys are removed even if
// the in-memory state is already signed out, so a half-written session
// never survives.
func (m *Manager) SignOut() error {
	err := m.store.Delete(KeyCurrentUser)
	if delErr := m.store.Delete(KeyUserRole); err == nil {
		err = delErr
	}

	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	return err
}

func (m *Manager) persist(p authsdk.Principal) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := m.store.Set(KeyCurrentUser, string(raw)); err != nil {
		return err
	}
	return m.store.Set(KeyUserRole, p.UserRole)
}

// signInErrMessage extracts the message shown to the user. APIError
// descriptions carry the dashboard-facing text ("Invalid password",
// "User not found"); anything else falls through to Error().
func signInErrMessage(err error) string {
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Description
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Sign-in timed out"
	}
	return err.Error()
}
