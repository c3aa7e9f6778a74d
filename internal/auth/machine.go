package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-courier-booking-backend/internal/domain"
)

// DefaultResolveTimeout bounds a single session/profile resolution so
// the machine can never sit in PhaseResolving indefinitely.
const DefaultResolveTimeout = 5 * time.Second

// Machine owns the auth state for one client session. It is the single
// writer of its State; everything else reads snapshots.
//
// Resolutions can complete out of order: a session-change event arriving
// mid-resolution supersedes the in-flight one. Each started resolution
// takes a generation number, and only the most recently started
// generation may commit its result. Without this, a slow resolution for
// an older event would overwrite a faster one for a newer event.
type Machine struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	resolver Resolver
	timeout  time.Duration
}

func NewMachine(resolver Resolver, timeout time.Duration) *Machine {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Machine{
		state:    State{Phase: PhaseIdle},
		resolver: resolver,
		timeout:  timeout,
	}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply feeds a session-change event into the machine and returns the
// state after this event's resolution settles. A nil session drops the
// machine to PhaseIdle from any state. A non-nil session starts a
// resolution; if a newer event starts while this one is in flight, this
// result is discarded and the newer resolution's outcome stands.
func (m *Machine) Apply(ctx context.Context, sess *domain.Session) State {
	if sess == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.gen++
		m.state = State{Phase: PhaseIdle}
		return m.state
	}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state = State{Phase: PhaseResolving}
	m.mu.Unlock()

	resolveCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	profile, err := m.resolver.Resolve(resolveCtx, sess.Subject)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		// Superseded while in flight; keep the newer result.
		return m.state
	}

	if err != nil {
		m.state = State{Phase: PhaseError, Err: asAuthError(err)}
		return m.state
	}

	m.state = State{Phase: PhaseAuthenticated, Profile: profile}
	return m.state
}

// Recheck re-runs resolution for an existing session without a change
// event, e.g. after a profile edit.
func (m *Machine) Recheck(ctx context.Context, sess *domain.Session) State {
	return m.Apply(ctx, sess)
}

func asAuthError(err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}
	return Unavailable(err)
}
