package auth

import "go-courier-booking-backend/internal/domain"

// Phase is the auth state machine's position.
type Phase int

const (
	// PhaseIdle: unauthenticated, nothing in flight.
	PhaseIdle Phase = iota
	// PhaseResolving: a session/profile resolution is in flight.
	PhaseResolving
	// PhaseAuthenticated: a validated session existed at resolution
	// time and its profile is attached. Not re-validated on every read;
	// only on session-change events or an explicit re-check.
	PhaseAuthenticated
	// PhaseError: resolution failed (profile missing or collaborator
	// unavailable).
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is the UI-facing auth snapshot. Profile is non-nil only in
// PhaseAuthenticated; Err is non-nil only in PhaseError.
type State struct {
	Phase   Phase
	Profile *domain.Profile
	Err     *Error
}

func (s State) Loading() bool {
	return s.Phase == PhaseResolving
}

func (s State) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.Profile != nil
}

// Role returns the authenticated role or "" when unauthenticated.
func (s State) Role() domain.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Profile.Role
}
