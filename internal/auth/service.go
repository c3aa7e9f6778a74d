package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/logger"
	"go-courier-booking-backend/pkg/supabase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Provider is the slice of the auth collaborator the service needs.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.TokenResponse, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*supabase.Subject, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.TokenResponse, error)
	DeleteUser(ctx context.Context, subjectID string) error
}

// SignUpInput carries the registration form. Role is fixed at
// registration and never changes afterwards.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
	Role     domain.Role
}

// Service consolidates sign-in, sign-up, sign-out, and per-session auth
// state into a single source of truth. There is deliberately no second
// place that answers "who is logged in".
type Service struct {
	store    SessionStore
	resolver Resolver
	provider Provider
	users    domain.UserRepository
	timeout  time.Duration

	mu       sync.Mutex
	machines map[string]*Machine
}

func NewService(store SessionStore, resolver Resolver, provider Provider, users domain.UserRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	s := &Service{
		store:    store,
		resolver: resolver,
		provider: provider,
		users:    users,
		timeout:  timeout,
		machines: make(map[string]*Machine),
	}
	// Session transitions (sign-in, refresh, sign-out) drive the
	// machines; this is the only path that triggers re-resolution.
	store.Subscribe(s.onSessionChange)
	return s
}

func (s *Service) machineFor(sid string) *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[sid]
	if !ok {
		m = NewMachine(s.resolver, s.timeout)
		s.machines[sid] = m
	}
	return m
}

func (s *Service) dropMachine(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.machines, sid)
}

func (s *Service) onSessionChange(sid string, sess *domain.Session) {
	m := s.machineFor(sid)
	state := m.Apply(context.Background(), sess)
	if sess == nil {
		// Signed out; the machine holds nothing worth keeping.
		s.dropMachine(sid)
	}
	if state.Phase == PhaseError {
		logger.Log.Warn("session resolution failed",
			"sid_prefix", sidPrefix(sid), "kind", state.Err.Kind.String())
	}
}

// StateFor returns the auth state for a session cookie value. An
// authenticated snapshot is served from the machine without re-reading
// the profile; re-resolution happens only on change events or when the
// machine has nothing yet.
func (s *Service) StateFor(ctx context.Context, sid string) State {
	if sid == "" {
		return State{Phase: PhaseIdle}
	}

	sess, err := s.store.Get(ctx, sid)
	if errors.Is(err, ErrSessionExpired) {
		refreshed, refreshErr := s.refresh(ctx, sess)
		if refreshErr != nil {
			// Fail closed; refresh tokens that no longer work mean
			// the provider considers the session dead.
			_ = s.store.Clear(ctx, sid)
			return State{Phase: PhaseIdle}
		}
		sess = *refreshed
		err = nil
	}
	if err != nil {
		return State{Phase: PhaseIdle}
	}

	m := s.machineFor(sid)
	state := m.State()
	if state.Authenticated() || state.Phase == PhaseError {
		return state
	}
	// Cold machine (process restart, first request): resolve now.
	return m.Apply(ctx, &sess)
}

// refresh renews the token pair transparently. Save re-enters the
// change path, so the machine re-resolves exactly once.
func (s *Service) refresh(ctx context.Context, sess domain.Session) (*domain.Session, error) {
	if sess.RefreshToken == "" {
		return nil, Unauthenticated()
	}

	tok, err := s.provider.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		return nil, Unauthenticated()
	}

	renewed := domain.Session{
		ID:           sess.ID,
		Subject:      tok.User.ID,
		Email:        tok.User.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	if renewed.Subject == "" {
		renewed.Subject = sess.Subject
		renewed.Email = sess.Email
	}
	if err := s.store.Save(ctx, renewed); err != nil {
		return nil, Unavailable(err)
	}
	return &renewed, nil
}

// SignIn verifies credentials with the auth collaborator and, on
// success, persists a session and resolves its profile. An expected
// rejection returns KindInvalidCredentials and leaves all state
// untouched: no flicker through Authenticated.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, State, error) {
	tok, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.InvalidCredentials() {
			return "", State{}, InvalidCredentials("")
		}
		return "", State{}, Unavailable(err)
	}

	sess := domain.Session{
		ID:           uuid.NewString(),
		Subject:      tok.User.ID,
		Email:        tok.User.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return "", State{}, Unavailable(err)
	}

	// Save fired the change event, which resolved the machine inline.
	state := s.machineFor(sess.ID).State()
	if state.Phase == PhaseError {
		return sess.ID, state, state.Err
	}
	return sess.ID, state, nil
}

// SignUp is two-phase: create the auth subject, then insert the profile
// row keyed by the subject's ID. The writes are not transactional. A
// phase-two failure leaves the subject behind and surfaces
// KindPartialRegistration so the caller can retry phase two alone;
// nothing is retried silently and no session is established.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*domain.Profile, error) {
	if !in.Role.Valid() {
		return nil, &Error{Kind: KindInvalidCredentials, Message: "Invalid role"}
	}

	subject, err := s.provider.SignUp(ctx, in.Email, in.Password, map[string]interface{}{
		"full_name": in.FullName,
		"role":      string(in.Role),
	})
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.Status < 500 {
			return nil, &Error{Kind: KindInvalidCredentials, Message: authErr.Message}
		}
		return nil, Unavailable(err)
	}
	if subject.ID == "" {
		return nil, Unavailable(errors.New("provider returned no subject"))
	}

	profile := &domain.Profile{
		ID:        subject.ID,
		Email:     in.Email,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      in.Role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.users.Create(ctx, profile); err != nil {
		return nil, PartialRegistration(subject.ID, err)
	}

	return profile, nil
}

// RetryProfile completes phase two of a partial registration: the
// subject exists, only the profile row is missing.
func (s *Service) RetryProfile(ctx context.Context, subjectID string, in SignUpInput) (*domain.Profile, error) {
	if subjectID == "" {
		return nil, &Error{Kind: KindInvalidCredentials, Message: "Missing subject ID"}
	}
	if !in.Role.Valid() {
		return nil, &Error{Kind: KindInvalidCredentials, Message: "Invalid role"}
	}

	profile := &domain.Profile{
		ID:        subjectID,
		Email:     in.Email,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      in.Role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, PartialRegistration(subjectID, err)
	}
	return profile, nil
}

// EmailTaken reports whether a profile already uses the address. Used
// by the registration form before phase one runs.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, Unavailable(err)
}

// SignOut drops the local session immediately and revokes the remote
// one best-effort. A failed remote revoke never leaves the caller
// looking signed in.
func (s *Service) SignOut(ctx context.Context, sid string) {
	if sid == "" {
		return
	}

	sess, err := s.store.Get(ctx, sid)
	accessToken := ""
	if err == nil || errors.Is(err, ErrSessionExpired) {
		accessToken = sess.AccessToken
	}

	// Optimistic: local state goes to Idle regardless of the remote
	// call. Clear notifies listeners, which idles the machine.
	_ = s.store.Clear(ctx, sid)

	if accessToken != "" {
		if err := s.provider.SignOut(ctx, accessToken); err != nil {
			logger.Log.Warn("remote sign-out failed", "error", err)
		}
	}
}

// SessionFor exposes the raw session for callers that need the token
// pair, e.g. the delete-self endpoint passing identity downstream.
func (s *Service) SessionFor(ctx context.Context, sid string) (domain.Session, error) {
	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return domain.Session{}, Unauthenticated()
	}
	return sess, nil
}

// Recheck forces re-resolution for a live session, e.g. after the
// profile row changed.
func (s *Service) Recheck(ctx context.Context, sid string) State {
	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return State{Phase: PhaseIdle}
	}
	return s.machineFor(sid).Recheck(ctx, &sess)
}

func sidPrefix(sid string) string {
	if len(sid) <= 8 {
		return sid
	}
	return sid[:8]
}
