package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/logger"
	"go-courier-booking-backend/pkg/supabase"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) List(ctx context.Context, roles []domain.Role, page, pageSize int) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, roles, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Profile), args.Get(1).(int64), args.Error(2)
}

// fakeProvider stands in for the Supabase client.
type fakeProvider struct {
	signInFn  func(email, password string) (*supabase.TokenResponse, error)
	signUpFn  func(email, password string) (*supabase.Subject, error)
	refreshFn func(refreshToken string) (*supabase.TokenResponse, error)
	signOutErr error
	deleteErr  error

	signOutCalls int
	deleteCalls  []string
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*supabase.TokenResponse, error) {
	return f.signInFn(email, password)
}

func (f *fakeProvider) SignUp(_ context.Context, email, password string, _ map[string]interface{}) (*supabase.Subject, error) {
	return f.signUpFn(email, password)
}

func (f *fakeProvider) SignOut(_ context.Context, _ string) error {
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) RefreshSession(_ context.Context, refreshToken string) (*supabase.TokenResponse, error) {
	if f.refreshFn == nil {
		return nil, &supabase.AuthError{Status: http.StatusBadRequest, Message: "refresh_token invalid"}
	}
	return f.refreshFn(refreshToken)
}

func (f *fakeProvider) DeleteUser(_ context.Context, subjectID string) error {
	f.deleteCalls = append(f.deleteCalls, subjectID)
	return f.deleteErr
}

func goodToken(subject, email string) *supabase.TokenResponse {
	return &supabase.TokenResponse{
		AccessToken:  "access-" + subject,
		RefreshToken: "refresh-" + subject,
		ExpiresIn:    3600,
		User:         supabase.Subject{ID: subject, Email: email},
	}
}

func newTestService(provider Provider, users domain.UserRepository) (*Service, *MemorySessionStore) {
	store := NewMemorySessionStore(nil, time.Hour)
	svc := NewService(store, NewProfileResolver(users), provider, users, time.Second)
	return svc, store
}

func TestSignIn(t *testing.T) {
	t.Run("Success resolves profile and issues session", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, "alice").
			Return(&domain.Profile{ID: "alice", Email: "a@example.com", Role: domain.RoleUser}, nil)

		provider := &fakeProvider{
			signInFn: func(email, password string) (*supabase.TokenResponse, error) {
				return goodToken("alice", email), nil
			},
		}

		svc, _ := newTestService(provider, users)
		sid, state, err := svc.SignIn(context.Background(), "a@example.com", "pw")

		require.NoError(t, err)
		require.NotEmpty(t, sid)
		require.True(t, state.Authenticated())
		assert.Equal(t, domain.RoleUser, state.Role())

		// Subsequent reads come from the cached machine state.
		again := svc.StateFor(context.Background(), sid)
		assert.True(t, again.Authenticated())
		users.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("Wrong password returns typed failure without state flicker", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, "alice").
			Return(&domain.Profile{ID: "alice", Role: domain.RoleUser}, nil)

		calls := 0
		provider := &fakeProvider{
			signInFn: func(email, password string) (*supabase.TokenResponse, error) {
				calls++
				if password == "right" {
					return goodToken("alice", email), nil
				}
				return nil, &supabase.AuthError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
			},
		}

		svc, _ := newTestService(provider, users)

		sid, _, err := svc.SignIn(context.Background(), "a@example.com", "right")
		require.NoError(t, err)

		_, _, err = svc.SignIn(context.Background(), "a@example.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, KindInvalidCredentials, KindOf(err))

		// The earlier session's state is untouched by the rejection.
		assert.True(t, svc.StateFor(context.Background(), sid).Authenticated())
		assert.Equal(t, 2, calls)
	})

	t.Run("Provider outage maps to Unavailable", func(t *testing.T) {
		provider := &fakeProvider{
			signInFn: func(string, string) (*supabase.TokenResponse, error) {
				return nil, errors.New("connection refused")
			},
		}

		svc, _ := newTestService(provider, new(MockUserRepo))
		_, _, err := svc.SignIn(context.Background(), "a@example.com", "pw")
		require.Error(t, err)
		assert.Equal(t, KindUnavailable, KindOf(err))
	})

	t.Run("Valid session with missing profile surfaces NotFound", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, "orphan").Return(nil, pgx.ErrNoRows)

		provider := &fakeProvider{
			signInFn: func(email, password string) (*supabase.TokenResponse, error) {
				return goodToken("orphan", email), nil
			},
		}

		svc, _ := newTestService(provider, users)
		_, state, err := svc.SignIn(context.Background(), "o@example.com", "pw")
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, PhaseError, state.Phase)
	})
}

func TestSignUp(t *testing.T) {
	input := SignUpInput{
		Email:    "new@example.com",
		Password: "pw123456",
		FullName: "New Person",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Role:     domain.RoleCourier,
	}

	t.Run("Two phases complete", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

		provider := &fakeProvider{
			signUpFn: func(email, password string) (*supabase.Subject, error) {
				return &supabase.Subject{ID: "new-subject", Email: email}, nil
			},
		}

		svc, _ := newTestService(provider, users)
		profile, err := svc.SignUp(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "new-subject", profile.ID)
		assert.Equal(t, domain.RoleCourier, profile.Role)
		users.AssertExpectations(t)
	})

	t.Run("Profile insert failure yields PartialRegistration and no session", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		provider := &fakeProvider{
			signUpFn: func(email, password string) (*supabase.Subject, error) {
				return &supabase.Subject{ID: "half-registered", Email: email}, nil
			},
		}

		svc, _ := newTestService(provider, users)
		_, err := svc.SignUp(context.Background(), input)

		require.Error(t, err)
		assert.Equal(t, KindPartialRegistration, KindOf(err))
		// Exactly one insert attempt: no silent retry.
		users.AssertNumberOfCalls(t, "Create", 1)
		// Still unauthenticated.
		assert.Equal(t, PhaseIdle, svc.StateFor(context.Background(), "").Phase)
	})

	t.Run("RetryProfile completes phase two alone", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("Create", mock.Anything, mock.Anything).Return(nil)

		provider := &fakeProvider{}
		svc, _ := newTestService(provider, users)

		profile, err := svc.RetryProfile(context.Background(), "half-registered", input)
		require.NoError(t, err)
		assert.Equal(t, "half-registered", profile.ID)
	})

	t.Run("Invalid role rejected before phase one", func(t *testing.T) {
		bad := input
		bad.Role = "superadmin"

		called := false
		provider := &fakeProvider{
			signUpFn: func(string, string) (*supabase.Subject, error) {
				called = true
				return nil, nil
			},
		}

		svc, _ := newTestService(provider, new(MockUserRepo))
		_, err := svc.SignUp(context.Background(), bad)
		require.Error(t, err)
		assert.False(t, called)
	})
}

func TestSignOut(t *testing.T) {
	t.Run("Local state idles even when remote revoke fails", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetByID", mock.Anything, "alice").
			Return(&domain.Profile{ID: "alice", Role: domain.RoleUser}, nil)

		provider := &fakeProvider{
			signInFn: func(email, password string) (*supabase.TokenResponse, error) {
				return goodToken("alice", email), nil
			},
			signOutErr: errors.New("provider down"),
		}

		svc, store := newTestService(provider, users)
		sid, _, err := svc.SignIn(context.Background(), "a@example.com", "pw")
		require.NoError(t, err)

		svc.SignOut(context.Background(), sid)

		assert.Equal(t, PhaseIdle, svc.StateFor(context.Background(), sid).Phase)
		_, err = store.Get(context.Background(), sid)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.Equal(t, 1, provider.signOutCalls)
	})
}

func TestTransparentRefresh(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, "alice").
		Return(&domain.Profile{ID: "alice", Role: domain.RoleUser}, nil)

	provider := &fakeProvider{
		refreshFn: func(refreshToken string) (*supabase.TokenResponse, error) {
			if refreshToken != "refresh-alice" {
				return nil, &supabase.AuthError{Status: http.StatusBadRequest, Message: "invalid"}
			}
			return goodToken("alice", "a@example.com"), nil
		},
	}

	svc, store := newTestService(provider, users)

	// Seed a session whose access token already lapsed.
	expired := domain.Session{
		ID:           "sid-expired",
		Subject:      "alice",
		AccessToken:  "stale",
		RefreshToken: "refresh-alice",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), expired))

	state := svc.StateFor(context.Background(), "sid-expired")
	require.True(t, state.Authenticated())

	// The stored session now carries the renewed token pair.
	sess, err := store.Get(context.Background(), "sid-expired")
	require.NoError(t, err)
	assert.Equal(t, "access-alice", sess.AccessToken)
}

func TestRefreshFailureFailsClosed(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, "alice").
		Return(&domain.Profile{ID: "alice", Role: domain.RoleUser}, nil)
	provider := &fakeProvider{}

	svc, store := newTestService(provider, users)

	expired := domain.Session{
		ID:           "sid-dead",
		Subject:      "alice",
		AccessToken:  "stale",
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), expired))

	state := svc.StateFor(context.Background(), "sid-dead")
	assert.Equal(t, PhaseIdle, state.Phase)

	_, err := store.Get(context.Background(), "sid-dead")
	assert.ErrorIs(t, err, ErrNoSession)
}
