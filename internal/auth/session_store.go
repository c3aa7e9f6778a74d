package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/pkg/jwks"

	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when no usable session exists for the ID.
// Covers absent, invalid, and unverifiable sessions alike: verification
// failures fail closed into "unauthenticated", never a distinct state.
var ErrNoSession = errors.New("auth: no session")

// ErrSessionExpired is returned with the stored session when only its
// access token has lapsed. The caller may refresh it; the session must
// not be treated as valid as-is.
var ErrSessionExpired = errors.New("auth: session expired")

// ChangeListener receives session transitions. A nil session means
// signed out. Exactly one call fires per transition; listeners must not
// assume any ordering relative to concurrent readers.
type ChangeListener func(sid string, sess *domain.Session)

// SessionStore persists the server-side session representation.
type SessionStore interface {
	Get(ctx context.Context, sid string) (domain.Session, error)
	Save(ctx context.Context, sess domain.Session) error
	// Clear invalidates the local session immediately, independent of
	// any remote sign-out completing.
	Clear(ctx context.Context, sid string) error
	Subscribe(fn ChangeListener)
}

// TokenVerifier checks access-token signatures locally: HS256 against
// the shared Supabase JWT secret, RS256 against the provider's JWKS.
type TokenVerifier struct {
	secret string
	keys   *jwks.Provider
}

func NewTokenVerifier(secret string, keys *jwks.Provider) *TokenVerifier {
	return &TokenVerifier{secret: secret, keys: keys}
}

// Verify validates signature and expiry and returns the subject claim.
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if v.secret == "" {
				return nil, fmt.Errorf("HS256 token received but no JWT secret configured")
			}
			return []byte(v.secret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			if v.keys == nil {
				return nil, fmt.Errorf("RS256 token received but no JWKS provider configured")
			}
			return v.keys.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

type RedisSessionStore struct {
	client   *goredis.Client
	verifier *TokenVerifier
	prefix   string
	ttl      time.Duration

	mu        sync.RWMutex
	listeners []ChangeListener
}

func NewRedisSessionStore(client *goredis.Client, verifier *TokenVerifier, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{
		client:   client,
		verifier: verifier,
		prefix:   "session:",
		ttl:      ttl,
	}
}

func (s *RedisSessionStore) Subscribe(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *RedisSessionStore) notify(sid string, sess *domain.Session) {
	s.mu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(sid, sess)
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, sid string) (domain.Session, error) {
	if sid == "" {
		return domain.Session{}, ErrNoSession
	}

	data, err := s.client.Get(ctx, s.prefix+sid).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Session{}, ErrNoSession
		}
		// Store unreachable: fail closed, not a distinct error state.
		return domain.Session{}, ErrNoSession
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return domain.Session{}, ErrNoSession
	}

	if sess.Expired() {
		return sess, ErrSessionExpired
	}

	if s.verifier != nil {
		sub, err := s.verifier.Verify(sess.AccessToken)
		if err != nil {
			// A session whose token no longer verifies is worthless;
			// drop it so the next read is a clean miss.
			_ = s.dropSilently(ctx, sid)
			return domain.Session{}, ErrNoSession
		}
		if sub != sess.Subject {
			_ = s.dropSilently(ctx, sid)
			return domain.Session{}, ErrNoSession
		}
	}

	return sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess domain.Session) error {
	if sess.ID == "" {
		return errors.New("auth: session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("auth: marshal session: %w", err)
	}

	// The cookie-session TTL outlives the access token so refresh
	// tokens remain reachable; the token expiry is checked on read.
	if err := s.client.Set(ctx, s.prefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}

	s.notify(sess.ID, &sess)
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	err := s.client.Del(ctx, s.prefix+sid).Err()
	// Local invalidation is optimistic: listeners hear the sign-out
	// even if the delete failed, since readers fail closed anyway.
	s.notify(sid, nil)
	return err
}

// dropSilently removes a broken session without emitting a change
// event; the caller already reports it as absent.
func (s *RedisSessionStore) dropSilently(ctx context.Context, sid string) error {
	return s.client.Del(ctx, s.prefix+sid).Err()
}
