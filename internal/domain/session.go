package domain

import "time"

// Session is the application's read-only projection of the auth
// collaborator's session. The provider owns the lifecycle; we keep the
// token pair server-side keyed by an opaque session ID and never trust
// anything client-writable for authorization.
type Session struct {
	ID           string    `json:"id"`      // opaque, cookie value
	Subject      string    `json:"subject"` // auth subject UUID
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is past its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
