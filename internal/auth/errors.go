package auth

import (
	"errors"
	"fmt"
)

// Kind classifies auth failures. Expected conditions (bad password, no
// session) are returned as typed errors, never panics, so callers can
// branch without string matching.
type Kind int

const (
	// KindUnauthenticated means no session, an expired session, or a
	// session that could not be verified. Verification failures fail
	// closed into this kind: a stale session is never treated as valid.
	KindUnauthenticated Kind = iota
	// KindInvalidCredentials is the expected sign-in rejection. It is
	// user-facing and not logged as an error.
	KindInvalidCredentials
	// KindNotFound means the session is valid but no profile row
	// matches its subject: partial registration or a deleted profile.
	KindNotFound
	// KindPartialRegistration means the auth subject was created but
	// the profile insert failed. The caller decides whether to retry
	// phase two or clean up; nothing is retried automatically.
	KindPartialRegistration
	// KindUnavailable is a transport failure or timeout talking to
	// either collaborator.
	KindUnavailable
	// KindUnauthorized means authenticated but the wrong role for the
	// requested resource.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNotFound:
		return "not_found"
	case KindPartialRegistration:
		return "partial_registration"
	case KindUnavailable:
		return "unavailable"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error

	// SubjectID is set on KindPartialRegistration so the caller can
	// retry phase two against the already-created subject.
	SubjectID string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated() *Error {
	return newError(KindUnauthenticated, "Not authenticated", nil)
}

func InvalidCredentials(message string) *Error {
	if message == "" {
		message = "Invalid email or password"
	}
	return newError(KindInvalidCredentials, message, nil)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, message, nil)
}

func PartialRegistration(subjectID string, err error) *Error {
	e := newError(KindPartialRegistration, "Account created but profile setup failed", err)
	e.SubjectID = subjectID
	return e
}

func Unavailable(err error) *Error {
	return newError(KindUnavailable, "Authentication service unavailable", err)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, message, nil)
}

// KindOf extracts the Kind from an error chain. Unknown errors map to
// KindUnavailable so nothing unexpected is ever treated as authenticated.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnavailable
}
