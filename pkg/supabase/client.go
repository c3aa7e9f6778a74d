package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Supabase GoTrue auth API over plain HTTP.
// Credential verification, session issuance, and subject lifecycle are
// all delegated here; the application never compares passwords itself.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string // service-role key, required for admin endpoints
	http       *http.Client
}

func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Subject is the auth collaborator's identity record, distinct from
// the application's profile row.
type Subject struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse is the GoTrue password-grant response.
type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	User         Subject `json:"user"`
}

// AuthError is a typed GoTrue rejection. Expected rejections (wrong
// password, unconfirmed email) carry 4xx status codes.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
}

// InvalidCredentials reports whether the error is the expected
// bad-password / unknown-account rejection.
func (e *AuthError) InvalidCredentials() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized ||
		e.Status == http.StatusUnprocessableEntity
}

// SignInWithPassword performs the password grant:
// POST /auth/v1/token?grant_type=password
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp creates a new auth subject:
// POST /auth/v1/signup
// Metadata is stored on the subject as user_metadata; the profile row
// is the application's concern and is written separately.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Subject, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	// GoTrue returns the subject directly when confirmation is off and
	// a {user: ...} wrapper when a session is issued; accept both.
	var out struct {
		Subject
		User *Subject `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", c.anonKey, "", body, &out); err != nil {
		return nil, err
	}
	if out.User != nil && out.User.ID != "" {
		return out.User, nil
	}
	return &out.Subject, nil
}

// SignOut revokes the session's refresh tokens:
// POST /auth/v1/logout
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", c.anonKey, accessToken, nil, nil)
}

// RefreshSession exchanges a refresh token for a new token pair:
// POST /auth/v1/token?grant_type=refresh_token
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := map[string]interface{}{
		"refresh_token": refreshToken,
	}

	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", c.anonKey, "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches the subject behind an access token:
// GET /auth/v1/user
func (c *Client) GetUser(ctx context.Context, accessToken string) (*Subject, error) {
	var out Subject
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", c.anonKey, accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an auth subject. Requires the service-role key:
// DELETE /auth/v1/admin/users/{id}
func (c *Client) DeleteUser(ctx context.Context, subjectID string) error {
	if c.serviceKey == "" {
		return &AuthError{Status: http.StatusForbidden, Message: "service-role key not configured"}
	}
	path := "/auth/v1/admin/users/" + subjectID
	return c.do(ctx, http.MethodDelete, path, c.serviceKey, c.serviceKey, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, apikey, bearer string, body, out interface{}) error {
	var payload *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewBuffer(jsonBody)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apikey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("supabase: decode response: %w", err)
		}
	}
	return nil
}

// decodeError extracts GoTrue's message, which shows up under
// different keys depending on the endpoint.
func decodeError(resp *http.Response) error {
	var errResp map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)

	msg := "request failed"
	for _, key := range []string{"msg", "message", "error_description", "error"} {
		if m, ok := errResp[key].(string); ok && m != "" {
			msg = m
			break
		}
	}

	return &AuthError{Status: resp.StatusCode, Message: msg}
}
