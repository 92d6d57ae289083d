// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"net/http"
	"time"
)

// =============================================================================
// SESSION TYPES
// =============================================================================

// User identifies an authenticated user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated user session. The access token is the bearer
// credential for both the store and the model gateway.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Valid reports whether the session carries a usable, unexpired token.
func (s *Session) Valid() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(s.ExpiresAt)
}

// tokenResponse is the wire shape of the auth token and signup endpoints.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

func (r tokenResponse) toSession() *Session {
	s := &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		User:         r.User,
	}
	if r.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return s
}

// =============================================================================
// AUTHENTICATION OPERATIONS
// =============================================================================

// credentials is the request body for password sign-in and sign-up.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates with email and password and returns a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	requestURL := c.baseURL + "/auth/v1/token?grant_type=password"

	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, requestURL, "", credentials{Email: email, Password: password}, &resp, nil)
	if err != nil {
		return nil, err
	}
	return resp.toSession(), nil
}

// SignUp registers a new user. Depending on the project's email confirmation
// setting the returned session may carry no access token yet; callers should
// check Session.Valid before using it.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	requestURL := c.baseURL + "/auth/v1/signup"

	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, requestURL, "", credentials{Email: email, Password: password}, &resp, nil)
	if err != nil {
		return nil, err
	}
	return resp.toSession(), nil
}

// SignOut revokes the session's token. The caller clears local state
// regardless of the outcome.
func (c *Client) SignOut(ctx context.Context, token string) error {
	requestURL := c.baseURL + "/auth/v1/logout"
	return c.do(ctx, http.MethodPost, requestURL, token, nil, nil, nil)
}

// CurrentUser fetches the user identified by the given token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	requestURL := c.baseURL + "/auth/v1/user"

	var user User
	if err := c.do(ctx, http.MethodGet, requestURL, token, nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}
