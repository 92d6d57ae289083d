// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestSignIn(t *testing.T) {
	var gotPath, gotGrant string
	var gotCreds map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotGrant = r.URL.Query().Get("grant_type")
		json.NewDecoder(r.Body).Decode(&gotCreds)
		w.Write([]byte(`{
			"access_token": "at-1",
			"refresh_token": "rt-1",
			"expires_in": 3600,
			"user": {"id": "u1", "email": "a@b.c"}
		}`))
	})

	session, err := client.SignIn(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if gotPath != "/auth/v1/token" {
		t.Errorf("path = %q, want /auth/v1/token", gotPath)
	}
	if gotGrant != "password" {
		t.Errorf("grant_type = %q, want password", gotGrant)
	}
	if gotCreds["email"] != "a@b.c" || gotCreds["password"] != "secret" {
		t.Errorf("credentials = %v", gotCreds)
	}

	if session.AccessToken != "at-1" || session.RefreshToken != "rt-1" {
		t.Errorf("tokens = %q, %q", session.AccessToken, session.RefreshToken)
	}
	if session.User.ID != "u1" || session.User.Email != "a@b.c" {
		t.Errorf("user = %+v", session.User)
	}
	if !session.Valid() {
		t.Error("fresh session should be valid")
	}
	if session.ExpiresAt.Before(time.Now().Add(30 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want roughly an hour out", session.ExpiresAt)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignIn(context.Background(), "a@b.c", "wrong")
	if err == nil {
		t.Fatal("expected error for rejected credentials")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("error type = %T, want *StoreError", err)
	}
	if storeErr.Message != "Invalid login credentials" {
		t.Errorf("Message = %q", storeErr.Message)
	}
}

func TestSignUp_PendingConfirmation(t *testing.T) {
	// With email confirmation on, signup returns a user but no token.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("path = %q, want /auth/v1/signup", r.URL.Path)
		}
		w.Write([]byte(`{"user": {"id": "u2", "email": "new@b.c"}}`))
	})

	session, err := client.SignUp(context.Background(), "new@b.c", "secret")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if session.User.ID != "u2" {
		t.Errorf("user id = %q, want u2", session.User.ID)
	}
	if session.Valid() {
		t.Error("tokenless signup session should not be valid")
	}
}

func TestSignOut(t *testing.T) {
	var gotPath, gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.SignOut(context.Background(), "at-1"); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if gotPath != "/auth/v1/logout" {
		t.Errorf("path = %q, want /auth/v1/logout", gotPath)
	}
	if gotAuth != "Bearer at-1" {
		t.Errorf("Authorization = %q, want Bearer at-1", gotAuth)
	}
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %q, want /auth/v1/user", r.URL.Path)
		}
		w.Write([]byte(`{"id": "u1", "email": "a@b.c"}`))
	})

	user, err := client.CurrentUser(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.ID != "u1" || user.Email != "a@b.c" {
		t.Errorf("user = %+v", user)
	}
}

func TestSessionValid(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{"nil session", nil, false},
		{"no token", &Session{}, false},
		{"no expiry", &Session{AccessToken: "at"}, true},
		{"unexpired", &Session{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}, true},
		{"expired", &Session{AccessToken: "at", ExpiresAt: time.Now().Add(-time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
