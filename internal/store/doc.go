// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the remote conversation store client for relay.
//
// The store is a hosted Supabase project: authentication goes through the
// GoTrue endpoints under /auth/v1, and the "conversations" and "messages"
// tables are reached through the PostgREST endpoints under /rest/v1. The
// client is pure request/response and keeps no local state; the session is
// held by the caller and passed into each call.
//
// # Key Types
//
//   - Client: HTTP client for the auth and data endpoints
//   - Session: an authenticated user session (bearer token + user identity)
//   - StoreError: typed error carrying the HTTP status of a failed call
//
// # Usage
//
// Sign in and list conversations:
//
//	client := store.NewClient(cfg.Store.URL, cfg.Store.AnonKey)
//	session, err := client.SignIn(ctx, email, password)
//	convs, err := client.ListConversations(ctx, session.AccessToken, session.User.ID)
//
// # Security
//
// The anon key and access tokens are sent as headers and never logged. The
// persisted session file is written atomically with 0600 permissions.
package store
