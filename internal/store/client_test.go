// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/relay-tui/internal/model"
)

// newTestClient returns a client pointed at a test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key").WithHTTPClient(srv.Client())
}

func TestListConversations(t *testing.T) {
	var gotPath, gotOrder, gotFilter, gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOrder = r.URL.Query().Get("order")
		gotFilter = r.URL.Query().Get("user_id")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"c2","user_id":"u1","title":"Newer","created_at":"2025-03-02T10:00:00Z"},
			{"id":"c1","user_id":"u1","title":"Older","created_at":"2025-03-01T10:00:00Z"}
		]`))
	})

	convs, err := client.ListConversations(context.Background(), "tok-123", "u1")
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}

	if gotPath != "/rest/v1/conversations" {
		t.Errorf("path = %q, want /rest/v1/conversations", gotPath)
	}
	if gotOrder != "created_at.desc" {
		t.Errorf("order = %q, want created_at.desc", gotOrder)
	}
	if gotFilter != "eq.u1" {
		t.Errorf("user_id filter = %q, want eq.u1", gotFilter)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}

	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	if convs[0].ID != "c2" || convs[1].ID != "c1" {
		t.Errorf("order not preserved: got %q, %q", convs[0].ID, convs[1].ID)
	}
	if convs[0].Title != "Newer" {
		t.Errorf("Title = %q, want Newer", convs[0].Title)
	}
}

func TestCreateConversation(t *testing.T) {
	var gotPrefer string
	var gotBody []map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"id":"c9","user_id":"u1","title":"New Conversation","created_at":"2025-03-02T10:00:00Z"}]`))
	})

	conv, err := client.CreateConversation(context.Background(), "tok", "u1", "New Conversation")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	if gotPrefer != "return=representation" {
		t.Errorf("Prefer = %q, want return=representation", gotPrefer)
	}
	if len(gotBody) != 1 || gotBody[0]["title"] != "New Conversation" || gotBody[0]["user_id"] != "u1" {
		t.Errorf("request body = %v", gotBody)
	}
	if conv.ID != "c9" {
		t.Errorf("ID = %q, want c9 (server-assigned)", conv.ID)
	}
}

func TestRenameConversation(t *testing.T) {
	var gotMethod, gotFilter string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		w.Write([]byte(`[{"id":"c1","user_id":"u1","title":"How do I fix this...","created_at":"2025-03-01T10:00:00Z"}]`))
	})

	conv, err := client.RenameConversation(context.Background(), "tok", "c1", "How do I fix this...")
	if err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", gotMethod)
	}
	if gotFilter != "eq.c1" {
		t.Errorf("id filter = %q, want eq.c1", gotFilter)
	}
	if conv.Title != "How do I fix this..." {
		t.Errorf("Title = %q", conv.Title)
	}
}

func TestListMessages_AscendingOrder(t *testing.T) {
	var gotOrder string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		w.Write([]byte(`[
			{"id":"m1","conversation_id":"c1","role":"user","content":"hi","created_at":"2025-03-01T10:00:00Z"},
			{"id":"m2","conversation_id":"c1","role":"assistant","content":"hello","created_at":"2025-03-01T10:00:05Z"}
		]`))
	})

	msgs, err := client.ListMessages(context.Background(), "tok", "c1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}

	if gotOrder != "created_at.asc" {
		t.Errorf("order = %q, want created_at.asc", gotOrder)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].IsTemp() {
		t.Error("store-loaded message should not be temporary")
	}
}

func TestCreateMessage(t *testing.T) {
	var gotBody []map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[{"id":"m7","conversation_id":"c1","role":"user","content":"hi","created_at":"2025-03-01T10:00:00Z"}]`))
	})

	msg, err := client.CreateMessage(context.Background(), "tok", "c1", model.RoleUser, "hi")
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if gotBody[0]["conversation_id"] != "c1" || gotBody[0]["role"] != "user" || gotBody[0]["content"] != "hi" {
		t.Errorf("request body = %v", gotBody)
	}
	if msg.ID != "m7" {
		t.Errorf("ID = %q, want m7", msg.ID)
	}
}

func TestDeleteMessages(t *testing.T) {
	var gotMethod, gotPath, gotFilter string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("conversation_id")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteMessages(context.Background(), "tok", "c1"); err != nil {
		t.Fatalf("DeleteMessages failed: %v", err)
	}

	if gotMethod != http.MethodDelete || gotPath != "/rest/v1/messages" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotFilter != "eq.c1" {
		t.Errorf("conversation_id filter = %q, want eq.c1", gotFilter)
	}
}

func TestAnonKeyFallback(t *testing.T) {
	var gotAuth, gotKey string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("apikey")
		w.Write([]byte(`[]`))
	})

	if _, err := client.ListConversations(context.Background(), "", "u1"); err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}

	if gotKey != "anon-key" {
		t.Errorf("apikey = %q, want anon-key", gotKey)
	}
	if gotAuth != "Bearer anon-key" {
		t.Errorf("Authorization = %q, want anon key fallback", gotAuth)
	}
}

func TestErrorMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired"}`))
	})

	_, err := client.ListConversations(context.Background(), "stale", "u1")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("error type = %T, want *StoreError", err)
	}
	if storeErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", storeErr.Status)
	}
	if storeErr.Message != "JWT expired" {
		t.Errorf("Message = %q, want JWT expired", storeErr.Message)
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Error("401 should unwrap to ErrNotAuthenticated")
	}
}
