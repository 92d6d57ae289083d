// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "claude-3-sonnet-20240229").WithHTTPClient(srv.Client())
}

func TestSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody sendRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"message":"Hello there.","model":"claude-3-sonnet-20240229","id":"resp-1"}`))
	})

	turns := []Turn{
		{Role: "user", Content: "hi"},
	}
	resp, err := client.Send(context.Background(), "tok-1", "c1", turns)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/claude" {
		t.Errorf("path = %q, want /claude", gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotBody.ConversationID != "c1" {
		t.Errorf("conversation_id = %q, want c1", gotBody.ConversationID)
	}
	if gotBody.Model != "claude-3-sonnet-20240229" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "hi" {
		t.Errorf("messages = %v", gotBody.Messages)
	}

	if resp.Message != "Hello there." {
		t.Errorf("Message = %q", resp.Message)
	}
	if resp.ID != "resp-1" {
		t.Errorf("ID = %q, want resp-1", resp.ID)
	}
}

func TestSend_ErrorResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream model unavailable"}`))
	})

	_, err := client.Send(context.Background(), "tok", "c1", nil)
	if err == nil {
		t.Fatal("expected error for 502 response")
	}

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("error type = %T, want *GatewayError", err)
	}
	if gwErr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", gwErr.Status)
	}
	if gwErr.Message != "upstream model unavailable" {
		t.Errorf("Message = %q", gwErr.Message)
	}
}

func TestSend_EmptyReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"","model":"m","id":"x"}`))
	})

	_, err := client.Send(context.Background(), "tok", "c1", nil)
	if !errors.Is(err, ErrEmptyReply) {
		t.Errorf("err = %v, want ErrEmptyReply", err)
	}
}

func TestWithModel(t *testing.T) {
	var gotModel string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body sendRequest
		json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Write([]byte(`{"message":"ok","model":"claude-3-opus-20240229","id":"y"}`))
	})

	client.WithModel("claude-3-opus-20240229")
	if _, err := client.Send(context.Background(), "tok", "c1", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotModel != "claude-3-opus-20240229" {
		t.Errorf("model = %q, want the overridden model", gotModel)
	}
}
