// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/relay-tui/internal/model"
)

// Configuration constants for the store client.
const (
	// DefaultTimeout is the default timeout for store requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// PERFORMANCE: Shared HTTP client with connection pooling for all store
// requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common store errors.
var (
	// ErrNotAuthenticated indicates the call had no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// StoreError represents an error response from the store.
type StoreError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("store error (HTTP %d)", e.Status)
}

// Unwrap maps authentication failures onto ErrNotAuthenticated so callers
// can use errors.Is.
func (e *StoreError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	return nil
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the hosted conversation store. It is stateless:
// every call carries the bearer token of the current session.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a store client for the given project URL and anon key.
func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		anonKey:    strings.TrimSpace(anonKey),
		httpClient: sharedHTTPClient,
	}
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// restURL builds a PostgREST endpoint URL for a table with query parameters.
func (c *Client) restURL(table string, params url.Values) string {
	return c.baseURL + "/rest/v1/" + table + "?" + params.Encode()
}

// setHeaders sets the required headers for a store request. The anon key
// identifies the project; the bearer token identifies the user. An empty
// token falls back to the anon key, matching the hosted store's convention.
func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("apikey", c.anonKey)
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// storeErrorResponse is the error shape returned by both the auth and data
// endpoints.
type storeErrorResponse struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// handleErrorResponse converts a non-2xx store response into a typed error.
func handleErrorResponse(statusCode int, body []byte) error {
	var errResp storeErrorResponse
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			message = errResp.Message
		case errResp.Msg != "":
			message = errResp.Msg
		case errResp.ErrorDescription != "":
			message = errResp.ErrorDescription
		}
	}
	return &StoreError{Status: statusCode, Message: message}
}

// do performs a store request and decodes the response into out (if out is
// non-nil). The request body (if non-nil) is JSON encoded. No automatic
// retry: transport failures abort the operation.
func (c *Client) do(ctx context.Context, method, requestURL, token string, reqBody, out interface{}, headers map[string]string) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req, token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleErrorResponse(resp.StatusCode, body)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// conversationRow is the persisted shape of a conversation.
type conversationRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func (r conversationRow) toModel() model.Conversation {
	return model.Conversation{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
	}
}

// messageRow is the persisted shape of a message.
type messageRow struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r messageRow) toModel() *model.Message {
	return &model.Message{
		ID:        r.ID,
		Role:      model.Role(r.Role),
		Content:   r.Content,
		Timestamp: r.CreatedAt,
	}
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations returns all conversations for a user, newest first.
func (c *Client) ListConversations(ctx context.Context, token, userID string) ([]model.Conversation, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("user_id", "eq."+userID)
	params.Set("order", "created_at.desc")

	var rows []conversationRow
	if err := c.do(ctx, http.MethodGet, c.restURL("conversations", params), token, nil, &rows, nil); err != nil {
		return nil, err
	}

	convs := make([]model.Conversation, 0, len(rows))
	for _, row := range rows {
		convs = append(convs, row.toModel())
	}
	return convs, nil
}

// CreateConversation creates a conversation with the given title and returns
// the stored row, including the server-assigned id.
func (c *Client) CreateConversation(ctx context.Context, token, userID, title string) (model.Conversation, error) {
	params := url.Values{}
	params.Set("select", "*")

	insert := []map[string]string{{"user_id": userID, "title": title}}
	headers := map[string]string{"Prefer": "return=representation"}

	var rows []conversationRow
	if err := c.do(ctx, http.MethodPost, c.restURL("conversations", params), token, insert, &rows, headers); err != nil {
		return model.Conversation{}, err
	}
	if len(rows) == 0 {
		return model.Conversation{}, ErrNotFound
	}
	return rows[0].toModel(), nil
}

// RenameConversation updates a conversation's title and returns the updated
// row.
func (c *Client) RenameConversation(ctx context.Context, token, id, title string) (model.Conversation, error) {
	params := url.Values{}
	params.Set("id", "eq."+id)

	update := map[string]string{"title": title}
	headers := map[string]string{"Prefer": "return=representation"}

	var rows []conversationRow
	if err := c.do(ctx, http.MethodPatch, c.restURL("conversations", params), token, update, &rows, headers); err != nil {
		return model.Conversation{}, err
	}
	if len(rows) == 0 {
		return model.Conversation{}, ErrNotFound
	}
	return rows[0].toModel(), nil
}

// DeleteConversation deletes a conversation row. The caller must delete the
// conversation's messages first: the store has no enforced cascade.
func (c *Client) DeleteConversation(ctx context.Context, token, id string) error {
	params := url.Values{}
	params.Set("id", "eq."+id)
	return c.do(ctx, http.MethodDelete, c.restURL("conversations", params), token, nil, nil, nil)
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// ListMessages returns all messages of a conversation in creation order.
func (c *Client) ListMessages(ctx context.Context, token, conversationID string) ([]*model.Message, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("conversation_id", "eq."+conversationID)
	params.Set("order", "created_at.asc")

	var rows []messageRow
	if err := c.do(ctx, http.MethodGet, c.restURL("messages", params), token, nil, &rows, nil); err != nil {
		return nil, err
	}

	msgs := make([]*model.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toModel())
	}
	return msgs, nil
}

// CreateMessage persists a message and returns the stored row with the
// server-assigned id. Temporary client ids are never sent to the store.
func (c *Client) CreateMessage(ctx context.Context, token, conversationID string, role model.Role, content string) (*model.Message, error) {
	params := url.Values{}
	params.Set("select", "*")

	insert := []map[string]string{{
		"conversation_id": conversationID,
		"role":            role.String(),
		"content":         content,
	}}
	headers := map[string]string{"Prefer": "return=representation"}

	var rows []messageRow
	if err := c.do(ctx, http.MethodPost, c.restURL("messages", params), token, insert, &rows, headers); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

// DeleteMessages deletes all messages belonging to a conversation.
func (c *Client) DeleteMessages(ctx context.Context, token, conversationID string) error {
	params := url.Values{}
	params.Set("conversation_id", "eq."+conversationID)
	return c.do(ctx, http.MethodDelete, c.restURL("messages", params), token, nil, nil, nil)
}
