// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the gateway client.
const (
	// DefaultTimeout is the default timeout for gateway requests. Model
	// completions can take a while, so this is longer than the store timeout.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// PERFORMANCE: Shared HTTP client with connection pooling for all gateway
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

// ErrEmptyReply indicates the gateway returned a response with no message.
var ErrEmptyReply = errors.New("gateway returned an empty reply")

// GatewayError represents an error response from the model gateway.
type GatewayError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (HTTP %d)", e.Status)
}

// Client is a client for the model gateway.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given base URL and model name.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: sharedHTTPClient,
	}
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithModel sets the model name used for subsequent sends.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// Model returns the model name the client sends with each request.
func (c *Client) Model() string {
	return c.model
}

// sendRequest is the wire shape of a completion request.
type sendRequest struct {
	ConversationID string `json:"conversation_id"`
	Messages       []Turn `json:"messages"`
	Model          string `json:"model"`
}

// Response is the gateway's reply to a completion request.
type Response struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	ID      string `json:"id"`
}

// gatewayErrorResponse is the error shape returned by the gateway.
type gatewayErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Send posts the prepared turn window to the gateway and returns the
// assistant's reply. Sends are not retried: the caller surfaces failures to
// the user, who decides whether to resend.
func (c *Client) Send(ctx context.Context, token, conversationID string, turns []Turn) (*Response, error) {
	reqBody := sendRequest{
		ConversationID: conversationID,
		Messages:       turns,
		Model:          c.model,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := c.baseURL + "/claude"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// SECURITY: Response size limit prevents memory exhaustion.
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp gatewayErrorResponse
		message := ""
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				message = errResp.Error
			} else if errResp.Message != "" {
				message = errResp.Message
			}
		}
		return nil, &GatewayError{Status: resp.StatusCode, Message: message}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Message == "" {
		return nil, ErrEmptyReply
	}
	return &out, nil
}
