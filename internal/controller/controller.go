// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/relay-tui/internal/gateway"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/store"
)

// Error variables for controller guard failures.
var (
	// ErrBusy indicates a send is already in flight.
	ErrBusy = errors.New("a send is already in flight")

	// ErrNoActiveConversation indicates no conversation is selected.
	ErrNoActiveConversation = errors.New("no active conversation")
)

// Store is the subset of the store client the controller uses.
type Store interface {
	ListConversations(ctx context.Context, token, userID string) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, token, userID, title string) (model.Conversation, error)
	RenameConversation(ctx context.Context, token, id, title string) (model.Conversation, error)
	DeleteConversation(ctx context.Context, token, id string) error
	ListMessages(ctx context.Context, token, conversationID string) ([]*model.Message, error)
	CreateMessage(ctx context.Context, token, conversationID string, role model.Role, content string) (*model.Message, error)
	DeleteMessages(ctx context.Context, token, conversationID string) error
	SignOut(ctx context.Context, token string) error
}

// Gateway is the subset of the gateway client the controller uses.
type Gateway interface {
	Send(ctx context.Context, token, conversationID string, turns []gateway.Turn) (*gateway.Response, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation session state. All reads go through
// Snapshot; all writes go through the operation methods. Safe for concurrent
// use.
type Controller struct {
	mu            sync.Mutex
	store         Store
	gateway       Gateway
	logger        *log.Logger
	session       *store.Session
	conversations []model.Conversation
	activeID      string
	messages      []*model.Message
	pending       bool
	listeners     []func()
}

// Snapshot is an immutable copy of the controller state for rendering.
type Snapshot struct {
	Conversations []model.Conversation
	ActiveID      string
	Messages      []*model.Message
	Pending       bool
	User          store.User
	Authenticated bool
}

// New creates a controller over the given store and gateway clients.
func New(st Store, gw Gateway, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store:   st,
		gateway: gw,
		logger:  logger,
	}
}

// SetSession installs the authenticated session. Pass nil to clear it.
func (c *Controller) SetSession(s *store.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.notify()
}

// Session returns the current session, or nil when signed out.
func (c *Controller) Session() *store.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Subscribe registers a listener called after every state change. Listeners
// must not call back into the controller synchronously.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ActiveID: c.activeID,
		Pending:  c.pending,
	}
	snap.Conversations = make([]model.Conversation, len(c.conversations))
	copy(snap.Conversations, c.conversations)
	snap.Messages = make([]*model.Message, len(c.messages))
	copy(snap.Messages, c.messages)
	if c.session != nil {
		snap.User = c.session.User
		snap.Authenticated = c.session.Valid()
	}
	return snap
}

// token returns the current bearer token, or an error when signed out.
func (c *Controller) token() (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Valid() {
		return "", "", store.ErrNotAuthenticated
	}
	return c.session.AccessToken, c.session.User.ID, nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// Bootstrap loads the conversation list and selects the newest conversation,
// if any. Called once after sign-in.
func (c *Controller) Bootstrap(ctx context.Context) error {
	token, userID, err := c.token()
	if err != nil {
		return err
	}

	convs, err := c.store.ListConversations(ctx, token, userID)
	if err != nil {
		return err
	}
	model.SortConversations(convs)

	c.mu.Lock()
	c.conversations = convs
	c.mu.Unlock()
	c.notify()

	if len(convs) > 0 {
		return c.SelectConversation(ctx, convs[0].ID)
	}
	return nil
}

// SelectConversation makes a conversation active and loads its messages.
func (c *Controller) SelectConversation(ctx context.Context, id string) error {
	token, _, err := c.token()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.activeID = id
	c.messages = nil
	c.mu.Unlock()
	c.notify()

	msgs, err := c.store.ListMessages(ctx, token, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	// A later selection wins; drop a stale load.
	if c.activeID == id {
		c.messages = msgs
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// CreateConversation creates a conversation with the placeholder title and
// makes it active. Without a valid session nothing is sent to the store.
func (c *Controller) CreateConversation(ctx context.Context) (model.Conversation, error) {
	token, userID, err := c.token()
	if err != nil {
		return model.Conversation{}, err
	}

	conv, err := c.store.CreateConversation(ctx, token, userID, model.DefaultTitle)
	if err != nil {
		return model.Conversation{}, err
	}

	c.mu.Lock()
	c.conversations = append([]model.Conversation{conv}, c.conversations...)
	c.activeID = conv.ID
	c.messages = nil
	c.mu.Unlock()
	c.notify()
	return conv, nil
}

// RenameConversation sets a conversation's title. A title that trims to
// empty is a no-op.
func (c *Controller) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	token, _, err := c.token()
	if err != nil {
		return err
	}

	updated, err := c.store.RenameConversation(ctx, token, id, title)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.conversations {
		if c.conversations[i].ID == id {
			c.conversations[i].Title = updated.Title
			break
		}
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// DeleteConversation removes a conversation and its messages. Messages go
// first: the store has no enforced cascade, and the reverse order could
// orphan them.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	token, _, err := c.token()
	if err != nil {
		return err
	}

	if err := c.store.DeleteMessages(ctx, token, id); err != nil {
		return err
	}
	if err := c.store.DeleteConversation(ctx, token, id); err != nil {
		return err
	}

	c.mu.Lock()
	remaining := c.conversations[:0]
	for _, conv := range c.conversations {
		if conv.ID != id {
			remaining = append(remaining, conv)
		}
	}
	c.conversations = remaining
	wasActive := c.activeID == id
	var next string
	if wasActive {
		c.activeID = ""
		c.messages = nil
		if len(remaining) > 0 {
			next = remaining[0].ID
		}
	}
	c.mu.Unlock()
	c.notify()

	if next != "" {
		return c.SelectConversation(ctx, next)
	}
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage sends a user message through the full pipeline: optimistic
// append, store persistence, title derivation, turn preparation, gateway
// call, and assistant reply persistence.
//
// The reply is bound to the conversation that was active when the send
// started; if the user switches away mid-flight, the reply is persisted but
// not spliced into the wrong view. Failures are logged and returned without
// rolling back optimistic state.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.activeID == "" {
		c.mu.Unlock()
		return ErrNoActiveConversation
	}
	if !c.session.Valid() {
		c.mu.Unlock()
		return store.ErrNotAuthenticated
	}

	token := c.session.AccessToken
	convID := c.activeID
	userMsg := model.NewUserMessage(content)
	c.messages = append(c.messages, userMsg)
	// The turn window is fixed here, while the list still belongs to this
	// conversation; a mid-flight switch must not leak another conversation's
	// messages into it.
	window := make([]*model.Message, len(c.messages))
	copy(window, c.messages)
	c.pending = true
	c.mu.Unlock()
	c.notify()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
		c.notify()
	}()

	// Persist the user message and replace the temporary id with the
	// store-assigned one.
	stored, err := c.store.CreateMessage(ctx, token, convID, model.RoleUser, content)
	if err != nil {
		c.logger.Printf("send: persisting user message failed: %v", err)
		return err
	}
	c.mu.Lock()
	if c.activeID == convID {
		for i := range c.messages {
			if c.messages[i].ID == userMsg.ID {
				c.messages[i] = stored
				break
			}
		}
	}
	c.mu.Unlock()
	c.notify()

	c.maybeDeriveTitle(ctx, token, convID, content)

	resp, err := c.gateway.Send(ctx, token, convID, gateway.PrepareTurns(window))
	if err != nil {
		c.logger.Printf("send: gateway call failed: %v", err)
		return err
	}

	// A reply the store never accepted is not shown either.
	persisted, err := c.store.CreateMessage(ctx, token, convID, model.RoleAssistant, resp.Message)
	if err != nil {
		c.logger.Printf("send: persisting assistant reply failed: %v", err)
		return err
	}

	c.mu.Lock()
	if c.activeID == convID {
		c.messages = append(c.messages, persisted)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// maybeDeriveTitle replaces the placeholder title with one derived from the
// first message. Best-effort: a failure leaves the placeholder and is only
// logged.
func (c *Controller) maybeDeriveTitle(ctx context.Context, token, convID, content string) {
	c.mu.Lock()
	needsTitle := false
	for i := range c.conversations {
		if c.conversations[i].ID == convID {
			needsTitle = c.conversations[i].HasDefaultTitle()
			break
		}
	}
	c.mu.Unlock()
	if !needsTitle {
		return
	}

	title := model.TitleFromContent(content)
	updated, err := c.store.RenameConversation(ctx, token, convID, title)
	if err != nil {
		c.logger.Printf("send: deriving title failed: %v", err)
		return
	}

	c.mu.Lock()
	for i := range c.conversations {
		if c.conversations[i].ID == convID {
			c.conversations[i].Title = updated.Title
			break
		}
	}
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// LOGOUT
// =============================================================================

// Logout revokes the session's token and clears all local state. Local state
// is cleared even when revocation fails: an unreachable store must not trap
// the user in a signed-in view.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	var token string
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()

	var err error
	if token != "" {
		if err = c.store.SignOut(ctx, token); err != nil {
			c.logger.Printf("logout: revoking token failed: %v", err)
		}
	}

	c.mu.Lock()
	c.session = nil
	c.conversations = nil
	c.activeID = ""
	c.messages = nil
	c.pending = false
	c.mu.Unlock()
	c.notify()
	return err
}
