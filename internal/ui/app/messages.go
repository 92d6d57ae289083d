// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea messages exchanged between controller
// commands and the update loop, and the commands that produce them.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/store"
)

// commandTimeout bounds every controller call issued from the UI.
const commandTimeout = 2 * time.Minute

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// StateChangedMsg signals that the controller state changed and the view
// should re-render. Sent from the controller's listener via Program.Send.
type StateChangedMsg struct{}

// authDoneMsg carries the outcome of a sign-in or sign-up attempt.
type authDoneMsg struct {
	session *store.Session
	err     error
}

// bootstrapDoneMsg carries the outcome of the initial conversation load.
type bootstrapDoneMsg struct{ err error }

// sendDoneMsg carries the outcome of a message send.
type sendDoneMsg struct{ err error }

// convOpDoneMsg carries the outcome of a conversation create, select,
// rename, or delete.
type convOpDoneMsg struct{ err error }

// logoutDoneMsg signals that logout finished.
type logoutDoneMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		session, err := m.auth.SignIn(ctx, email, password)
		return authDoneMsg{session: session, err: err}
	}
}

func (m *Model) signUpCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		session, err := m.auth.SignUp(ctx, email, password)
		return authDoneMsg{session: session, err: err}
	}
}

func (m *Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return bootstrapDoneMsg{err: m.ctrl.Bootstrap(ctx)}
	}
}

func (m *Model) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return sendDoneMsg{err: m.ctrl.SendMessage(ctx, content)}
	}
}

func (m *Model) selectCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return convOpDoneMsg{err: m.ctrl.SelectConversation(ctx, id)}
	}
}

func (m *Model) newConvCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_, err := m.ctrl.CreateConversation(ctx)
		return convOpDoneMsg{err: err}
	}
}

func (m *Model) deleteConvCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return convOpDoneMsg{err: m.ctrl.DeleteConversation(ctx, id)}
	}
}

func (m *Model) renameConvCmd(id, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return convOpDoneMsg{err: m.ctrl.RenameConversation(ctx, id, title)}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := m.ctrl.Logout(ctx); err != nil {
			m.logger.Printf("logout: %v", err)
		}
		if err := store.ClearSession(); err != nil {
			m.logger.Printf("logout: clearing session file: %v", err)
		}
		return logoutDoneMsg{}
	}
}
