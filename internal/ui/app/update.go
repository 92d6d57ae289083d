// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/store"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		if !m.ready {
			m.viewport = viewport.New(m.chatWidth(), m.chatHeight())
			m.ready = true
		} else {
			m.viewport.Width = m.chatWidth()
			m.viewport.Height = m.chatHeight()
		}
		m.refreshViewport(true)
		return m, nil

	case StateChangedMsg:
		m.refreshViewport(true)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	}

	if m.screen == screenAuth {
		return m.updateAuth(msg)
	}
	return m.updateChat(msg)
}

// =============================================================================
// CHAT UPDATE
// =============================================================================

func (m *Model) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		snap := m.ctrl.Snapshot()

		switch {
		case key.Matches(msg, m.keys.Submit):
			value := strings.TrimSpace(m.input.Value())
			if m.renaming {
				m.renaming = false
				m.input.Reset()
				m.input.Placeholder = "Type a message..."
				if value != "" && snap.ActiveID != "" {
					return m, m.renameConvCmd(snap.ActiveID, value)
				}
				return m, nil
			}
			if value == "" {
				return m, nil
			}
			if snap.Pending {
				m.chatErr = "still waiting on the previous reply"
				return m, nil
			}
			m.chatErr = ""
			m.input.Reset()
			if snap.ActiveID == "" {
				// No conversation yet: create one, then send.
				return m, tea.Sequence(m.newConvCmd(), m.sendCmd(value))
			}
			return m, m.sendCmd(value)

		case key.Matches(msg, m.keys.Cancel):
			if m.renaming {
				m.renaming = false
				m.input.Reset()
				m.input.Placeholder = "Type a message..."
			}
			m.chatErr = ""
			return m, nil

		case key.Matches(msg, m.keys.NewConv):
			return m, m.newConvCmd()

		case key.Matches(msg, m.keys.DelConv):
			if snap.ActiveID != "" {
				return m, m.deleteConvCmd(snap.ActiveID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Rename):
			if snap.ActiveID != "" {
				m.renaming = true
				m.input.Reset()
				m.input.Placeholder = "New title..."
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevConv):
			if i := m.activeConversationIndex(snap); i > 0 {
				return m, m.selectCmd(snap.Conversations[i-1].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.NextConv):
			if i := m.activeConversationIndex(snap); i >= 0 && i+1 < len(snap.Conversations) {
				return m, m.selectCmd(snap.Conversations[i+1].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Logout):
			return m, m.logoutCmd()

		case key.Matches(msg, m.keys.PageUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(msg, m.keys.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

	case bootstrapDoneMsg:
		if msg.err != nil {
			m.chatErr = msg.err.Error()
			m.logger.Printf("bootstrap: %v", msg.err)
		}
		m.refreshViewport(true)
		return m, nil

	case sendDoneMsg:
		if msg.err != nil {
			m.chatErr = msg.err.Error()
		}
		m.refreshViewport(true)
		return m, nil

	case convOpDoneMsg:
		if msg.err != nil {
			m.chatErr = msg.err.Error()
		}
		m.refreshViewport(true)
		return m, nil

	case logoutDoneMsg:
		m.screen = screenAuth
		m.authErr = ""
		m.authBusy = false
		m.authInputs[0].Reset()
		m.authInputs[1].Reset()
		m.authFocus = 0
		m.authInputs[0].Focus()
		m.authInputs[1].Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// AUTH UPDATE
// =============================================================================

func (m *Model) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.authBusy {
			return m, nil
		}

		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if msg.String() == "shift+tab" || msg.String() == "up" {
				m.authFocus--
			} else {
				m.authFocus++
			}
			if m.authFocus < 0 {
				m.authFocus = len(m.authInputs) - 1
			}
			if m.authFocus >= len(m.authInputs) {
				m.authFocus = 0
			}
			for i := range m.authInputs {
				if i == m.authFocus {
					m.authInputs[i].Focus()
				} else {
					m.authInputs[i].Blur()
				}
			}
			return m, textinput.Blink

		case "ctrl+s":
			// Toggle between sign-in and sign-up.
			m.signup = !m.signup
			m.authErr = ""
			return m, nil

		case "enter":
			email := strings.TrimSpace(m.authInputs[0].Value())
			password := m.authInputs[1].Value()
			if email == "" || password == "" {
				m.authErr = "email and password are required"
				return m, nil
			}
			m.authBusy = true
			m.authErr = ""
			if m.signup {
				return m, m.signUpCmd(email, password)
			}
			return m, m.signInCmd(email, password)
		}

	case authDoneMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = msg.err.Error()
			return m, nil
		}
		if !msg.session.Valid() {
			// Sign-up with email confirmation on: no usable token yet.
			m.signup = false
			m.authErr = "account created, confirm your email and sign in"
			return m, nil
		}
		m.ctrl.SetSession(msg.session)
		if err := store.SaveSession(msg.session); err != nil {
			m.logger.Printf("auth: saving session: %v", err)
		}
		m.screen = screenChat
		m.input.Focus()
		return m, m.bootstrapCmd()
	}

	var cmds []tea.Cmd
	for i := range m.authInputs {
		var cmd tea.Cmd
		m.authInputs[i], cmd = m.authInputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}
