// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/relay-tui/internal/controller"
	"github.com/jeranaias/relay-tui/internal/model"
	"github.com/jeranaias/relay-tui/internal/ui/components"
)

// chatWidth returns the width available to the message viewport.
func (m *Model) chatWidth() int {
	w := m.width - m.theme.SidebarWidth() - 2
	if w < 20 {
		w = 20
	}
	return w
}

// chatHeight returns the height available to the message viewport. Header,
// input line, and status bar each take a row, plus borders.
func (m *Model) chatHeight() int {
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport(goBottom bool) {
	if !m.ready {
		return
	}
	snap := m.ctrl.Snapshot()
	m.viewport.SetContent(m.renderTranscript(snap))
	if goBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenAuth {
		return m.viewAuth()
	}
	return m.viewChat()
}

// =============================================================================
// AUTH VIEW
// =============================================================================

func (m *Model) viewAuth() string {
	title := "Sign in to relay"
	action := "sign in"
	if m.signup {
		title = "Create a relay account"
		action = "sign up"
	}

	var b strings.Builder
	b.WriteString(m.theme.AuthTitle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.theme.AuthLabel.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.authInputs[0].View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.AuthLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.authInputs[1].View())
	b.WriteString("\n\n")

	if m.authBusy {
		b.WriteString(m.spinner.View() + m.theme.ThinkingText.Render(" signing in..."))
	} else {
		b.WriteString(m.theme.AuthSwitchTip.Render(
			fmt.Sprintf("Enter to %s  -  Ctrl+S to switch sign in/sign up  -  Ctrl+Q to quit", action)))
	}
	if m.authErr != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.ErrorTitle.Render(m.authErr))
	}

	box := m.theme.AuthBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (m *Model) viewChat() string {
	if !m.ready {
		return "loading..."
	}
	snap := m.ctrl.Snapshot()

	header := m.renderHeader(snap)
	body := m.viewport.View()
	if sw := m.theme.SidebarWidth(); sw > 0 {
		sidebar := m.renderSidebar(snap, sw)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}
	input := m.renderInput(snap)
	status := m.renderStatusBar(snap)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

func (m *Model) renderHeader(snap controller.Snapshot) string {
	brand := m.theme.HeaderBrand.Render("relay")
	right := m.theme.HeaderUser.Render(snap.User.Email + "  " + m.cfg.Gateway.Model)

	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(brand + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderSidebar(snap controller.Snapshot, width int) string {
	inner := width - 4
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n")

	if len(snap.Conversations) == 0 {
		b.WriteString(m.theme.SidebarItemTimestamp.Render("none yet (C-n)"))
	}
	for _, conv := range snap.Conversations {
		title := runewidth.Truncate(conv.Title, inner, "...")
		if conv.ID == snap.ActiveID {
			b.WriteString(m.theme.SidebarItemSelected.Render(title))
		} else {
			b.WriteString(m.theme.SidebarItem.Render(title))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.Width(width).Height(m.chatHeight()).Render(b.String())
}

// renderTranscript renders the active conversation's messages.
func (m *Model) renderTranscript(snap controller.Snapshot) string {
	if snap.ActiveID == "" {
		return m.theme.BubblePending.Render("No conversation selected. Ctrl+N starts one.")
	}

	maxWidth := m.chatWidth() - 4
	var parts []string
	for _, msg := range snap.Messages {
		parts = append(parts, m.renderMessage(msg, maxWidth))
	}
	if snap.Pending {
		parts = append(parts, m.spinner.View()+m.theme.ThinkingText.Render(" thinking..."))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg *model.Message, maxWidth int) string {
	sender := m.theme.BubbleSender.Render(msg.Role.DisplayName())
	content := components.RenderContent(msg.Content, maxWidth, m.theme)

	bubble := m.theme.AssistantBubble
	if msg.Role == model.RoleUser {
		bubble = m.theme.UserBubble
	}
	rendered := bubble.Render(sender + "\n" + content)
	if msg.IsTemp() {
		// Not yet acknowledged by the store.
		rendered += "\n" + m.theme.BubblePending.Render("sending...")
	}
	return rendered
}

func (m *Model) renderInput(snap controller.Snapshot) string {
	prompt := m.theme.InputPrompt.Render("> ")
	if m.renaming {
		prompt = m.theme.InputPrompt.Render("rename: ")
	}
	line := prompt + m.input.View()
	if m.chatErr != "" {
		line += "  " + m.theme.ErrorTitle.Render(m.chatErr)
	}
	return m.theme.InputContainer.Width(m.width).Render(line)
}

func (m *Model) renderStatusBar(snap controller.Snapshot) string {
	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}
