// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package app provides the main view component for the relay TUI application.

The app package implements a terminal chat client over the Bubble Tea
framework. It drives two screens: an authentication form and the chat view
with a conversation sidebar.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model:
  - Screen switching between the auth form and the chat view
  - Conversation sidebar with selection state
  - Viewport for message scrolling
  - Input field shared between chat entry and conversation rename

## Update Loop (update.go)

Handles all Bubble Tea messages and user interactions:
  - Keyboard input processing
  - Completion messages from controller commands
  - Window resize handling

## View Rendering (view.go)

Rendering logic for the complete interface:
  - Header with user identity and model name
  - Sidebar with conversation titles, newest first
  - Message bubbles with role-specific styling
  - Code block syntax highlighting
  - Status bar with keyboard shortcuts

# Usage

Create the model, run it, and wire controller notifications back into the
program:

	m := app.New(cfg, ctrl)
	p := tea.NewProgram(m, tea.WithAltScreen())
	ctrl.Subscribe(func() { p.Send(app.StateChangedMsg{}) })
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package app
