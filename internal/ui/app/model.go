// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/controller"
	"github.com/jeranaias/relay-tui/internal/store"
	"github.com/jeranaias/relay-tui/internal/ui/styles"
)

// screen identifies which top-level view is active.
type screen int

const (
	screenAuth screen = iota
	screenChat
)

// Auth is the subset of the store client the auth form uses.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*store.Session, error)
	SignUp(ctx context.Context, email, password string) (*store.Session, error)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the central Bubble Tea model for the relay TUI.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	ctrl   *controller.Controller
	auth   Auth
	logger *log.Logger
	keys   KeyMap

	screen screen
	width  int
	height int
	ready  bool

	// Auth form state
	authInputs [2]textinput.Model
	authFocus  int
	signup     bool
	authBusy   bool
	authErr    string

	// Chat view state
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renaming bool
	chatErr  string
}

// Options configures a new Model.
type Options struct {
	Config     *config.Config
	Controller *controller.Controller
	Auth       Auth
	Logger     *log.Logger
}

// New creates the application model. If the controller already holds a valid
// session the auth screen is skipped.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		cfg:        opts.Config,
		theme:      styles.NewTheme(opts.Config.UI.Theme),
		ctrl:       opts.Controller,
		auth:       opts.Auth,
		logger:     logger,
		keys:       DefaultKeyMap(),
		authInputs: [2]textinput.Model{email, password},
		input:      input,
		spinner:    sp,
	}
	m.spinner.Style = m.theme.Spinner

	if opts.Controller.Session().Valid() {
		m.screen = screenChat
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.screen == screenChat {
		cmds = append(cmds, m.bootstrapCmd())
	}
	return tea.Batch(cmds...)
}

// activeConversationIndex returns the sidebar index of the active
// conversation, or -1.
func (m *Model) activeConversationIndex(snap controller.Snapshot) int {
	for i, conv := range snap.Conversations {
		if conv.ID == snap.ActiveID {
			return i
		}
	}
	return -1
}
