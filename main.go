// relay TUI - a terminal chat client backed by a hosted conversation store.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/relay-tui/internal/cli"
	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/controller"
	"github.com/jeranaias/relay-tui/internal/gateway"
	"github.com/jeranaias/relay-tui/internal/store"
	"github.com/jeranaias/relay-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdSignup:
		exitOnError(cli.HandleSignup(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdWhoami:
		exitOnError(cli.HandleWhoami(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLogFile opens ~/.relay/relay.log for append. The TUI owns the
// terminal, so diagnostics go to a file instead of stderr.
func openLogFile() *log.Logger {
	home, err := os.UserHomeDir()
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	dir := filepath.Join(home, ".relay")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(filepath.Join(dir, "relay.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "", log.LstdFlags)
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI args override config.
	if args.Model != "" {
		cfg.Gateway.Model = args.Model
	}

	logger := openLogFile()

	storeClient := store.NewClient(cfg.Store.URL, cfg.Store.AnonKey)
	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Model)

	ctrl := controller.New(storeClient, gatewayClient, logger)

	// Resume a saved session when one exists; otherwise the auth screen
	// takes over.
	if session, err := store.LoadSession(); err == nil {
		ctrl.SetSession(session)
	} else if !errors.Is(err, store.ErrNoSession) {
		logger.Printf("loading saved session: %v", err)
	}

	m := app.New(app.Options{
		Config:     cfg,
		Controller: ctrl,
		Auth:       storeClient,
		Logger:     logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Controller state changes re-render the view, including optimistic
	// updates made mid-send.
	ctrl.Subscribe(func() {
		p.Send(app.StateChangedMsg{})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running relay: %v\n", err)
		os.Exit(1)
	}
}
