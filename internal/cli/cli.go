// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line argument parsing and the non-TUI
// subcommands for relay.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time via the main package).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents a parsed top-level command.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdVersion
	CmdHelp
)

// Args holds parsed command-line arguments.
type Args struct {
	Email      string // --email for login/signup
	Model      string // --model override for the TUI
	ConfigPath string // --config override
	Raw        []string
}

const usageText = `relay - terminal chat client

Usage:
  relay                     Start the chat TUI (signs in if needed)
  relay login               Sign in and save the session
  relay signup              Create an account
  relay logout              Revoke and clear the saved session
  relay whoami              Show the signed-in user
  relay version             Show version information
  relay help                Show this help

Options:
  --email <address>         Email for login/signup (prompted otherwise)
  --model <name>            Override the configured model for this run
  --config <path>           Use an alternate config file

Configuration is read from ~/.relay/config.toml (or config.json), with
RELAY_* environment variables taking precedence.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("relay version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	parsed.Raw = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, parsed
	case "login", "signin":
		return CmdLogin, parsed
	case "signup", "register":
		return CmdSignup, parsed
	case "logout", "signout":
		return CmdLogout, parsed
	case "whoami":
		return CmdWhoami, parsed
	case "version", "--version", "-v":
		return CmdVersion, parsed
	case "help", "--help", "-h":
		return CmdHelp, parsed
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts flags valid for every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	var remaining []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--email":
			if i+1 < len(args) {
				i++
				parsed.Email = args[i]
			}
		case "--model":
			if i+1 < len(args) {
				i++
				parsed.Model = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.ConfigPath = args[i]
			}
		default:
			remaining = append(remaining, args[i])
		}
	}
	return remaining, parsed
}
