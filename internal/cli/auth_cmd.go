// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the login, signup, logout, and whoami subcommands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/relay-tui/internal/config"
	"github.com/jeranaias/relay-tui/internal/store"
)

// authTimeout bounds each auth request.
const authTimeout = 30 * time.Second

// newStoreClient loads config and builds a store client for a subcommand.
func newStoreClient(args Args) (*store.Client, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	return store.NewClient(cfg.Store.URL, cfg.Store.AnonKey), nil
}

// promptCredentials collects email and password from the terminal. The
// password is read without echo.
func promptCredentials(email string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", errors.New("email is required")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("reading password: %w", err)
	}
	if len(passwordBytes) == 0 {
		return "", "", errors.New("password is required")
	}

	return email, string(passwordBytes), nil
}

// HandleLogin signs in and persists the session for later runs.
func HandleLogin(args Args) error {
	client, err := newStoreClient(args)
	if err != nil {
		return err
	}

	email, password, err := promptCredentials(args.Email)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	session, err := client.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	if err := store.SaveSession(session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Signed in as %s\n", session.User.Email)
	return nil
}

// HandleSignup creates an account. Depending on the store's email
// confirmation setting the user may have to confirm before signing in.
func HandleSignup(args Args) error {
	client, err := newStoreClient(args)
	if err != nil {
		return err
	}

	email, password, err := promptCredentials(args.Email)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	session, err := client.SignUp(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign-up failed: %w", err)
	}

	if !session.Valid() {
		fmt.Println("Account created. Confirm your email, then run 'relay login'.")
		return nil
	}

	if err := store.SaveSession(session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Printf("Signed up as %s\n", session.User.Email)
	return nil
}

// HandleLogout revokes the saved session and removes the session file. The
// local file is removed even when revocation fails.
func HandleLogout(args Args) error {
	session, err := store.LoadSession()
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			fmt.Println("Not signed in.")
			return nil
		}
		return err
	}

	client, err := newStoreClient(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if err := client.SignOut(ctx, session.AccessToken); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not revoke session remotely: %v\n", err)
	}
	if err := store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	fmt.Println("Signed out.")
	return nil
}

// HandleWhoami prints the signed-in user.
func HandleWhoami(args Args) error {
	session, err := store.LoadSession()
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			fmt.Println("Not signed in.")
			return nil
		}
		return err
	}

	client, err := newStoreClient(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	user, err := client.CurrentUser(ctx, session.AccessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotAuthenticated) {
			fmt.Println("Session expired. Run 'relay login'.")
			return nil
		}
		return err
	}

	fmt.Printf("%s (%s)\n", user.Email, user.ID)
	return nil
}
