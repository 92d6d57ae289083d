// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/relay-tui/internal/util"
)

// ErrNoSession is returned when no persisted session exists.
var ErrNoSession = errors.New("no saved session")

// SessionPath returns the path of the persisted session file.
func SessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".relay", "session.json"), nil
}

// SaveSession persists a session so later invocations start authenticated.
// SECURITY: Written atomically with 0600 permissions; the file holds the
// bearer token.
func SaveSession(s *Session) error {
	path, err := SessionPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return util.AtomicWriteFile(path, data, 0600)
}

// LoadSession reads the persisted session. Returns ErrNoSession when the
// file does not exist and when the saved session has expired.
func LoadSession() (*Session, error) {
	path, err := SessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if !s.Valid() {
		return nil, ErrNoSession
	}
	return &s, nil
}

// ClearSession removes the persisted session. Missing file is not an error.
func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
