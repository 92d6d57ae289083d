// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the conversation session state and coordinates
// the store and gateway clients.
//
// The controller owns the conversation list, the active conversation's
// messages, and the in-flight send flag. All mutations go through its
// methods; the UI reads state through Snapshot and learns about changes
// through Subscribe. Methods are safe for concurrent use.
//
// # Key Types
//
//   - Controller: the session state machine
//   - Snapshot: an immutable copy of the state for rendering
//
// # Usage
//
//	ctrl := controller.New(storeClient, gatewayClient, logger)
//	ctrl.SetSession(session)
//	ctrl.Subscribe(func() { program.Send(stateChangedMsg{}) })
//	err := ctrl.Bootstrap(ctx)
//
// Send failures are logged and surfaced; optimistic state is never rolled
// back, so the user can see what they typed and resend.
package controller
