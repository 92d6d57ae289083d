// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: a titled thread of messages owned by a user
//   - Message: a single role-tagged message within a conversation
//   - Role: the sender of a message ("user" or "assistant")
//
// Messages created locally carry a temporary id (prefix "temp-") until the
// remote store acknowledges the write and assigns a permanent id. The
// temporary id is the correlation key for that swap and must never leave the
// client.
package model
