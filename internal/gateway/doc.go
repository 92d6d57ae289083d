// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the model gateway client for relay.
//
// The gateway is an HTTP service that fronts the language model. Each send
// carries the conversation id, the prepared turn window, and the model name;
// the gateway replies with the assistant's message. Calls are authenticated
// with the same bearer token as the conversation store.
//
// # Key Types
//
//   - Client: HTTP client for the gateway's completion endpoint
//   - Turn: one role/content pair of the prepared turn window
//   - GatewayError: typed error carrying the HTTP status of a failed call
//
// # Usage
//
// Prepare the turn window from conversation history and send it:
//
//	turns := gateway.PrepareTurns(messages)
//	resp, err := client.Send(ctx, token, conversationID, turns)
//
// Sends are not retried: a failed call surfaces to the user, who decides
// whether to resend.
package gateway
