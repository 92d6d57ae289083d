// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"github.com/jeranaias/relay-tui/internal/model"
)

// MaxTurns caps the number of turns sent to the gateway. Older history is
// dropped; the gateway has its own context limit and charges per token.
const MaxTurns = 20

// Turn is one role/content pair of the prepared turn window.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PrepareTurns builds the turn window sent to the gateway from conversation
// history. Two passes, in order:
//
//  1. Collapse runs of consecutive assistant turns down to the last turn of
//     each run. The model API rejects back-to-back assistant turns, which
//     appear in history when an earlier send was interrupted.
//  2. Keep only the last MaxTurns turns.
//
// Collapsing happens before truncation, so the window never wastes a slot on
// a dropped turn.
func PrepareTurns(messages []*model.Message) []Turn {
	collapsed := make([]Turn, 0, len(messages))
	for i, msg := range messages {
		if msg.Role == model.RoleAssistant && i+1 < len(messages) && messages[i+1].Role == model.RoleAssistant {
			continue
		}
		collapsed = append(collapsed, Turn{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	if len(collapsed) > MaxTurns {
		collapsed = collapsed[len(collapsed)-MaxTurns:]
	}
	return collapsed
}
