// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// DefaultTitle is the placeholder title assigned to a freshly created
// conversation. The first user message replaces it with a derived title.
const DefaultTitle = "New Conversation"

// titleWords is how many leading words of the first message make up the
// derived conversation title.
const titleWords = 5

// Conversation holds the identity and metadata of a chat thread. Messages
// are loaded separately, only for the active conversation.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// HasDefaultTitle reports whether the conversation still carries the
// placeholder title and is due for a derived one.
func (c *Conversation) HasDefaultTitle() bool {
	return c.Title == DefaultTitle
}

// TitleFromContent derives a conversation title from the first words of a
// message, with an ellipsis marker.
func TitleFromContent(content string) string {
	words := strings.Fields(content)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	return strings.Join(words, " ") + "..."
}

// SortConversations orders conversations by creation time, newest first,
// matching the store's listing order.
func SortConversations(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})
}
