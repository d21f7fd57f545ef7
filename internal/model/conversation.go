// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TitleMaxLen is the rune budget for titles derived from the first
// user message.
const TitleMaxLen = 25

// DefaultTitle is used until a real title is derived or supplied by
// the directory.
const DefaultTitle = "New conversation"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds one ordered thread of messages with a title.
//
// ID is client-generated for a conversation started locally, or the
// backend's session id once it appears in the directory. Timestamps
// are carried as the opaque strings the directory serves; the client
// never parses them, only displays and round-trips them.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        generateConversationID(),
		Title:     DefaultTitle,
		Messages:  make([]*Message, 0),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Clone creates a deep copy of the conversation. The Store clones
// before mutating so previously handed-out snapshots stay frozen.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateConversationID creates a unique client-side conversation ID.
func generateConversationID() string {
	return "conv_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
