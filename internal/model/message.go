// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/scoopchat/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// QUICK REPLY TYPE
// =============================================================================

// QuickReply is a suggested follow-up the assistant attaches to a
// response. Title is what the user sees; Payload is what gets sent
// back when tapped.
type QuickReply struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// IDs come from two disjoint spaces: client-generated uuids for
// optimistic entries, and "<sessionID>_<index>" for entries rebuilt
// from persisted history. The spaces never collide because hydration
// always replaces a conversation's whole message slice rather than
// merging into it.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// QuickReplies is only ever set on assistant messages. nil and
	// empty are rendered identically (caller-supplied defaults), but
	// persisted history never carries quick replies at all.
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

// NewUserMessage creates a client-generated user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:      generateMessageID(),
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a client-generated assistant message.
func NewAssistantMessage(content string, quickReplies []QuickReply) *Message {
	return &Message{
		ID:           generateMessageID(),
		Role:         RoleAssistant,
		Content:      content,
		QuickReplies: quickReplies,
	}
}

// NewHydratedMessage creates a message rebuilt from persisted history.
// The ID is synthesized from the session and position.
func NewHydratedMessage(sessionID string, index int, role Role, content string) *Message {
	return &Message{
		ID:      hydratedMessageID(sessionID, index),
		Role:    role,
		Content: content,
	}
}

// Preview returns the message content truncated to maxLen runes with
// newlines flattened, suitable for titles and sidebar entries.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateString(util.CollapseWhitespace(m.Content), maxLen)
}

// =============================================================================
// ID GENERATION
// =============================================================================

// generateMessageID creates a unique client-side message ID.
func generateMessageID() string {
	return "msg_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// hydratedMessageID synthesizes an ID for a history entry.
func hydratedMessageID(sessionID string, index int) string {
	return sessionID + "_" + strconv.Itoa(index)
}
