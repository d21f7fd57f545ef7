// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scoopchat/internal/chat"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// LoadSessionsCmd fetches the session directory for the current identity.
func LoadSessionsCmd(mgr *chat.Manager) tea.Cmd {
	return func() tea.Msg {
		err := mgr.LoadSessions(context.Background())
		return SessionsLoadedMsg{Err: err}
	}
}

// SendCmd dispatches a user message. The optimistic user entry becomes
// visible in the store before the network call resolves.
func SendCmd(mgr *chat.Manager, text string) tea.Cmd {
	return func() tea.Msg {
		return SendDoneMsg{Err: mgr.Send(context.Background(), text)}
	}
}

// SelectCmd activates a conversation and hydrates its history if needed.
func SelectCmd(mgr *chat.Manager, conversationID string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Select(context.Background(), conversationID)
		return HydratedMsg{
			ConversationID: conversationID,
			Err:            err,
		}
	}
}

// ConfirmDeleteCmd issues the backend deletion request.
func ConfirmDeleteCmd(mgr *chat.Manager) tea.Cmd {
	return func() tea.Msg {
		err := mgr.ConfirmDelete(context.Background())
		return DeleteDoneMsg{Err: err}
	}
}
