// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal front-end for the Scoop assistant.
//
// This file defines the Bubble Tea message types used by the interface.
// Messages are organized into the following categories:
//   - Directory: session listing results
//   - Dispatch: send completion
//   - Hydration: history fetch completion
//   - Deletion: data deletion results
package ui

// SessionsLoadedMsg reports completion of the session directory fetch.
type SessionsLoadedMsg struct {
	Err error
}

// SendDoneMsg reports completion of a message dispatch.
type SendDoneMsg struct {
	Err error
}

// HydratedMsg reports completion of a history fetch for a conversation.
type HydratedMsg struct {
	ConversationID string
	Err            error
}

// DeleteDoneMsg reports completion of a data deletion request.
type DeleteDoneMsg struct {
	Err error
}
