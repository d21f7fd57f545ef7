// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Scoop assistant
// service: the session directory, per-session history, the chat
// endpoint, and user data deletion.
//
// The client reports typed errors and nothing else; the policy of
// absorbing failures silently lives one layer up in internal/chat.
// Timeouts are delegated entirely to the http.Client. There is no
// retry and no client-initiated cancellation beyond the caller's
// context.
package backend
