// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates the conversation session: dispatching user
// turns to the backend with optimistic local updates, loading the
// session directory once per identity, hydrating history on demand,
// and running the consent/deletion lifecycle.
//
// Manager is the session context: it owns the identity, the consent
// driven lifecycle state, and the in-flight flags, and it is the only
// writer to the model.Store. It is created at app start and rebuilt
// in place when a data deletion rotates the identity.
//
// Failure policy: every backend failure is absorbed. Methods return
// typed errors so tests and callers can see what happened, but no
// failure produces user-visible state beyond its absence: an empty
// directory, an unhydrated conversation, or a user message without an
// answer. All of those are valid renderable states.
package chat
