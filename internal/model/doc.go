// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and
// messages, and the Store that owns the in-memory conversation list.
//
// The Store is the single source of truth for conversation state.
// Every mutation replaces the collection with a structural copy, so
// any snapshot handed out by All() or Active() stays internally
// consistent while async sends and history hydration interleave.
// Nothing else in the program is allowed to mutate conversations.
package model
