// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns a conversation's raw message sequence into the
// ordered list of items the presentation layer draws: paired turns,
// a pending turn while a send is in flight, and orphan bubbles for
// everything that can't be paired.
//
// The output is a pure projection. Nothing here is stored; callers
// recompute it from the Store snapshot on every frame.
package render
