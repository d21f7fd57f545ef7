// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for scoopchat:
// atomic file persistence for the local profile, and rune-safe
// string truncation for titles and previews.
package util
