// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scoopchat/internal/backend"
	"github.com/jeranaias/scoopchat/internal/chat"
	"github.com/jeranaias/scoopchat/internal/identity"
	"github.com/jeranaias/scoopchat/internal/model"
)

// stubBackend satisfies chat.Backend without any network traffic.
type stubBackend struct{}

func (stubBackend) ListSessions(ctx context.Context, identityID string) ([]backend.Session, error) {
	return nil, nil
}

func (stubBackend) GetHistory(ctx context.Context, sessionID string) ([]backend.HistoryMessage, error) {
	return nil, nil
}

func (stubBackend) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResult, error) {
	return &backend.ChatResult{Text: "ok"}, nil
}

func (stubBackend) DeleteUserData(ctx context.Context, identityID string) error {
	return nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	mgr, err := chat.NewManager(stubBackend{}, identity.NewProvider(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	m := New(mgr)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	return m
}

func TestUpdate_SendDoneSetsAndClearsStatus(t *testing.T) {
	m := newTestModel(t)

	m.Update(SendDoneMsg{Err: errors.New("backend unreachable")})
	if m.statusErr == "" {
		t.Fatal("failed send must surface a status message")
	}

	m.Update(SendDoneMsg{})
	if m.statusErr != "" {
		t.Errorf("successful send must clear the status, got %q", m.statusErr)
	}
}

func TestUpdate_HydrationForInactiveConversationDoesNotScroll(t *testing.T) {
	m := newTestModel(t)
	store := m.mgr.Store()

	// An active conversation long enough to scroll, deliberately
	// positioned away from the bottom.
	activeID := store.CreateConversation()
	for i := 0; i < 20; i++ {
		store.AppendMessage(activeID, model.NewUserMessage(fmt.Sprintf("question %d", i)))
		store.AppendMessage(activeID, model.NewAssistantMessage(fmt.Sprintf("answer %d", i), nil))
	}
	m.refreshTranscript()
	m.viewport.SetYOffset(0)

	m.Update(HydratedMsg{ConversationID: "someone-else"})
	if m.viewport.YOffset != 0 {
		t.Errorf("hydration of an inactive conversation moved the viewport to %d", m.viewport.YOffset)
	}

	m.Update(HydratedMsg{ConversationID: activeID})
	if m.viewport.YOffset == 0 {
		t.Error("hydration of the active conversation must scroll to the latest turn")
	}
}
