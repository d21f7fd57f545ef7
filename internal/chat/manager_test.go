// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/scoopchat/internal/backend"
	"github.com/jeranaias/scoopchat/internal/identity"
	"github.com/jeranaias/scoopchat/internal/model"
	"github.com/jeranaias/scoopchat/internal/render"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend is an in-memory Backend. Optional gates make a call
// block until the test releases it, to observe in-flight state.
type fakeBackend struct {
	mu sync.Mutex

	sessions    []backend.Session
	sessionsErr error
	listCalls   int

	history      map[string][]backend.HistoryMessage
	historyErr   error
	historyCalls int
	historyGate  chan struct{}

	chatResult  *backend.ChatResult
	chatErr     error
	chatCalls   int
	chatGate    chan struct{}
	lastChatReq backend.ChatRequest

	deleteErr   error
	deleteCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history:    make(map[string][]backend.HistoryMessage),
		chatResult: &backend.ChatResult{Text: "assistant reply"},
	}
}

func (f *fakeBackend) ListSessions(ctx context.Context, identityID string) ([]backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.sessions, f.sessionsErr
}

func (f *fakeBackend) GetHistory(ctx context.Context, sessionID string) ([]backend.HistoryMessage, error) {
	f.mu.Lock()
	f.historyCalls++
	gate := f.historyGate
	err := f.historyErr
	msgs := f.history[sessionID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return msgs, err
}

func (f *fakeBackend) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResult, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastChatReq = req
	gate := f.chatGate
	result := f.chatResult
	err := f.chatErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result, err
}

func (f *fakeBackend) DeleteUserData(ctx context.Context, identityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

func newTestManager(t *testing.T, back Backend) *Manager {
	t.Helper()
	mgr, err := NewManager(back, identity.NewProvider(t.TempDir()))
	require.NoError(t, err)
	return mgr
}

// waitUntil polls a condition instead of sleeping a fixed amount.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestSend_RejectsEmptyInput(t *testing.T) {
	mgr := newTestManager(t, newFakeBackend())

	assert.ErrorIs(t, mgr.Send(context.Background(), ""), ErrEmptyMessage)
	assert.ErrorIs(t, mgr.Send(context.Background(), "   \n\t"), ErrEmptyMessage)
	assert.Equal(t, 0, mgr.Store().Count(), "rejected sends must not create conversations")
}

func TestSend_FirstMessageStartsConversation(t *testing.T) {
	back := newFakeBackend()
	mgr := newTestManager(t, back)

	require.NoError(t, mgr.Send(context.Background(), "  what protein should I take after training  "))

	conv := mgr.Store().Active()
	require.NotNil(t, conv)
	require.Equal(t, 2, conv.MessageCount())

	// Optimistic entry holds the trimmed text; the wire carries the
	// original.
	assert.Equal(t, "what protein should I take after training", conv.Messages[0].Content)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "  what protein should I take after training  ", back.lastChatReq.Message)
	assert.Equal(t, conv.ID, back.lastChatReq.SessionID)
	assert.Equal(t, mgr.Identity(), back.lastChatReq.UserID)

	// Title derived from the first user message.
	assert.Equal(t, "what protein should I ...", conv.Title)

	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "assistant reply", conv.Messages[1].Content)
}

func TestSend_OptimisticAppendIsSynchronous(t *testing.T) {
	back := newFakeBackend()
	back.chatGate = make(chan struct{})
	mgr := newTestManager(t, back)

	done := make(chan error, 1)
	go func() { done <- mgr.Send(context.Background(), "hello") }()

	// The user message must be visible while the network call is
	// still blocked.
	waitUntil(t, func() bool { return mgr.Sending() })
	conv := mgr.Store().Active()
	require.NotNil(t, conv)
	require.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)

	close(back.chatGate)
	require.NoError(t, <-done)
	assert.False(t, mgr.Sending())
	assert.Equal(t, 2, mgr.Store().Active().MessageCount())
}

func TestSend_SerializesInFlight(t *testing.T) {
	back := newFakeBackend()
	back.chatGate = make(chan struct{})
	mgr := newTestManager(t, back)

	done := make(chan error, 1)
	go func() { done <- mgr.Send(context.Background(), "first") }()
	waitUntil(t, func() bool { return mgr.Sending() })

	// Second send while in flight: rejected, exactly one user message
	// appended, exactly one network call.
	assert.ErrorIs(t, mgr.Send(context.Background(), "second"), ErrSendInFlight)

	close(back.chatGate)
	require.NoError(t, <-done)

	conv := mgr.Store().Active()
	userCount := 0
	for _, msg := range conv.Messages {
		if msg.Role == model.RoleUser {
			userCount++
		}
	}
	assert.Equal(t, 1, userCount)
	assert.Equal(t, 1, back.chatCalls)

	// The flag clears, so the next send goes through.
	require.NoError(t, mgr.Send(context.Background(), "second"))
	assert.Equal(t, 2, back.chatCalls)
}

func TestSend_FailureKeepsUserMessageWithoutReply(t *testing.T) {
	back := newFakeBackend()
	back.chatErr = &backend.ClientError{Type: backend.ErrTypeConnection, Message: "backend unreachable"}
	mgr := newTestManager(t, back)

	err := mgr.Send(context.Background(), "hello")
	require.Error(t, err)

	// No rollback, no assistant message, flag cleared.
	conv := mgr.Store().Active()
	require.NotNil(t, conv)
	require.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.False(t, mgr.Sending())

	// The unanswered message renders as an orphan once the flag is
	// down, which is the retryable state.
	items := mgr.RenderItems(nil)
	require.Len(t, items, 1)
	assert.Equal(t, render.KindOrphan, items[0].Kind)
}

func TestSend_QuickRepliesReachTheModel(t *testing.T) {
	back := newFakeBackend()
	back.chatResult = &backend.ChatResult{
		Text:         "here are options",
		QuickReplies: []backend.QuickReply{{Title: "More", Payload: "more"}},
	}
	mgr := newTestManager(t, back)

	require.NoError(t, mgr.Send(context.Background(), "hi"))

	reply := mgr.Store().Active().LastMessage()
	require.Equal(t, model.RoleAssistant, reply.Role)
	require.Len(t, reply.QuickReplies, 1)
	assert.Equal(t, "More", reply.QuickReplies[0].Title)
}

func TestSend_TargetsConversationActiveAtDispatch(t *testing.T) {
	back := newFakeBackend()
	back.chatGate = make(chan struct{})
	mgr := newTestManager(t, back)

	done := make(chan error, 1)
	go func() { done <- mgr.Send(context.Background(), "hello") }()
	waitUntil(t, func() bool { return mgr.Sending() })
	target := mgr.Store().Active().ID

	// Navigating away mid-flight must not redirect the completion.
	mgr.SelectNone()
	close(back.chatGate)
	require.NoError(t, <-done)

	conv := mgr.Store().Get(target)
	require.NotNil(t, conv)
	assert.Equal(t, 2, conv.MessageCount())
}

// =============================================================================
// DIRECTORY TESTS
// =============================================================================

func TestLoadSessions_MergesDirectory(t *testing.T) {
	back := newFakeBackend()
	back.sessions = []backend.Session{
		{ID: "sess1", Title: "protein chat", CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: "sess2", Title: ""},
	}
	mgr := newTestManager(t, back)

	require.NoError(t, mgr.LoadSessions(context.Background()))

	assert.Equal(t, 2, mgr.Store().Count())
	assert.Equal(t, "protein chat", mgr.Store().Get("sess1").Title)
	assert.Equal(t, model.DefaultTitle, mgr.Store().Get("sess2").Title)
	assert.Equal(t, 0, mgr.Store().Get("sess1").MessageCount(), "directory entries arrive unhydrated")
}

func TestLoadSessions_RunsAtMostOnce(t *testing.T) {
	back := newFakeBackend()
	mgr := newTestManager(t, back)

	require.NoError(t, mgr.LoadSessions(context.Background()))
	require.NoError(t, mgr.LoadSessions(context.Background()))
	require.NoError(t, mgr.LoadSessions(context.Background()))

	assert.Equal(t, 1, back.listCalls)
}

func TestLoadSessions_FailureBehavesLikeEmptyDirectory(t *testing.T) {
	back := newFakeBackend()
	back.sessionsErr = &backend.ClientError{Type: backend.ErrTypeStatus, Message: "request failed: 500"}
	mgr := newTestManager(t, back)

	err := mgr.LoadSessions(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, mgr.Store().Count())

	// The guard tripped: no retry on later calls.
	require.NoError(t, mgr.LoadSessions(context.Background()))
	assert.Equal(t, 1, back.listCalls)
}

// =============================================================================
// HYDRATION TESTS
// =============================================================================

func hydrationFixture(t *testing.T, back *fakeBackend) *Manager {
	t.Helper()
	back.sessions = []backend.Session{{ID: "sess1", Title: "old chat"}}
	back.history["sess1"] = []backend.HistoryMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "more?"},
		{Role: "assistant", Content: "sure"},
	}
	mgr := newTestManager(t, back)
	require.NoError(t, mgr.LoadSessions(context.Background()))
	return mgr
}

func TestSelect_HydratesHistory(t *testing.T) {
	back := newFakeBackend()
	mgr := hydrationFixture(t, back)

	require.NoError(t, mgr.Select(context.Background(), "sess1"))

	conv := mgr.Store().Active()
	require.Equal(t, "sess1", conv.ID)
	require.Equal(t, 4, conv.MessageCount())
	assert.Equal(t, "sess1_0", conv.Messages[0].ID, "hydrated IDs are synthesized")
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)

	// Hydrated alternating history pairs fully, never orphans.
	items := mgr.RenderItems(nil)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, render.KindPair, item.Kind)
	}
}

func TestSelect_HydratesOnlyOnce(t *testing.T) {
	back := newFakeBackend()
	mgr := hydrationFixture(t, back)

	require.NoError(t, mgr.Select(context.Background(), "sess1"))
	require.NoError(t, mgr.Select(context.Background(), "sess1"))

	assert.Equal(t, 1, back.historyCalls, "a conversation with messages must not refetch")
}

func TestSelect_UnknownConversation(t *testing.T) {
	mgr := newTestManager(t, newFakeBackend())

	assert.ErrorIs(t, mgr.Select(context.Background(), "nope"), ErrUnknownConversation)
}

func TestSelect_ShowsSkeletonWhileHydrating(t *testing.T) {
	back := newFakeBackend()
	back.historyGate = make(chan struct{})
	mgr := hydrationFixture(t, back)

	done := make(chan error, 1)
	go func() { done <- mgr.Select(context.Background(), "sess1") }()
	waitUntil(t, func() bool { return mgr.Hydrating() })

	items := mgr.RenderItems(nil)
	require.Len(t, items, 1)
	assert.Equal(t, render.KindSkeleton, items[0].Kind)

	close(back.historyGate)
	require.NoError(t, <-done)
	assert.False(t, mgr.Hydrating())
}

func TestSelect_StaleHydrationIsDropped(t *testing.T) {
	back := newFakeBackend()
	back.historyGate = make(chan struct{})
	mgr := hydrationFixture(t, back)

	done := make(chan error, 1)
	go func() { done <- mgr.Select(context.Background(), "sess1") }()
	waitUntil(t, func() bool { return mgr.Hydrating() })

	// A send lands in the same conversation while the history fetch
	// is outstanding: the local state is now logically newer than the
	// snapshot, so the snapshot must be dropped.
	require.NoError(t, mgr.Send(context.Background(), "newest question"))
	require.Equal(t, 2, mgr.Store().Get("sess1").MessageCount())

	close(back.historyGate)
	require.NoError(t, <-done)

	conv := mgr.Store().Get("sess1")
	require.Equal(t, 2, conv.MessageCount(), "hydration must not clobber newer local messages")
	assert.True(t, strings.HasPrefix(conv.Messages[0].ID, "msg_"),
		"surviving messages are the optimistic ones, not the snapshot")
}

func TestSelect_FailedHydrationLeavesConversationEmpty(t *testing.T) {
	back := newFakeBackend()
	back.historyErr = &backend.ClientError{Type: backend.ErrTypeConnection, Message: "backend unreachable"}
	back.sessions = []backend.Session{{ID: "sess1", Title: "old chat"}}
	mgr := newTestManager(t, back)
	require.NoError(t, mgr.LoadSessions(context.Background()))

	err := mgr.Select(context.Background(), "sess1")
	require.Error(t, err)

	// Failure is an absence: still selected, still empty, flag down.
	assert.Equal(t, "sess1", mgr.Store().ActiveID())
	assert.Equal(t, 0, mgr.Store().Get("sess1").MessageCount())
	assert.False(t, mgr.Hydrating())
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestLifecycle_InitialStateFollowsConsent(t *testing.T) {
	dir := t.TempDir()

	mgr, err := NewManager(newFakeBackend(), identity.NewProvider(dir))
	require.NoError(t, err)
	assert.Equal(t, StateConsentUnknown, mgr.State())

	require.NoError(t, mgr.AcceptConsent())
	assert.Equal(t, StateNormal, mgr.State())

	// A restart over the same profile skips the prompt.
	mgr2, err := NewManager(newFakeBackend(), identity.NewProvider(dir))
	require.NoError(t, err)
	assert.Equal(t, StateNormal, mgr2.State())
}

func TestLifecycle_ConsentOnlyFromUnknown(t *testing.T) {
	mgr := newTestManager(t, newFakeBackend())
	require.NoError(t, mgr.RejectConsent())

	assert.ErrorIs(t, mgr.AcceptConsent(), ErrInvalidTransition)
	assert.ErrorIs(t, mgr.RejectConsent(), ErrInvalidTransition)
}

func TestLifecycle_RejectConsentDoesNotBlockDirectory(t *testing.T) {
	back := newFakeBackend()
	back.sessions = []backend.Session{{ID: "sess1", Title: "chat"}}
	mgr := newTestManager(t, back)

	require.NoError(t, mgr.RejectConsent())
	require.NoError(t, mgr.LoadSessions(context.Background()))

	// Matches the shipped behavior: the flag is persisted, nothing
	// else changes client-side.
	assert.Equal(t, 1, mgr.Store().Count())
}

func TestLifecycle_DeleteRequestAndCancel(t *testing.T) {
	mgr := newTestManager(t, newFakeBackend())
	require.NoError(t, mgr.AcceptConsent())

	require.NoError(t, mgr.RequestDelete())
	assert.Equal(t, StateConfirmingDelete, mgr.State())

	require.NoError(t, mgr.CancelDelete())
	assert.Equal(t, StateNormal, mgr.State())

	assert.ErrorIs(t, mgr.CancelDelete(), ErrInvalidTransition)
}

func TestConfirmDelete_Success(t *testing.T) {
	back := newFakeBackend()
	mgr := newTestManager(t, back)
	require.NoError(t, mgr.AcceptConsent())

	oldID := mgr.Identity()
	require.NoError(t, mgr.Send(context.Background(), "one"))
	mgr.SelectNone()
	require.NoError(t, mgr.Send(context.Background(), "two"))
	require.NoError(t, mgr.LoadSessions(context.Background()))
	require.Equal(t, 2, mgr.Store().Count())

	require.NoError(t, mgr.RequestDelete())
	require.NoError(t, mgr.ConfirmDelete(context.Background()))

	assert.Equal(t, 0, mgr.Store().Count(), "collection cleared")
	assert.NotEqual(t, oldID, mgr.Identity(), "identity rotated")
	assert.Equal(t, StateConsentUnknown, mgr.State(), "consent prompt re-armed")
	assert.Equal(t, 1, back.deleteCalls)

	// Directory guard reset: the next load fetches again for the new
	// identity.
	require.NoError(t, mgr.LoadSessions(context.Background()))
	assert.Equal(t, 2, back.listCalls)
}

func TestConfirmDelete_FailureIsAllOrNothing(t *testing.T) {
	back := newFakeBackend()
	back.deleteErr = &backend.ClientError{Type: backend.ErrTypeStatus, Message: "delete request failed: 500"}
	mgr := newTestManager(t, back)
	require.NoError(t, mgr.AcceptConsent())

	oldID := mgr.Identity()
	require.NoError(t, mgr.Send(context.Background(), "keep me"))
	require.NoError(t, mgr.RequestDelete())

	err := mgr.ConfirmDelete(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateNormal, mgr.State())
	assert.Equal(t, 1, mgr.Store().Count(), "nothing deleted locally")
	assert.Equal(t, oldID, mgr.Identity(), "identity kept")
}

func TestConfirmDelete_NeverIssuesTwice(t *testing.T) {
	back := newFakeBackend()
	mgr := newTestManager(t, back)
	require.NoError(t, mgr.AcceptConsent())
	require.NoError(t, mgr.RequestDelete())

	require.NoError(t, mgr.ConfirmDelete(context.Background()))

	// Second confirmation after (or during) a deletion is rejected by
	// the state machine; the backend sees exactly one request.
	assert.ErrorIs(t, mgr.ConfirmDelete(context.Background()), ErrInvalidTransition)
	assert.Equal(t, 1, back.deleteCalls)
}
