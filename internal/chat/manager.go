// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/scoopchat/internal/backend"
	"github.com/jeranaias/scoopchat/internal/identity"
	"github.com/jeranaias/scoopchat/internal/model"
	"github.com/jeranaias/scoopchat/internal/render"
)

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for rejected operations. The UI ignores them; tests
// assert on them.
var (
	ErrEmptyMessage        = &Error{Message: "message is empty"}
	ErrSendInFlight        = &Error{Message: "a send is already in flight"}
	ErrUnknownConversation = &Error{Message: "unknown conversation"}
	ErrInvalidTransition   = &Error{Message: "invalid lifecycle transition"}
)

// Error is a chat-layer error.
type Error struct {
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the slice of the backend client the manager needs.
// *backend.Client satisfies it; tests substitute fakes.
type Backend interface {
	ListSessions(ctx context.Context, identityID string) ([]backend.Session, error)
	GetHistory(ctx context.Context, sessionID string) ([]backend.HistoryMessage, error)
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResult, error)
	DeleteUserData(ctx context.Context, identityID string) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the conversation session state. All methods are safe
// for concurrent use; the blocking ones (Send, LoadSessions, Select,
// ConfirmDelete) are meant to run off the UI loop, one goroutine per
// call, with the guards below serializing what must be serial:
//
//   - one outstanding send across the whole client, never per
//     conversation (the sending flag)
//   - one outstanding history fetch per conversation
//   - one directory fetch per identity per process lifetime
//
// A send for conversation A and a hydration for conversation B may
// run concurrently.
type Manager struct {
	store *model.Store
	back  Backend
	ids   *identity.Provider

	mu             sync.Mutex
	identityID     string
	sending        bool
	hydratingConvs map[string]bool
	sessionsLoaded bool
	state          State
}

// NewManager creates the session context. The identity is resolved
// (or minted) immediately; the lifecycle state starts at consent
// unknown or normal depending on what the profile already holds.
func NewManager(back Backend, ids *identity.Provider) (*Manager, error) {
	id, err := ids.GetOrCreate()
	if err != nil {
		return nil, err
	}

	state := StateNormal
	if ids.Consent() == identity.ConsentUnknown {
		state = StateConsentUnknown
	}

	return &Manager{
		store:          model.NewStore(),
		back:           back,
		ids:            ids,
		identityID:     id,
		hydratingConvs: make(map[string]bool),
		state:          state,
	}, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Store returns the conversation store. Read-only for callers; all
// mutation goes through the manager.
func (m *Manager) Store() *model.Store {
	return m.store
}

// Identity returns the current client identity.
func (m *Manager) Identity() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identityID
}

// Sending reports whether a send is in flight.
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// Hydrating reports whether any history fetch is in flight.
func (m *Manager) Hydrating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hydratingConvs) > 0
}

// RenderItems projects the active conversation through the pairing
// engine with the current in-flight flags.
func (m *Manager) RenderItems(defaults []model.QuickReply) []render.Item {
	m.mu.Lock()
	sending := m.sending
	hydrating := len(m.hydratingConvs) > 0
	m.mu.Unlock()

	var msgs []*model.Message
	if conv := m.store.Active(); conv != nil {
		msgs = conv.Messages
	}
	return render.Items(msgs, sending, hydrating, defaults)
}

// =============================================================================
// MESSAGE DISPATCH
// =============================================================================

// Send dispatches one user turn to the backend.
//
// The user message is appended optimistically before the network call;
// on failure nothing is rolled back and no assistant message appears,
// leaving a trailing unanswered user message the pairing engine
// renders as pending (while in flight) or orphan (after). Retry is
// the user resending.
//
// If no conversation is active, the first message implicitly starts
// one. Only one send may be outstanding at a time; a second call
// while one is in flight is rejected without touching any state.
func (m *Manager) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return ErrSendInFlight
	}

	// The completion below writes to this conversation id no matter
	// what becomes active in the meantime.
	var convID string
	if conv := m.store.Active(); conv != nil {
		convID = conv.ID
	} else {
		convID = m.store.CreateConversation()
	}

	if err := m.store.AppendMessage(convID, model.NewUserMessage(trimmed)); err != nil {
		m.mu.Unlock()
		return err
	}
	m.sending = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
	}()

	result, err := m.back.Chat(ctx, backend.ChatRequest{
		UserID:    m.Identity(),
		Message:   text,
		SessionID: convID,
	})
	if err != nil {
		log.Printf("[scoopchat] send failed: %v", err)
		return err
	}

	reply := model.NewAssistantMessage(result.Text, toModelQuickReplies(result.QuickReplies))
	if err := m.store.AppendMessage(convID, reply); err != nil {
		// Conversation gone means the store was cleared by a deletion
		// while the send was in flight; drop the reply.
		log.Printf("[scoopchat] reply dropped: %v", err)
		return err
	}
	return nil
}

// =============================================================================
// SESSION DIRECTORY
// =============================================================================

// LoadSessions fetches the session directory and merges it into the
// store. It runs at most once per identity per process lifetime; the
// guard trips on the first call no matter how it ends, so a failed
// load behaves exactly like an empty directory.
func (m *Manager) LoadSessions(ctx context.Context) error {
	m.mu.Lock()
	if m.sessionsLoaded || m.state == StateDeleting {
		m.mu.Unlock()
		return nil
	}
	m.sessionsLoaded = true
	id := m.identityID
	m.mu.Unlock()

	sessions, err := m.back.ListSessions(ctx, id)
	if err != nil {
		log.Printf("[scoopchat] session list failed: %v", err)
		return err
	}

	summaries := make([]model.Summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, model.Summary{
			ID:        s.ID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	m.store.MergeDirectory(summaries)
	return nil
}

// =============================================================================
// SELECTION AND HYDRATION
// =============================================================================

// Select makes a conversation active and hydrates its history if it
// has none yet. At most one fetch per conversation is outstanding; a
// re-select while loading is a no-op beyond the selection itself.
//
// A hydration snapshot that comes back after local messages were
// appended to the same conversation is dropped: last write wins by
// logical order, not by completion order.
func (m *Manager) Select(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	conv := m.store.Get(conversationID)
	if conv == nil {
		m.mu.Unlock()
		return ErrUnknownConversation
	}
	m.store.SetActive(conversationID)

	if conv.MessageCount() > 0 || m.hydratingConvs[conversationID] {
		m.mu.Unlock()
		return nil
	}
	m.hydratingConvs[conversationID] = true
	baseline := conv.MessageCount()
	m.mu.Unlock()

	history, err := m.back.GetHistory(ctx, conversationID)

	m.mu.Lock()
	delete(m.hydratingConvs, conversationID)
	if err != nil {
		m.mu.Unlock()
		log.Printf("[scoopchat] history load failed: %v", err)
		return err
	}

	current := m.store.Get(conversationID)
	if current == nil {
		// Cleared by a deletion while the fetch was outstanding.
		m.mu.Unlock()
		return nil
	}
	if current.MessageCount() > baseline {
		// The user sent something while the fetch was outstanding;
		// the snapshot is logically older than local state.
		m.mu.Unlock()
		log.Printf("[scoopchat] stale history for %s dropped", conversationID)
		return nil
	}

	msgs := make([]*model.Message, 0, len(history))
	for i, h := range history {
		msgs = append(msgs, model.NewHydratedMessage(conversationID, i, model.Role(h.Role), h.Content))
	}
	err = m.store.ReplaceMessages(conversationID, msgs)
	m.mu.Unlock()
	return err
}

// SelectNone deselects the active conversation: the empty "new chat"
// state where the next send starts a conversation.
func (m *Manager) SelectNone() {
	m.store.SetActive("")
}

// =============================================================================
// HELPERS
// =============================================================================

// toModelQuickReplies maps wire quick replies to model ones.
func toModelQuickReplies(in []backend.QuickReply) []model.QuickReply {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.QuickReply, len(in))
	for i, qr := range in {
		out[i] = model.QuickReply{Title: qr.Title, Payload: qr.Payload}
	}
	return out
}
