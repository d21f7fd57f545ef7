// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &StoreError{Message: "conversation not found"}

// StoreError represents a conversation store error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// DIRECTORY SUMMARY
// =============================================================================

// Summary is a directory entry for a conversation whose messages have
// not been hydrated yet.
type Summary struct {
	ID        string
	Title     string
	CreatedAt string
	UpdatedAt string
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store is the authoritative in-memory ordered collection of
// conversations. Mutations never edit the current slice in place:
// each one builds a replacement collection (cloning the touched
// conversation) and swaps it in, so a snapshot taken before a send
// completes is never half-updated underneath its reader.
type Store struct {
	mu            sync.RWMutex
	conversations []*Conversation
	activeID      string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		conversations: make([]*Conversation, 0),
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateConversation adds a new empty conversation at the front of
// the list, makes it active, and returns its ID. New chats sort
// before hydrated history, matching how the directory orders by
// recency.
func (s *Store) CreateConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := NewConversation()
	next := make([]*Conversation, 0, len(s.conversations)+1)
	next = append(next, conv)
	next = append(next, s.conversations...)
	s.conversations = next
	s.activeID = conv.ID
	return conv.ID
}

// AppendMessage appends a message to a conversation. Append is the
// only way messages enter a live conversation; the store never
// reorders or deduplicates. If this is the conversation's first
// message and it is from the user, the title is derived from it.
func (s *Store) AppendMessage(conversationID string, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(conversationID)
	if idx < 0 {
		return ErrConversationNotFound
	}

	conv := s.conversations[idx].Clone()
	if conv.IsEmpty() && msg.Role == RoleUser {
		conv.Title = msg.Preview(TitleMaxLen)
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	s.replaceAt(idx, conv)
	return nil
}

// ReplaceMessages swaps a conversation's entire message slice. This
// is how hydration lands: whole-array replace, never a merge, which
// is what keeps client and synthesized message ID spaces disjoint.
func (s *Store) ReplaceMessages(conversationID string, msgs []*Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(conversationID)
	if idx < 0 {
		return ErrConversationNotFound
	}

	conv := s.conversations[idx].Clone()
	conv.Messages = make([]*Message, len(msgs))
	copy(conv.Messages, msgs)

	s.replaceAt(idx, conv)
	return nil
}

// MergeDirectory adds directory entries the store doesn't know yet as
// message-less conversations. Conversations already present (by id)
// are left untouched, so a directory load completing after the user
// started a new chat can't clobber it.
func (s *Store) MergeDirectory(summaries []Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.conversations))
	for _, conv := range s.conversations {
		known[conv.ID] = true
	}

	next := make([]*Conversation, 0, len(s.conversations)+len(summaries))
	next = append(next, s.conversations...)
	for _, sum := range summaries {
		if known[sum.ID] {
			continue
		}
		title := sum.Title
		if title == "" {
			title = DefaultTitle
		}
		next = append(next, &Conversation{
			ID:        sum.ID,
			Title:     title,
			Messages:  make([]*Message, 0),
			CreatedAt: sum.CreatedAt,
			UpdatedAt: sum.UpdatedAt,
		})
	}
	s.conversations = next
}

// SetActive selects a conversation by ID. Pass "" to deselect, which
// is the "new chat" state where the next send creates a conversation.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// Clear drops every conversation and the active selection. Only full
// data deletion calls this.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make([]*Conversation, 0)
	s.activeID = ""
}

// =============================================================================
// READS
// =============================================================================

// All returns the current ordered snapshot of conversations. The
// returned slice is the caller's to iterate; the store will never
// mutate it after handing it out.
func (s *Store) All() []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*Conversation, len(s.conversations))
	copy(snapshot, s.conversations)
	return snapshot
}

// Active returns the active conversation, or nil when none selected.
func (s *Store) Active() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil
	}
	if idx := s.indexOf(s.activeID); idx >= 0 {
		return s.conversations[idx]
	}
	return nil
}

// ActiveID returns the active conversation's ID, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns a conversation by ID, or nil.
func (s *Store) Get(id string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.conversations[idx]
	}
	return nil
}

// Count returns the number of conversations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// =============================================================================
// INTERNAL HELPERS (callers hold s.mu)
// =============================================================================

// indexOf finds a conversation's position, or -1.
func (s *Store) indexOf(id string) int {
	for i, conv := range s.conversations {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// replaceAt swaps one conversation into a fresh collection copy.
func (s *Store) replaceAt(idx int, conv *Conversation) {
	next := make([]*Conversation, len(s.conversations))
	copy(next, s.conversations)
	next[idx] = conv
	s.conversations = next
}
