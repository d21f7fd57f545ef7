// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log"

	"github.com/jeranaias/scoopchat/internal/identity"
)

// =============================================================================
// LIFECYCLE STATE
// =============================================================================

// State is the data-lifecycle state machine position.
//
//	consentUnknown -> normal            (accept or reject consent)
//	normal         -> confirmingDelete  (request delete)
//	confirmingDelete -> normal          (cancel, or backend failure)
//	confirmingDelete -> deleting        (confirm)
//	deleting       -> consentUnknown    (backend success)
//	deleting       -> normal            (backend failure)
//
// No transition re-enters from deleting, which is what makes the
// delete request single-shot.
type State int

const (
	// StateConsentUnknown means the user has never answered the
	// history-persistence prompt (or a deletion just reset it).
	StateConsentUnknown State = iota

	// StateNormal is the ordinary chatting state.
	StateNormal

	// StateConfirmingDelete means the delete confirmation is showing.
	StateConfirmingDelete

	// StateDeleting means the deletion request is in flight.
	StateDeleting
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateConsentUnknown:
		return "consentUnknown"
	case StateNormal:
		return "normal"
	case StateConfirmingDelete:
		return "confirmingDelete"
	case StateDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// =============================================================================
// CONSENT
// =============================================================================

// AcceptConsent records that history may be persisted. Valid only
// while the consent prompt is showing.
func (m *Manager) AcceptConsent() error {
	return m.answerConsent(identity.ConsentGranted)
}

// RejectConsent records that the user declined history persistence.
// Beyond persisting the flag this changes nothing: the directory is
// still consulted, matching the shipped widget behavior.
func (m *Manager) RejectConsent() error {
	return m.answerConsent(identity.ConsentDenied)
}

// answerConsent persists a consent answer and leaves the prompt.
func (m *Manager) answerConsent(c identity.Consent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConsentUnknown {
		return ErrInvalidTransition
	}
	m.state = StateNormal
	if err := m.ids.SetConsent(c); err != nil {
		// The choice survives in memory for this run either way.
		log.Printf("[scoopchat] consent persist failed: %v", err)
		return err
	}
	return nil
}

// =============================================================================
// DELETION
// =============================================================================

// RequestDelete opens the delete confirmation.
func (m *Manager) RequestDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateNormal {
		return ErrInvalidTransition
	}
	m.state = StateConfirmingDelete
	return nil
}

// CancelDelete dismisses the delete confirmation.
func (m *Manager) CancelDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConfirmingDelete {
		return ErrInvalidTransition
	}
	m.state = StateNormal
	return nil
}

// ConfirmDelete issues the backend deletion for the current identity.
// All-or-nothing: on success the conversation collection is cleared,
// the identity rotated, the directory guard reset, and the consent
// prompt re-armed; on failure nothing local changes and the state
// returns to normal. Calling again while a deletion is in flight is
// rejected, so the delete request is never issued twice.
func (m *Manager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateConfirmingDelete {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	m.state = StateDeleting
	id := m.identityID
	m.mu.Unlock()

	err := m.back.DeleteUserData(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		log.Printf("[scoopchat] data deletion failed: %v", err)
		m.state = StateNormal
		return err
	}

	m.store.Clear()

	newID, rotateErr := m.ids.Rotate()
	if rotateErr != nil {
		// The in-memory identity still rotated; the profile write is
		// retried implicitly next time consent is persisted.
		log.Printf("[scoopchat] identity rotation persist failed: %v", rotateErr)
	}
	m.identityID = newID
	m.sessionsLoaded = false
	m.hydratingConvs = make(map[string]bool)
	m.state = StateConsentUnknown
	return nil
}
