// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity produces and persists the stable client identity
// and the history-consent flag. Both live in one profile file and are
// the only local state scoopchat keeps; they are cleared together by
// full data deletion and regenerated together afterwards.
//
// The provider is purely local: no network, read-through cache in
// process memory, atomic writes on disk.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/scoopchat/internal/util"
)

// ProfileFileName is the profile file inside the profile directory.
const ProfileFileName = "profile.json"

// =============================================================================
// CONSENT STATE
// =============================================================================

// Consent is the tri-state history-persistence flag.
type Consent string

const (
	// ConsentUnknown means the user has never been asked.
	ConsentUnknown Consent = "unknown"
	// ConsentGranted means history may be persisted server-side.
	ConsentGranted Consent = "granted"
	// ConsentDenied means the user declined history persistence.
	ConsentDenied Consent = "denied"
)

// =============================================================================
// PROVIDER
// =============================================================================

// profile is the on-disk shape.
type profile struct {
	UserID  string `json:"user_id"`
	Consent string `json:"consent,omitempty"`
}

// Provider owns the persisted identity and consent flag.
type Provider struct {
	mu      sync.Mutex
	dir     string
	loaded  bool
	profile profile
}

// NewProvider creates a provider storing its profile under dir.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// GetOrCreate reads the persisted identity, generating and persisting
// one if absent. Idempotent: every later call returns the same value
// until Rotate.
func (p *Provider) GetOrCreate() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.load()
	if p.profile.UserID != "" {
		return p.profile.UserID, nil
	}

	p.profile.UserID = generateIdentity()
	if err := p.persist(); err != nil {
		return "", err
	}
	return p.profile.UserID, nil
}

// Consent returns the persisted consent state.
func (p *Provider) Consent() Consent {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.load()
	switch Consent(p.profile.Consent) {
	case ConsentGranted, ConsentDenied:
		return Consent(p.profile.Consent)
	default:
		return ConsentUnknown
	}
}

// SetConsent persists the consent flag.
func (p *Provider) SetConsent(c Consent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.load()
	p.profile.Consent = string(c)
	return p.persist()
}

// Rotate discards the persisted identity and consent, generates a
// fresh identity, persists and returns it. Only full data deletion
// calls this. The in-memory identity rotates even if the persist
// fails, so the old identity is never reused after a deletion.
func (p *Provider) Rotate() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.load()
	p.profile = profile{UserID: generateIdentity()}
	err := p.persist()
	return p.profile.UserID, err
}

// =============================================================================
// PERSISTENCE (callers hold p.mu)
// =============================================================================

// load populates the cache from disk once. A missing or unreadable
// profile starts fresh; a half-written one can't occur because writes
// are atomic.
func (p *Provider) load() {
	if p.loaded {
		return
	}
	p.loaded = true

	data, err := os.ReadFile(p.path())
	if err != nil {
		return
	}
	var prof profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return
	}
	p.profile = prof
}

// persist writes the cached profile to disk atomically.
func (p *Provider) persist() error {
	data, err := json.MarshalIndent(p.profile, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(p.path(), data, 0600)
}

// path returns the profile file location.
func (p *Provider) path() string {
	return filepath.Join(p.dir, ProfileFileName)
}

// generateIdentity creates a fresh client identity.
func generateIdentity() string {
	return "widget_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
