// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// ErrTimeout is returned when the transport deadline elapses.
var ErrTimeout = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://scoop-ai-sdk-358331686110.europe-west1.run.app"

// DefaultTimeout bounds every request; there is no application-level
// timeout on top of it.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: production Cloud Run).
	BaseURL string

	// Timeout for all requests (default: 30s).
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the assistant backend.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// SESSION DIRECTORY
// =============================================================================

// ListSessions fetches the directory of known sessions for an identity.
func (c *Client) ListSessions(ctx context.Context, identity string) ([]Session, error) {
	endpoint := c.config.BaseURL + "/sessions/" + url.PathEscape(identity)

	var result sessionsResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

// GetHistory fetches the full message history for one session.
func (c *Client) GetHistory(ctx context.Context, sessionID string) ([]HistoryMessage, error) {
	endpoint := c.config.BaseURL + "/session/" + url.PathEscape(sessionID) + "/history"

	var result historyResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one user turn and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResult, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ClientError{
			Type:    ErrTypeStatus,
			Message: "chat request failed: " + resp.Status,
		}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &ChatResult{
		Text:         result.resolveText(),
		QuickReplies: result.QuickReplies,
	}, nil
}

// =============================================================================
// DATA DELETION
// =============================================================================

// DeleteUserData asks the backend to delete everything stored for an
// identity. Success is status-only; no body is expected.
func (c *Client) DeleteUserData(ctx context.Context, identity string) error {
	endpoint := c.config.BaseURL + "/user/" + url.PathEscape(identity) + "/data"

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    ErrTypeStatus,
			Message: "delete request failed: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// getJSON performs a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ClientError{
			Type:    ErrTypeStatus,
			Message: "request failed: " + resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// transportError maps a transport failure to a typed error.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &ClientError{Type: ErrTypeConnection, Message: "backend unreachable", Cause: err}
}
