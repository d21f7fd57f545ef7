// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

// =============================================================================
// WIRE TYPES
// =============================================================================

// Session is one directory entry from GET /sessions/{identity}.
// Timestamps are opaque strings; the client displays them at most.
type Session struct {
	ID        string `json:"session_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// sessionsResponse is the GET /sessions/{identity} body.
type sessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// HistoryMessage is one entry from GET /session/{id}/history.
// Persisted history carries role and content only; quick replies are
// not part of it.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// historyResponse is the GET /session/{id}/history body.
type historyResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// QuickReply is a suggested follow-up attached to a chat response.
type QuickReply struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// chatResponse is the POST /chat body. The response text lives in one
// of three fields depending on backend generation; ResolveText picks
// the first populated one.
type chatResponse struct {
	ResponseTextGeo string       `json:"response_text_geo,omitempty"`
	Response        string       `json:"response,omitempty"`
	Text            string       `json:"text,omitempty"`
	QuickReplies    []QuickReply `json:"quick_replies,omitempty"`
}

// resolveText returns the assistant text, preferring the current
// field name and falling back to the two legacy ones in order.
func (r *chatResponse) resolveText() string {
	if r.ResponseTextGeo != "" {
		return r.ResponseTextGeo
	}
	if r.Response != "" {
		return r.Response
	}
	return r.Text
}

// ChatResult is the decoded outcome of a chat call.
type ChatResult struct {
	Text         string
	QuickReplies []QuickReply
}
