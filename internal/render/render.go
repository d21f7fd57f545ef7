// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/jeranaias/scoopchat/internal/model"

// =============================================================================
// ITEM KIND
// =============================================================================

// Kind classifies a render item.
type Kind int

const (
	// KindSkeleton is the single placeholder shown while history is
	// being hydrated. Messages are ignored entirely in that state.
	KindSkeleton Kind = iota

	// KindEmpty marks the empty state: no conversation started, or an
	// active conversation with zero messages. The presentation layer
	// fills it with category prompts.
	KindEmpty

	// KindPair is a completed turn: user message plus assistant reply.
	KindPair

	// KindPending is a trailing user message whose reply is still in
	// flight.
	KindPending

	// KindOrphan is a message that could not be placed into a turn:
	// an unanswered user message after a failed send, or an assistant
	// message with no user message in front of it.
	KindOrphan
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSkeleton:
		return "skeleton"
	case KindEmpty:
		return "empty"
	case KindPair:
		return "pair"
	case KindPending:
		return "pending"
	case KindOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

// =============================================================================
// RENDER ITEM
// =============================================================================

// Item is one renderable unit. Which fields are set depends on Kind:
// pairs carry User, Assistant and QuickReplies; pending carries User;
// orphans carry Message. Skeleton and empty carry nothing.
type Item struct {
	Kind Kind

	User      *model.Message
	Assistant *model.Message
	Message   *model.Message

	// QuickReplies is what the pair should offer below the assistant
	// reply. When the assistant message carried none (nil or empty),
	// this holds the caller-supplied defaults, so downstream never
	// has to distinguish the two.
	QuickReplies []model.QuickReply

	// Anchor marks the start of the most recent exchange. The
	// presentation layer scrolls this item into view, as opposed to
	// scrolling to the very end while a send is pending.
	Anchor bool
}

// =============================================================================
// PAIRING
// =============================================================================

// Items projects a message sequence into render items.
//
// The scan walks left to right with one lookahead slot:
//   - user followed by assistant  -> pair, consume both
//   - user, last, send in flight  -> pending
//   - anything else               -> orphan
//
// Two consecutive unanswered user messages come out as two
// independent orphans, never merged. The last pair or pending item
// is tagged as the scroll anchor.
func Items(msgs []*model.Message, sending, hydrating bool, defaults []model.QuickReply) []Item {
	if hydrating {
		return []Item{{Kind: KindSkeleton}}
	}
	if len(msgs) == 0 {
		return []Item{{Kind: KindEmpty}}
	}

	items := make([]Item, 0, len(msgs))
	for i := 0; i < len(msgs); {
		msg := msgs[i]

		if msg.Role == model.RoleUser && i+1 < len(msgs) && msgs[i+1].Role == model.RoleAssistant {
			assistant := msgs[i+1]
			qrs := assistant.QuickReplies
			if len(qrs) == 0 {
				// Absent and explicitly empty both mean "offer the
				// defaults", not "offer nothing".
				qrs = defaults
			}
			items = append(items, Item{
				Kind:         KindPair,
				User:         msg,
				Assistant:    assistant,
				QuickReplies: qrs,
			})
			i += 2
			continue
		}

		if msg.Role == model.RoleUser && i == len(msgs)-1 && sending {
			items = append(items, Item{Kind: KindPending, User: msg})
			i++
			continue
		}

		items = append(items, Item{Kind: KindOrphan, Message: msg})
		i++
	}

	markAnchor(items)
	return items
}

// markAnchor tags the last pair or pending item.
func markAnchor(items []Item) {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind == KindPair || items[i].Kind == KindPending {
			items[i].Anchor = true
			return
		}
	}
}
