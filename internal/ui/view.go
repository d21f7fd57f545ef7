// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/scoopchat/internal/chat"
	"github.com/jeranaias/scoopchat/internal/model"
	"github.com/jeranaias/scoopchat/internal/render"
)

// =============================================================================
// ROOT VIEW
// =============================================================================

// View renders the full interface.
func (m *Model) View() string {
	if !m.ready {
		return "იტვირთება..."
	}

	switch m.mgr.State() {
	case chat.StateConsentUnknown:
		return m.overlayView(m.consentOverlay())
	case chat.StateConfirmingDelete:
		return m.overlayView(m.deleteOverlay())
	case chat.StateDeleting:
		return m.overlayView(m.deletingOverlay())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarView(),
		m.viewport.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.composerView(),
		m.statusView(),
	)
}

func (m *Model) headerView() string {
	brand := m.theme.HeaderBrand.Render("Scoop")
	return m.theme.Header.Render(brand + " · კვების დანამატების ასისტენტი")
}

func (m *Model) composerView() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m *Model) statusView() string {
	if m.statusErr != "" {
		return m.theme.StatusError.Render(m.statusErr)
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) sidebarView() string {
	height := m.viewport.Height
	lines := []string{m.theme.SidebarTitle.Render("ბოლო საუბრები")}

	convs := m.mgr.Store().All()
	if len(convs) == 0 {
		lines = append(lines, m.theme.SidebarEmpty.Render("საუბრები არ არის..."))
	}
	activeID := m.mgr.Store().ActiveID()
	for i, conv := range convs {
		if len(lines) >= height {
			break
		}
		lines = append(lines, m.sidebarEntry(conv.Title, i, conv.ID == activeID))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) sidebarEntry(title string, idx int, active bool) string {
	label := truncateToWidth(title, sidebarWidth-4)
	switch {
	case m.focus == focusSidebar && idx == m.cursor:
		return m.theme.SidebarItemSelected.Render("› " + label)
	case active:
		return m.theme.SidebarItemActive.Render("• " + label)
	default:
		return m.theme.SidebarItem.Render("  " + label)
	}
}

// truncateToWidth trims a string to the given display width, which
// differs from rune count for wide glyphs.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m *Model) renderTranscript() string {
	items := m.mgr.RenderItems(DefaultQuickReplies)

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		switch item.Kind {
		case render.KindSkeleton:
			b.WriteString(m.skeletonView())
		case render.KindEmpty:
			b.WriteString(m.emptyView())
		case render.KindPair:
			b.WriteString(m.userView(item.User))
			b.WriteString("\n")
			b.WriteString(m.assistantView(item.Assistant, item.QuickReplies))
		case render.KindPending:
			b.WriteString(m.userView(item.User))
			b.WriteString("\n")
			b.WriteString(m.spin.View() + m.theme.PendingText.Render(" ასისტენტი წერს..."))
		case render.KindOrphan:
			if item.Message != nil && item.Message.Role == model.RoleAssistant {
				b.WriteString(m.assistantView(item.Message, nil))
			} else {
				b.WriteString(m.userView(item.Message))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) userView(msg *model.Message) string {
	if msg == nil {
		return ""
	}
	return m.theme.UserBubble.Render(msg.Content)
}

func (m *Model) assistantView(msg *model.Message, replies []model.QuickReply) string {
	if msg == nil {
		return ""
	}
	body := msg.Content
	if m.renderer != nil {
		if out, err := m.renderer.Render(msg.Content); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}
	view := m.theme.AssistantLabel.Render("Scoop") + "\n" + body
	if bar := m.quickReplyBar(replies); bar != "" {
		view += "\n" + bar
	}
	return view
}

func (m *Model) quickReplyBar(replies []model.QuickReply) string {
	if len(replies) == 0 {
		return ""
	}
	chips := make([]string, 0, len(replies))
	for i, r := range replies {
		chips = append(chips,
			m.theme.QuickReplyChip.Render(fmt.Sprintf("M-%d %s", i+1, r.Title)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m *Model) skeletonView() string {
	line := strings.Repeat("░", 40)
	return m.theme.SkeletonLine.Render(line + "\n" + line + "\n" + line)
}

func (m *Model) emptyView() string {
	var b strings.Builder
	b.WriteString(m.theme.Greeting.Render("რით შემიძლია დაგეხმაროთ დღეს?"))
	b.WriteString("\n")
	for i, c := range categories {
		b.WriteString(fmt.Sprintf("%s %s\n   %s\n",
			m.theme.ShortcutKey.Render(fmt.Sprintf("%d", i+1)),
			m.theme.CategoryTitle.Render(c.title),
			m.theme.CategoryDesc.Render(c.description)))
	}
	return b.String()
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) overlayView(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) consentOverlay() string {
	body := strings.Join([]string{
		m.theme.OverlayTitle.Render("ისტორიის შენახვა"),
		"",
		m.theme.OverlayBody.Render(wrapText(
			"გსურს რომ შევინახოთ შენი საუბრების ისტორია? "+
				"ეს საშუალებას მოგცემს ძველი საუბრების გაგრძელებას. "+
				"მონაცემები 7 დღის შემდეგ ავტომატურად იშლება.", 44)),
		"",
		m.theme.ShortcutKey.Render("y") + " დიახ    " +
			m.theme.ShortcutKey.Render("n") + " არა",
	}, "\n")
	return m.theme.OverlayBox.Render(body)
}

func (m *Model) deleteOverlay() string {
	body := strings.Join([]string{
		m.theme.OverlayConfirm.Render("მონაცემების წაშლა"),
		"",
		m.theme.OverlayBody.Render(wrapText(
			"დარწმუნებული ხარ? ეს წაშლის ყველა შენს საუბარს და მონაცემს. "+
				"ეს მოქმედება ვერ გაუქმებელია.", 44)),
		"",
		m.theme.ShortcutKey.Render("y") + " წაშლა    " +
			m.theme.ShortcutKey.Render("n") + " გაუქმება",
	}, "\n")
	return m.theme.OverlayDanger.Render(body)
}

func (m *Model) deletingOverlay() string {
	return m.theme.OverlayBox.Render(
		m.spin.View() + m.theme.OverlayBody.Render(" იშლება..."))
}

// wrapText folds a string at word boundaries to the given display
// width.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	var b strings.Builder
	lineWidth := 0
	for i, w := range words {
		ww := runewidth.StringWidth(w)
		if lineWidth > 0 && lineWidth+1+ww > width {
			b.WriteString("\n")
			lineWidth = 0
		} else if i > 0 {
			b.WriteString(" ")
			lineWidth++
		}
		b.WriteString(w)
		lineWidth += ww
	}
	return b.String()
}
