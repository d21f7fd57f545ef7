// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// COLOR PALETTE
// =============================================================================

// palette holds the concrete colors for one terminal capability class.
type palette struct {
	pine   lipgloss.Color
	gold   lipgloss.Color
	brick  lipgloss.Color
	subtle lipgloss.Color
	faint  lipgloss.Color
}

// paletteFor picks colors for the detected terminal. Truecolor
// terminals get the storefront brand hex values; everything else gets
// the closest ANSI-256 approximations. The gray tones flip with the
// background so dim text stays readable on light terminals.
func paletteFor(profile termenv.Profile, dark bool) palette {
	p := palette{
		pine:  lipgloss.Color("#0A7364"),
		gold:  lipgloss.Color("#D9B444"),
		brick: lipgloss.Color("#CC3348"),
	}
	if profile != termenv.TrueColor {
		p.pine = lipgloss.Color("30")
		p.gold = lipgloss.Color("178")
		p.brick = lipgloss.Color("167")
	}
	if dark {
		p.subtle = lipgloss.Color("243")
		p.faint = lipgloss.Color("238")
	} else {
		p.subtle = lipgloss.Color("244")
		p.faint = lipgloss.Color("252")
	}
	return p
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the application.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarItemActive   lipgloss.Style
	SidebarEmpty        lipgloss.Style

	UserBubble     lipgloss.Style
	AssistantLabel lipgloss.Style
	PendingText    lipgloss.Style
	SkeletonLine   lipgloss.Style

	QuickReplyChip lipgloss.Style
	CategoryTitle  lipgloss.Style
	CategoryDesc   lipgloss.Style
	Greeting       lipgloss.Style

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	OverlayBox     lipgloss.Style
	OverlayTitle   lipgloss.Style
	OverlayBody    lipgloss.Style
	OverlayDanger  lipgloss.Style
	OverlayConfirm lipgloss.Style
}

// NewTheme builds the theme for the detected terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	dark := termenv.HasDarkBackground()
	return newThemeFor(profile, dark)
}

// newThemeFor builds a theme for an explicit capability class.
func newThemeFor(profile termenv.Profile, dark bool) *Theme {
	t := &Theme{
		IsDark:       dark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	p := paletteFor(profile, dark)

	t.Header = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.subtle)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.pine)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.faint).
		PaddingRight(1)
	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.subtle).
		Padding(0, 1)
	t.SidebarItem = lipgloss.NewStyle().
		Padding(0, 1)
	t.SidebarItemSelected = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(p.gold)
	t.SidebarItemActive = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(p.pine)
	t.SidebarEmpty = lipgloss.NewStyle().
		Padding(1, 1).
		Foreground(p.faint).
		Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.pine).
		Padding(0, 1)
	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.pine)
	t.PendingText = lipgloss.NewStyle().
		Foreground(p.subtle).
		Italic(true)
	t.SkeletonLine = lipgloss.NewStyle().
		Foreground(p.faint)

	t.QuickReplyChip = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.gold).
		Padding(0, 1)
	t.CategoryTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.pine)
	t.CategoryDesc = lipgloss.NewStyle().
		Foreground(p.subtle)
	t.Greeting = lipgloss.NewStyle().
		Bold(true).
		Padding(1, 0)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.faint).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.pine)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.subtle).
		Padding(0, 1)
	t.StatusError = lipgloss.NewStyle().
		Foreground(p.brick).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.gold)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(p.subtle)

	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.pine).
		Padding(1, 2)
	t.OverlayTitle = lipgloss.NewStyle().
		Bold(true)
	t.OverlayBody = lipgloss.NewStyle().
		Foreground(p.subtle)
	t.OverlayDanger = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(p.brick).
		Padding(1, 2)
	t.OverlayConfirm = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.brick)

	return t
}
