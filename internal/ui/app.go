// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/scoopchat/internal/chat"
	"github.com/jeranaias/scoopchat/internal/model"
)

// =============================================================================
// STARTER CONTENT
// =============================================================================

// category is a conversation starter shown on the empty screen.
type category struct {
	title       string
	description string
	message     string
}

var categories = []category{
	{
		title:       "კუნთის ზრდა",
		description: "მირჩიე პროტეინი და გეინერი",
		message:     "მინდა კუნთის მასის მომატება. რომელი პროტეინი და გეინერი მირჩევ?",
	},
	{
		title:       "ენერგია და ძალა",
		description: "მირჩიე კრეატინი და Pre-workout",
		message:     "მინდა ენერგიის და ძალის გაზრდა. რომელი კრეატინი და Pre-workout მირჩევ?",
	},
	{
		title:       "წონის კლება",
		description: "ცხიმისმწველები და L-კარნიტინი",
		message:     "მინდა წონის დაკლება. რომელი ცხიმისმწველი და L-კარნიტინი მირჩევ?",
	},
	{
		title:       "ჯანმრთელობა",
		description: "ვიტამინები და ომეგა-3",
		message:     "მინდა ჯანმრთელობის გაუმჯობესება. რომელი ვიტამინები და ომეგა-3 მირჩევ?",
	},
}

// DefaultQuickReplies are offered when an assistant reply carries none
// of its own.
var DefaultQuickReplies = []model.QuickReply{
	{Title: "Whey vs Isolate შეადარე", Payload: "compare"},
	{Title: "კუნთის ზრდისთვის რა არის საუკეთესო?", Payload: "muscle"},
	{Title: "100₾-მდე ვარიანტები", Payload: "budget"},
	{Title: "ყველაზე პოპულარული პროდუქტი", Payload: "popular"},
}

// =============================================================================
// MODEL
// =============================================================================

type focusZone int

const (
	focusComposer focusZone = iota
	focusSidebar
)

const sidebarWidth = 28

// Model is the root Bubble Tea model for the chat interface.
type Model struct {
	mgr   *chat.Manager
	theme *Theme
	keys  KeyMap

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	focus     focusZone
	cursor    int
	statusErr string
}

// New builds the root model around a chat manager.
func New(mgr *chat.Manager) *Model {
	theme := NewTheme()

	ti := textinput.New()
	ti.Placeholder = "დაწერე შეტყობინება..."
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.PendingText),
	)

	return &Model{
		mgr:   mgr,
		theme: theme,
		keys:  DefaultKeyMap(),
		input: ti,
		spin:  sp,
	}
}

// Init starts the spinner, the input cursor, and the directory fetch.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		LoadSessionsCmd(m.mgr),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.mgr.Sending() || m.mgr.Hydrating() {
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
		return m, cmd

	case SessionsLoadedMsg:
		if msg.Err != nil {
			m.statusErr = "სესიების ჩატვირთვა ვერ მოხერხდა"
		}
		return m, nil

	case SendDoneMsg:
		if msg.Err != nil {
			m.statusErr = "შეტყობინება ვერ გაიგზავნა, სცადე თავიდან"
		} else {
			m.statusErr = ""
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case HydratedMsg:
		if msg.Err != nil {
			m.statusErr = "ისტორიის ჩატვირთვა ვერ მოხერხდა"
		} else {
			m.statusErr = ""
		}
		// A fetch that finished for a conversation the user already
		// navigated away from must not move the viewport.
		if msg.ConversationID == m.mgr.Store().ActiveID() {
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
		return m, nil

	case DeleteDoneMsg:
		if msg.Err != nil {
			m.statusErr = "მონაცემების წაშლა ვერ მოხერხდა"
		} else {
			m.statusErr = ""
			m.cursor = 0
			m.focus = focusComposer
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	transcriptWidth := m.width - sidebarWidth - 2
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := m.height - 5
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(transcriptWidth, transcriptHeight)
		m.ready = true
	} else {
		m.viewport.Width = transcriptWidth
		m.viewport.Height = transcriptHeight
	}
	m.input.Width = m.width - 6

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(transcriptWidth-2),
	); err == nil {
		m.renderer = r
	}

	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Overlays capture all input until answered.
	switch m.mgr.State() {
	case chat.StateConsentUnknown:
		return m.handleConsentKey(msg)
	case chat.StateConfirmingDelete:
		return m.handleDeleteConfirmKey(msg)
	case chat.StateDeleting:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.FocusToggle):
		m.toggleFocus()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.mgr.SelectNone()
		m.focus = focusComposer
		m.input.Focus()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.DeleteData):
		if err := m.mgr.RequestDelete(); err == nil {
			m.statusErr = ""
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleConsentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.mgr.AcceptConsent()
	case key.Matches(msg, m.keys.Reject):
		m.mgr.RejectConsent()
	}
	return m, nil
}

func (m *Model) handleDeleteConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		return m, ConfirmDeleteCmd(m.mgr)
	case key.Matches(msg, m.keys.Reject), msg.String() == "esc":
		m.mgr.CancelDelete()
	}
	return m, nil
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.mgr.Store().All()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(convs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.cursor < len(convs) {
			id := convs[m.cursor].ID
			m.focus = focusComposer
			m.input.Focus()
			m.refreshTranscript()
			return m, SelectCmd(m.mgr, id)
		}
	}
	return m, nil
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		if m.mgr.Sending() {
			return m, nil
		}
		m.input.SetValue("")
		return m, SendCmd(m.mgr, text)
	}

	// On the empty screen a bare digit picks a conversation starter.
	if m.input.Value() == "" && m.mgr.Store().Active() == nil {
		if idx := starterIndex(msg.String()); idx >= 0 && idx < len(categories) {
			m.input.SetValue(categories[idx].message)
			m.input.CursorEnd()
			return m, nil
		}
	}

	// Alt+digit sends the matching quick reply of the latest turn.
	if reply, ok := m.quickReplyForKey(msg.String()); ok {
		if !m.mgr.Sending() {
			return m, SendCmd(m.mgr, reply.Title)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// starterIndex maps "1".."9" to a zero-based index, -1 otherwise.
func starterIndex(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

// quickReplyForKey resolves alt+1..alt+9 to a quick reply of the most
// recent completed turn.
func (m *Model) quickReplyForKey(s string) (model.QuickReply, bool) {
	if !strings.HasPrefix(s, "alt+") {
		return model.QuickReply{}, false
	}
	idx := starterIndex(strings.TrimPrefix(s, "alt+"))
	if idx < 0 {
		return model.QuickReply{}, false
	}
	replies := m.visibleQuickReplies()
	if idx >= len(replies) {
		return model.QuickReply{}, false
	}
	return replies[idx], true
}

// visibleQuickReplies returns the quick replies of the last rendered
// turn, if any.
func (m *Model) visibleQuickReplies() []model.QuickReply {
	items := m.mgr.RenderItems(DefaultQuickReplies)
	for i := len(items) - 1; i >= 0; i-- {
		if len(items[i].QuickReplies) > 0 {
			return items[i].QuickReplies
		}
	}
	return nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusComposer {
		m.focus = focusSidebar
		m.input.Blur()
	} else {
		m.focus = focusComposer
		m.input.Focus()
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}
