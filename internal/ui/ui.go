package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/blastoff/internal/broadcast"
	"github.com/desertthunder/blastoff/internal/client"
	"github.com/desertthunder/blastoff/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ComposeView ViewState = iota
	PlatformView
	ConfirmView
	SendView
	ResultView
)

// Indices into the enhancement field inputs.
const (
	fieldTitle = iota
	fieldURL
	fieldImageURL
	fieldWebhookURL
	fieldCount
)

// focusMessage marks the textarea as focused; field inputs start after it.
const focusMessage = -1

type statusesFetchedMsg struct {
	statuses []models.ConnectionStatus
	err      error
}

type blastSentMsg struct {
	result *models.BroadcastResult
	err    error
}

// Model represents the composer TUI state.
type Model struct {
	ctx    context.Context
	api    *client.Client
	view   ViewState
	width  int
	height int

	message textarea.Model
	fields  [fieldCount]textinput.Model
	focus   int

	statuses []models.ConnectionStatus
	selected map[string]bool
	cursor   int

	result *models.BroadcastResult
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a composer model over an API client.
func NewModel(ctx context.Context, api *client.Client) *Model {
	message := textarea.New()
	message.Placeholder = "What's the announcement?"
	message.CharLimit = 280
	message.Focus()

	var fields [fieldCount]textinput.Model
	placeholders := [fieldCount]string{
		"Title (optional)",
		"Link URL (optional)",
		"Image URL (optional, required for Instagram)",
		"Discord webhook URL (optional)",
	}
	for i := range fields {
		fields[i] = textinput.New()
		fields[i].Placeholder = placeholders[i]
	}

	return &Model{
		ctx:      ctx,
		api:      api,
		view:     ComposeView,
		message:  message,
		fields:   fields,
		focus:    focusMessage,
		selected: make(map[string]bool),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init fetches the platform connection states that gate the platform toggles.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatuses(), textarea.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.message.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ComposeView:
			return m.handleComposeKeys(msg)
		case PlatformView:
			return m.handlePlatformKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case statusesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.statuses = msg.statuses
		return m, nil

	case blastSentMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ComposeView:
		return m.renderCompose()
	case PlatformView:
		return m.renderPlatforms()
	case ConfirmView:
		return m.renderConfirm()
	case SendView:
		return m.renderSend()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleComposeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "ctrl+d":
		if strings.TrimSpace(m.message.Value()) == "" {
			return m, nil
		}
		m.view = PlatformView
		return m, nil
	}

	return m.updateInputs(msg)
}

// cycleFocus moves input focus between the message textarea and the
// enhancement fields.
func (m *Model) cycleFocus(delta int) {
	if m.focus == focusMessage {
		m.message.Blur()
	} else {
		m.fields[m.focus].Blur()
	}

	m.focus += delta
	if m.focus >= fieldCount {
		m.focus = focusMessage
	}
	if m.focus < focusMessage {
		m.focus = fieldCount - 1
	}

	if m.focus == focusMessage {
		m.message.Focus()
	} else {
		m.fields[m.focus].Focus()
	}
}

func (m *Model) handlePlatformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ComposeView
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.statuses)-1 {
			m.cursor++
		}
		return m, nil
	case " ":
		if m.cursor < len(m.statuses) {
			platform := m.statuses[m.cursor].Platform
			if m.targetable(platform) {
				m.selected[platform] = !m.selected[platform]
			}
		}
		return m, nil
	case "enter":
		if len(m.enabledPlatforms()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = PlatformView
		return m, nil
	case "y":
		m.view = SendView
		return m, m.blastOff()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ComposeView
		m.result = nil
		m.err = nil
		m.message.Reset()
		m.message.Focus()
		m.focus = focusMessage
		return m, m.fetchStatuses()
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ComposeView {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusMessage {
		m.message, cmd = m.message.Update(msg)
	} else {
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	}
	return m, cmd
}

// targetable reports whether a platform can be toggled on: it must be
// connected, except Discord which is also available through a webhook URL.
func (m *Model) targetable(platform string) bool {
	for _, s := range m.statuses {
		if s.Platform != platform {
			continue
		}
		if s.Connected {
			return true
		}
		if platform == models.PlatformDiscord && m.fields[fieldWebhookURL].Value() != "" {
			return true
		}
	}
	return false
}

func (m *Model) enabledPlatforms() []string {
	enabled := []string{}
	for _, p := range models.BroadcastOrder {
		if m.selected[p] {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

func (m *Model) request() broadcast.Request {
	return broadcast.Request{
		Announcement: models.Announcement{
			Message:  m.message.Value(),
			Title:    m.fields[fieldTitle].Value(),
			URL:      m.fields[fieldURL].Value(),
			ImageURL: m.fields[fieldImageURL].Value(),
		},
		Platforms:  m.enabledPlatforms(),
		WebhookURL: m.fields[fieldWebhookURL].Value(),
	}
}

func (m *Model) fetchStatuses() tea.Cmd {
	return func() tea.Msg {
		statuses, err := m.api.Statuses(m.ctx)
		return statusesFetchedMsg{statuses: statuses, err: err}
	}
}

func (m *Model) blastOff() tea.Cmd {
	req := m.request()
	return func() tea.Msg {
		result, err := m.api.BlastOff(m.ctx, req)
		return blastSentMsg{result: result, err: err}
	}
}

func (m *Model) renderCompose() string {
	title := styles.title.Render("Compose Announcement")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.message.View())
	b.WriteString("\n\n")
	for i := range m.fields {
		b.WriteString(m.fields[i].View())
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.done, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderPlatforms() string {
	title := styles.title.Render("Choose Platforms")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	for i, s := range m.statuses {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		check := "[ ]"
		if m.selected[s.Platform] {
			check = "[x]"
		}

		line := fmt.Sprintf("%s%s %s", cursor, check, s.Platform)
		switch {
		case s.Connected:
			line += styles.ok.Render(fmt.Sprintf("  (%s)", s.DisplayName))
		case m.targetable(s.Platform):
			line += styles.warn.Render("  (webhook)")
		default:
			line = styles.dim.Render(line + "  (not connected)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Ready for blast off?")
	preview := m.message.Value()
	if len(preview) > 120 {
		preview = preview[:120] + "…"
	}

	info := fmt.Sprintf("\nMessage: %s\nPlatforms: %s\n",
		preview, strings.Join(m.enabledPlatforms(), ", "))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSend() string {
	return styles.title.Render("Blasting off...") + "\n\nPosting to platforms, hang tight."
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Broadcast failed: %v\n\nPress r to compose again, q to quit", m.err))
	}
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to compose again, q to quit")
	}

	title := styles.ok.Render("🚀 Blast Off Complete")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, e := range m.result.Entries {
		if e.Success {
			b.WriteString(styles.ok.Render("✓ " + e.Platform))
		} else {
			b.WriteString(styles.err.Render("✗ " + e.Platform))
		}
		b.WriteString("  ")
		b.WriteString(e.Detail)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%d/%d platforms posted\n\n", m.result.Succeeded(), len(m.result.Entries)))

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}
