package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabbwatch/gabb"
)

// initEventsViewport initializes the event log viewport.
func (m *Model) initEventsViewport() {
	m.eventsViewport = viewport.New(m.width-4, m.height-4)
	m.eventsViewport.Style = lipgloss.NewStyle()
}

// updateEventsViewport updates the event viewport with current content.
func (m *Model) updateEventsViewport() {
	if m.eventsViewport.Width == 0 {
		m.initEventsViewport()
	}

	// Update dimensions
	// Box height = m.height - 2 (header, cmdbar)
	// Box inner = box height - 2 (top and bottom borders) = m.height - 4
	m.eventsViewport.Width = m.width - 4
	m.eventsViewport.Height = m.height - 4

	// Ensure viewport has focus background
	m.eventsViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	m.eventsViewport.SetContent(m.renderEventContent())
}

// handleEventsKey processes keyboard input for the event log view.
func (m *Model) handleEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Top):
		m.eventsViewport.GotoTop()

	case key.Matches(msg, m.keys.Bottom):
		m.eventsViewport.GotoBottom()

	case key.Matches(msg, m.keys.Down):
		m.eventsViewport.ScrollDown(1)

	case key.Matches(msg, m.keys.Up):
		m.eventsViewport.ScrollUp(1)

	case key.Matches(msg, m.keys.HalfPageDown):
		m.eventsViewport.HalfPageDown()

	case key.Matches(msg, m.keys.HalfPageUp):
		m.eventsViewport.HalfPageUp()

	case key.Matches(msg, m.keys.PageDown):
		m.eventsViewport.PageDown()

	case key.Matches(msg, m.keys.PageUp):
		m.eventsViewport.PageUp()
	}

	return m, nil
}

// renderEvents renders the event log view.
func (m Model) renderEvents() string {
	contentHeight := m.height - 2 // Account for header + cmdbar

	title := fmt.Sprintf("Event Log (%d)", len(m.snapshot.Events))
	content := m.eventsViewport.View()

	// Events view is always focused when shown
	return m.renderTitledBox(title, content, m.width, contentHeight, true)
}

// renderEventContent renders event log lines, newest first.
func (m *Model) renderEventContent() string {
	// Events view is always focused when shown, so use FocusBg
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.eventsViewport.Width

	events := m.sortedEvents()
	if len(events) == 0 {
		return bg.FillLine(bg.Render("No events yet", styles.MutedText), width)
	}

	names := deviceNames(m.snapshot.Devices)

	var b strings.Builder
	for i, event := range events {
		timestamp := bg.Render(fmt.Sprintf("%-12s", formatEventTime(event.CreatedAt.Time)), styles.FaintText)

		typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(event.Type)))
		if strings.EqualFold(event.Type, "sos") {
			typeStyle = typeStyle.Bold(true)
		}
		typePart := bg.Render(fmt.Sprintf("%-12s", eventTypeLabel(event.Type)), typeStyle)

		name := names[event.DeviceID]
		if name == "" {
			name = fmt.Sprintf("#%d", event.DeviceID)
		}
		namePart := bg.Render(fmt.Sprintf("%-14s", truncate(name, 14)), styles.AccentText)

		message := strings.TrimSpace(event.Message)
		messagePart := bg.Render(truncate(message, max(width-41, 10)), styles.Text)

		line := timestamp + typePart + namePart + messagePart
		b.WriteString(bg.FillLine(line, width))
		if i < len(events)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// sortedEvents returns the account's events newest first.
func (m Model) sortedEvents() []gabb.Event {
	events := make([]gabb.Event, len(m.snapshot.Events))
	copy(events, m.snapshot.Events)

	sort.SliceStable(events, func(i, j int) bool {
		ti := events[i].CreatedAt.Time
		tj := events[j].CreatedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		// Higher IDs are newer
		return events[i].ID > events[j].ID
	})

	return events
}

// eventTypeLabel returns the display label for an event type.
func eventTypeLabel(eventType string) string {
	if strings.EqualFold(eventType, "sos") {
		return "SOS"
	}
	return titleCase(eventType)
}

// deviceNames builds a device ID to display name lookup.
func deviceNames(devices []gabb.MapDevice) map[int64]string {
	names := make(map[int64]string, len(devices))
	for _, device := range devices {
		names[device.ID] = deviceLabel(device)
	}
	return names
}

// formatEventTime renders an event timestamp, with the date included once the
// event is no longer from today.
func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.Local()
	now := time.Now()
	if local.Year() == now.Year() && local.YearDay() == now.YearDay() {
		return local.Format("15:04:05")
	}
	return local.Format("Jan 2 15:04")
}
