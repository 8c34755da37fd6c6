package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gabbwatch/gabb"
)

// lowBatteryThreshold marks devices whose charge warrants a header warning.
const lowBatteryThreshold = 20

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasData {
		return m.renderConnectingHeader(styles, bg)
	}

	content := m.buildStatusContent(styles, bg)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// renderConnectingHeader shows the connecting/error state before the first
// successful poll.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	if m.snapshot.LastError != nil {
		errorMsg := classifyConnectionError(m.snapshot.LastError)

		parts := []string{
			bg.Render("gabbwatch", styles.Logo),
			bg.Render("FILIP "+errorMsg, styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		}

		// Point at the log file, the TUI swallows the details
		if m.logPath != "" {
			displayPath := truncateMiddle(m.logPath, 50)
			parts = append(parts,
				bg.Render("logs", styles.FaintText)+bg.Space()+
					bg.Render(displayPath, styles.MutedText))
		}

		return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
	}

	return styles.Header.Width(m.width).Render(
		bg.Render("gabbwatch", styles.Logo) + sep +
			bg.Render("Connecting to Gabb...", styles.WarningText.Bold(true)),
	)
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < 100

	var parts []string

	// Logo
	parts = append(parts, bg.Render("gabbwatch", styles.Logo))

	// Service reachability indicator
	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● DOWN", styles.DangerText))
	} else {
		parts = append(parts, bg.Render("● OK", styles.SuccessText))
	}

	// SOS indicator, right up front
	if sos := m.countSOSEvents(); sos > 0 {
		parts = append(parts,
			bg.Render("SOS", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(fmt.Sprintf("%d", sos), styles.DangerText),
		)
	}

	// Watch count with online fraction
	online, total := m.countOnline()
	onlineStyle := styles.SuccessText
	switch {
	case total > 0 && online == 0:
		onlineStyle = styles.DangerText
	case online < total:
		onlineStyle = styles.WarningText
	}
	watches := bg.Render("Watches:", styles.MutedText) + bg.Space() +
		bg.Render(fmt.Sprintf("%d/%d", online, total), onlineStyle)
	if !compact {
		watches += bg.Space() + bg.Render("online", styles.MutedText)
	}
	parts = append(parts, watches)

	// Event count
	parts = append(parts,
		bg.Render("Events:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Events)), styles.Text),
	)

	// Timestamp with relative time
	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	// Low battery warnings
	if batt := m.formatBatteryWarning(compact, styles, bg); batt != "" {
		parts = append(parts, batt)
	}

	// Error indicator (data shown is stale)
	if m.snapshot.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		errText := truncate(fmt.Sprintf("%v", m.snapshot.LastError), maxErr)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(errText, styles.DangerText),
		)
	}

	// Transient notice (locate results)
	if m.notice != "" {
		if m.noticeErr {
			parts = append(parts,
				bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
					bg.Render(m.notice, styles.WarningText),
			)
		} else {
			parts = append(parts, bg.Render(m.notice, styles.InfoText))
		}
	}

	return bg.Join(parts, "  ")
}

// countOnline returns how many devices are online and the total count.
func (m Model) countOnline() (online, total int) {
	total = len(m.snapshot.Devices)
	for _, device := range m.snapshot.Devices {
		if device.Online {
			online++
		}
	}
	return
}

// countSOSEvents returns the number of SOS entries in the event log.
func (m Model) countSOSEvents() int {
	count := 0
	for _, event := range m.snapshot.Events {
		if strings.EqualFold(event.Type, "sos") {
			count++
		}
	}
	return count
}

// formatTimestamp formats the last successful poll time with a relative
// indicator.
func (m Model) formatTimestamp() string {
	if m.snapshot.LastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.snapshot.LastUpdated)
	timeStr := m.snapshot.LastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// formatBatteryWarning lists devices running low on charge.
func (m Model) formatBatteryWarning(compact bool, styles Styles, bg BgStyle) string {
	var low []string
	for _, device := range m.snapshot.Devices {
		if device.Battery <= lowBatteryThreshold && !device.Charging {
			low = append(low, fmt.Sprintf("%s %d%%", device.Name, device.Battery))
		}
	}

	if len(low) == 0 {
		return ""
	}

	detail := low[0]
	if len(low) > 1 {
		detail = fmt.Sprintf("%s +%d more", detail, len(low)-1)
	}

	max := 40
	if compact {
		max = 20
	}
	detail = truncate(detail, max)

	return bg.Render("BATT", styles.WarningText.Bold(true)) + bg.Space() +
		bg.Render(detail, styles.WarningText)
}

// classifyConnectionError returns a short description of the poll error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}

	var expired *gabb.SessionExpiredError
	if errors.As(err, &expired) {
		return "SESSION EXPIRED"
	}
	var authErr *gabb.AuthenticationError
	if errors.As(err, &authErr) {
		return "AUTH FAILED"
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewEvents:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"ctrl+d/u", "Half page"},
			{"d", "Devices"},
			{"?", "More"},
		}
	default: // ViewDevices
		commands = []cmd{
			{"j/k", "Navigate"},
			{"r", "Locate"},
			{"l", "Events"},
			{"Tab", "Focus"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
