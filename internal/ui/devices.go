package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabbwatch/gabb"
)

// updateDeviceTable updates selection bounds when the device list changes.
// Preserves selection by device ID when possible.
func (m *Model) updateDeviceTable() {
	// Get the currently selected device's ID before updating
	var selectedID int64
	if device := m.selectedDevice(); device != nil {
		selectedID = device.ID
	}

	devices := m.sortedDevices()
	deviceCount := len(devices)

	if deviceCount == 0 {
		m.selectedRow = 0
		return
	}

	// Try to find the previously selected device by ID
	if selectedID > 0 {
		for i, device := range devices {
			if device.ID == selectedID {
				m.selectedRow = i
				return
			}
		}
	}

	// Device not found - clamp to valid range
	if m.selectedRow >= deviceCount {
		m.selectedRow = deviceCount - 1
	}
}

// sortedDevices returns the account's devices in display order.
// Online watches sort before offline ones so the live rows stay on top.
func (m Model) sortedDevices() []gabb.MapDevice {
	devices := make([]gabb.MapDevice, len(m.snapshot.Devices))
	copy(devices, m.snapshot.Devices)

	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].Online != devices[j].Online {
			return devices[i].Online
		}
		ni := strings.ToLower(devices[i].Name)
		nj := strings.ToLower(devices[j].Name)
		if ni != nj {
			return ni < nj
		}
		return devices[i].ID < devices[j].ID
	})

	return devices
}

// selectedDevice returns the device under the cursor, or nil.
func (m Model) selectedDevice() *gabb.MapDevice {
	devices := m.sortedDevices()
	if m.selectedRow < 0 || m.selectedRow >= len(devices) {
		return nil
	}
	device := devices[m.selectedRow]
	return &device
}

// handleDevicesKey processes keyboard input for the devices view.
func (m Model) handleDevicesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	devices := m.sortedDevices()
	deviceCount := len(devices)
	if deviceCount == 0 {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.selectedRow < deviceCount-1 {
			m.selectedRow++
		}
	case "k", "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "g", "home":
		m.selectedRow = 0
	case "G", "end":
		m.selectedRow = deviceCount - 1
	case "r":
		// Ask the watch for a fresh GPS fix
		if device := m.selectedDevice(); device != nil && m.client != nil {
			return m, locateCmd(m.ctx, m.client, *device)
		}
	}

	return m, nil
}

// renderDevices renders the devices view with split layout (table + detail).
func (m Model) renderDevices() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2 // Account for header + cmdbar

	if len(m.snapshot.Devices) == 0 {
		emptyMsg := styles.MutedText.Render("No watches on the account")
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	// Calculate pane dimensions
	// Extra wide (>= 160): 30% table, 70% detail
	// Default: 40% table, 60% detail
	var tableWidth, detailWidth int
	if m.width >= 160 {
		tableWidth = m.width * 30 / 100
	} else {
		tableWidth = m.width * 40 / 100
	}
	detailWidth = m.width - tableWidth

	// Get selected device
	device := m.selectedDevice()

	// === Table Pane ===
	tableTitle := fmt.Sprintf("Watches (%d)", len(m.snapshot.Devices))
	tableFocused := m.focusedPane == 0
	tableBg := m.theme.SurfaceAlt
	if tableFocused {
		tableBg = m.theme.FocusBg
	}
	tableContent := m.renderDeviceTable(tableWidth-2, tableBg) // -2 for borders
	tablePane := m.renderTitledBox(tableTitle, tableContent, tableWidth, contentHeight, tableFocused)

	// === Detail Pane ===
	detailTitle := "Details"
	detailFocused := m.focusedPane == 1
	detailBg := m.theme.SurfaceAlt
	if detailFocused {
		detailBg = m.theme.FocusBg
	}
	var detailContent string
	if device != nil {
		detailContent = m.renderDeviceDetail(*device, detailWidth-4, detailBg)
	} else {
		detailContent = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(detailBg)).
			Render("Select a watch")
	}
	detailPane := m.renderTitledBox(detailTitle, detailContent, detailWidth, contentHeight, detailFocused)

	// Join side-by-side
	return lipgloss.JoinHorizontal(lipgloss.Top, tablePane, detailPane)
}

// renderDeviceTable renders the device list as styled rows.
func (m Model) renderDeviceTable(width int, bgColor string) string {
	devices := m.sortedDevices()
	if len(devices) == 0 {
		return ""
	}

	// Build rows directly (no table component overhead)
	var lines []string
	for i, device := range devices {
		if i == m.selectedRow {
			// Selected row: use selection background and text color
			content := m.formatDeviceRowContent(device, width, m.theme.SelectionBg, true)
			line := lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Width(width).
				Render(content)
			lines = append(lines, line)
		} else {
			// Non-selected row: use pane background with themed colors
			content := m.formatDeviceRowContent(device, width, bgColor, false)
			line := lipgloss.NewStyle().
				Background(lipgloss.Color(bgColor)).
				Width(width).
				Render(content)
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// formatDeviceRowContent formats a device row with inline colors.
// Format: "#ID Name · Battery% Status"
// When selected is true, uses SelectionText color for all text to ensure contrast.
func (m Model) formatDeviceRowContent(device gabb.MapDevice, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	name := deviceLabel(device)
	battery := fmt.Sprintf("%d%%", device.Battery)
	status := titleCase(presenceKey(device))

	// Calculate available name width
	idStr := fmt.Sprintf("#%d", device.ID)
	separatorLen := 3 // " · "
	nameWidth := max(width-len(idStr)-len(battery)-1-len(status)-separatorLen-2, 10)

	// For selected rows, use SelectionText for all parts to ensure contrast
	// For non-selected rows, use themed colors
	var idStyle, nameStyle, sepStyle, batteryStyle, statusStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		idStyle = selText
		nameStyle = selText
		sepStyle = selText
		batteryStyle = selText
		statusStyle = selText
	} else {
		styles := m.theme.Styles()
		idStyle = styles.MutedText
		nameStyle = styles.Text
		sepStyle = styles.FaintText
		batteryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.batteryColor(device.Battery)))
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(presenceKey(device))))
	}

	idPart := bg.Render(idStr, idStyle)
	namePart := bg.Render(truncate(name, nameWidth), nameStyle)
	sepPart := bg.Render(" · ", sepStyle)
	batteryPart := bg.Render(battery, batteryStyle)
	statusPart := bg.Render(status, statusStyle)

	return idPart + bg.Space() + namePart + sepPart + batteryPart + bg.Space() + statusPart
}

// renderDeviceDetail renders the detail pane content for a device.
func (m Model) renderDeviceDetail(device gabb.MapDevice, width int, bgColor string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)

	var b strings.Builder

	// -- HEADER --
	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))
	b.WriteString(bg.Render(deviceLabel(device), nameStyle))
	b.WriteString("\n")

	presence := presenceKey(device)
	presenceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(presence)))
	b.WriteString(bg.Render("● "+titleCase(presence), presenceStyle))
	b.WriteString("\n")

	writeSection := func(title string) {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.ToUpper(title), styles.MutedText))
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat("─", min(width, 38)), styles.FaintText))
		b.WriteString("\n")
	}
	writeRow := func(label, value string, valueStyle lipgloss.Style) {
		b.WriteString(bg.Render(fmt.Sprintf("%-11s", label), styles.MutedText))
		b.WriteString(bg.Render(value, valueStyle))
		b.WriteString("\n")
	}

	// -- STATUS --
	writeSection("Status")
	batteryValue := fmt.Sprintf("%d%%", device.Battery)
	if device.Charging {
		batteryValue += " charging"
	}
	batteryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.batteryColor(device.Battery)))
	writeRow("Battery:", batteryValue, batteryStyle)
	if device.Phone != "" {
		writeRow("Phone:", device.Phone, styles.Text)
	}
	if !device.LastSeen.IsZero() {
		seen := fmt.Sprintf("%s (%s)", formatAgo(device.LastSeen.Time), device.LastSeen.Local().Format("15:04:05"))
		writeRow("Last seen:", seen, styles.Text)
	}

	// -- LOCATION --
	writeSection("Location")
	if device.Location != nil {
		writeRow("Latitude:", fmt.Sprintf("%.5f", device.Location.Latitude), styles.Text)
		writeRow("Longitude:", fmt.Sprintf("%.5f", device.Location.Longitude), styles.Text)
		if device.Location.Accuracy > 0 {
			writeRow("Accuracy:", fmt.Sprintf("±%.0f m", device.Location.Accuracy), styles.Text)
		}
		if !device.Location.Timestamp.IsZero() {
			fix := fmt.Sprintf("%s (%s)", device.Location.Timestamp.Local().Format("15:04:05"), formatAgo(device.Location.Timestamp.Time))
			writeRow("Fix time:", fix, styles.Text)
		}
	} else {
		b.WriteString(bg.Render("No location fix yet", styles.MutedText))
		b.WriteString("\n")
	}

	// -- RECENT EVENTS --
	recent := m.deviceEvents(device.ID, 5)
	if len(recent) > 0 {
		writeSection("Recent Events")
		for _, event := range recent {
			typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colorForStatus(event.Type)))
			b.WriteString(bg.Render(event.CreatedAt.Local().Format("15:04"), styles.FaintText))
			b.WriteString(bg.Space())
			b.WriteString(bg.Render(eventTypeLabel(event.Type), typeStyle))
			if msg := strings.TrimSpace(event.Message); msg != "" {
				b.WriteString(bg.Space())
				b.WriteString(bg.Render(truncate(msg, max(width-24, 10)), styles.MutedText))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// deviceEvents returns up to limit recent events for the given device.
func (m Model) deviceEvents(deviceID int64, limit int) []gabb.Event {
	var matched []gabb.Event
	for _, event := range m.sortedEvents() {
		if event.DeviceID != deviceID {
			continue
		}
		matched = append(matched, event)
		if len(matched) == limit {
			break
		}
	}
	return matched
}

// colorForStatus returns the theme color for a presence or event type key.
func (m Model) colorForStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if color, ok := m.theme.StatusColors[status]; ok {
		return color
	}
	return m.theme.Text
}

// batteryColor returns the theme color for a battery level.
func (m Model) batteryColor(battery int) string {
	switch {
	case battery <= lowBatteryThreshold:
		return m.theme.Danger
	case battery < 50:
		return m.theme.Warning
	default:
		return m.theme.Success
	}
}

// presenceKey returns the StatusColors key for a device's current presence.
func presenceKey(device gabb.MapDevice) string {
	switch {
	case !device.Online:
		return "offline"
	case device.Charging:
		return "charging"
	default:
		return "online"
	}
}

// deviceLabel returns the display name for a device.
func deviceLabel(device gabb.MapDevice) string {
	if device.Name != "" {
		return device.Name
	}
	if device.Phone != "" {
		return device.Phone
	}
	return fmt.Sprintf("Watch #%d", device.ID)
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// Frame style: ┌─── Title ───┐
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderColor := lipgloss.Color(borderColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	// Build the top border with embedded title
	innerWidth := width - 2 // Account for left and right border chars
	titleLen := len(title)
	leftPad := (innerWidth - titleLen - 2) / 2 // -2 for spaces around title
	rightPad := innerWidth - titleLen - 2 - leftPad

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	// Build the bottom border
	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	// Style for side borders and content background
	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(bgColor)

	// Split content into lines and pad to fill the box
	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2 // -2 for top and bottom borders

	// Pad or truncate content lines
	var paddedLines []string
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		// Ensure line is exactly innerWidth chars with background color
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	// Join all parts
	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

// titleCase converts a snake_case or lowercase string to Title Case.
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// formatAgo renders an elapsed-time hint like "5m ago".
func formatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
