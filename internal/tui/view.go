package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/shelltint/shelltint/internal/buildinfo"
)

var rowNames = [rowCount]string{"Taskbar", "Start menu"}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	for row := 0; row < rowCount; row++ {
		b.WriteString(m.renderControl(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.renderStatus()))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderHeader() string {
	left := headerStyle.Render("ShellTint") + " " + labelStyle.Render(buildinfo.Short())
	right := onStyle.Render("Connected")
	if !m.connected {
		right = warnStyle.Render("Disconnected")
	}
	return m.spread(left, right)
}

func (m Model) renderControl(row int) string {
	cursor := "  "
	name := labelStyle.Render(fmt.Sprintf("%-11s", rowNames[row]))
	if row == m.selected {
		cursor = selectedStyle.Render("▸ ")
		name = selectedStyle.Render(fmt.Sprintf("%-11s", rowNames[row]))
	}

	s := m.sliders[row]
	pct := valueStyle.Render(fmt.Sprintf("%3d%%", s.value))
	if s.pending {
		pct = pendingStyle.Render(fmt.Sprintf("%3d%%", s.value))
	}

	state := offStyle.Render("off")
	if m.enabled(row) {
		state = onStyle.Render("on")
	}

	return cursor + name + " " + m.bar.ViewAs(float64(s.value)/100) + " " + pct + "  " + state
}

func (m Model) renderStatus() string {
	if !m.haveStatus {
		return labelStyle.Render("Waiting for daemon...")
	}
	tb := m.status.Taskbar
	st := m.status.Start

	var taskbar string
	if tb.Found {
		taskbar = valueStyle.Render(tb.Edge)
		if tb.AutoHide {
			taskbar += labelStyle.Render(" · auto-hide")
		}
	} else {
		taskbar = warnStyle.Render("not found")
	}

	var start string
	switch {
	case !st.Enabled:
		start = offStyle.Render("not watched")
	case st.IsOpen:
		start = onStyle.Render("open") + labelStyle.Render(fmt.Sprintf(" · %.0f%% confidence", st.Confidence*100))
	case st.Detected:
		start = valueStyle.Render("closed")
	default:
		start = labelStyle.Render("not detected")
	}

	lines := []string{
		labelStyle.Render("Taskbar  ") + taskbar,
		labelStyle.Render("Start    ") + start,
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderStatusBar() string {
	if m.err != "" {
		return m.fit(statusBarStyle.Background(colorRed).Render(" " + m.err + " "))
	}
	hint := labelStyle.Render("Changes are saved by the daemon")
	return m.fit(statusBarStyle.Render(" ") + hint)
}

// spread places left and right on one line of the terminal width.
func (m Model) spread(left, right string) string {
	if m.width <= 0 {
		return left + "  " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.fit(left + strings.Repeat(" ", gap) + right)
}

// fit truncates an ANSI-styled line to the terminal width.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "…")
}
