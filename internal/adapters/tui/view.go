package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/shelf/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.stepList(), m.entryTable())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.activityPane(), m.footer())
}

func (m *Model) stepList() string {
	var s strings.Builder
	title := "STEPS"
	if m.Scenario != "" {
		title += ": " + m.Scenario
	}
	s.WriteString(titleStyle.Render(title) + "\n\n")

	for _, step := range m.Steps {
		switch step.Status {
		case StepPassed:
			s.WriteString(stepPassedStyle.Render(style.Check+" "+step.Name) + "\n")
		case StepFailed:
			s.WriteString(stepFailedStyle.Render(style.Cross+" "+step.Name) + "\n")
		default:
			s.WriteString(stepPendingStyle.Render(style.Circle+" "+step.Name) + "\n")
		}
	}
	return paneStyle.Render(s.String())
}

func (m *Model) entryTable() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("CACHE (%d)", len(m.Entries))) + "\n\n")

	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Entries))
	start = min(start, end)

	for i := start; i < end; i++ {
		s.WriteString(m.renderEntryRow(i, m.Entries[i]) + "\n")
	}
	return paneStyle.Render(s.String())
}

func (m *Model) renderEntryRow(index int, row *EntryRow) string {
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
	}

	glyph := lipgloss.NewStyle().Foreground(style.StatusColor(row.Status)).Render(style.StatusGlyph(row.Status))
	content := fmt.Sprintf("%s %s", glyph, row.Label)
	if row.Stale {
		content += " " + staleStyle.Render(style.Stale+"stale")
	}
	content += mutedStyle.Render(fmt.Sprintf(" ×%d", row.Fetches))
	if row.Err != nil {
		content += " " + stepFailedStyle.Render(row.Err.Error())
	}
	return cursor + content
}

func (m *Model) activityPane() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("ACTIVITY") + "\n")
	for _, line := range m.Activity {
		s.WriteString(line + "\n")
	}
	return s.String()
}

func (m *Model) footer() string {
	return mutedStyle.Render(fmt.Sprintf("%d call(s), %d in flight, %d failed  %s j/k move  q quit",
		m.Calls, len(m.Spans), m.FailedCalls, style.Dot))
}
