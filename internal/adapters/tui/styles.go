package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/shelf/internal/ui/style"
)

var (
	stepPendingStyle = lipgloss.NewStyle().
				Foreground(style.Muted)

	stepPassedStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	stepFailedStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	staleStyle = lipgloss.NewStyle().
			Foreground(style.Yellow).
			Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(style.Muted)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Accent).
			Foreground(style.Text)

	paneStyle = lipgloss.NewStyle().
			PaddingRight(2)
)
