// Package tui provides a terminal dashboard of scenario steps and cache entries.
package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/shelf/internal/ui/output"
)

const maxActivity = 8

// NewModel creates a new TUI model with default settings.
func NewModel(w io.Writer) Model {
	out := output.New(w)
	lipgloss.SetColorProfile(out.Profile)

	return Model{
		StepMap:     make(map[string]*StepNode),
		EntryMap:    make(map[string]*EntryRow),
		Spans:       make(map[string]string),
		MaxActivity: maxActivity,
	}
}
