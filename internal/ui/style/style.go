// Package style holds the colors and glyphs shared by the renderers and the logger.
package style

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
)

// Palette.
var (
	Accent = lipgloss.Color("#0EA5E9")
	Muted  = lipgloss.Color("#64748B")
	Text   = lipgloss.Color("#E2E8F0")
	Green  = lipgloss.Color("#16A34A")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#D97706")
	Violet = lipgloss.Color("#7C3AED")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Pending = "…"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
	Stale   = "~"
)

// StatusGlyph returns the glyph drawn next to an entry in the given status.
func StatusGlyph(s domain.Status) string {
	switch s {
	case domain.StatusLoading:
		return Pending
	case domain.StatusSuccess:
		return Check
	case domain.StatusError:
		return Cross
	default:
		return Circle
	}
}

// StatusColor returns the color used for an entry in the given status.
func StatusColor(s domain.Status) lipgloss.Color {
	switch s {
	case domain.StatusLoading:
		return Yellow
	case domain.StatusSuccess:
		return Green
	case domain.StatusError:
		return Red
	default:
		return Muted
	}
}

// EntryLabel renders a query name with its arguments, for example "orders:get(id=o1)".
func EntryLabel(name string, args domain.Args) string {
	if len(args) == 0 {
		return name
	}
	keys := lo.Keys(args)
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return k + "=" + args.String(k)
	})
	return name + "(" + strings.Join(parts, ",") + ")"
}
