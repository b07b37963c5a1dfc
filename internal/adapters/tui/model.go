package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/ui/style"
)

// StepStatus represents the current state of a scenario step.
type StepStatus string

const (
	// StepPending indicates the step has not finished.
	StepPending StepStatus = "Pending"
	// StepPassed indicates the step succeeded.
	StepPassed StepStatus = "Passed"
	// StepFailed indicates the step failed or was skipped.
	StepFailed StepStatus = "Failed"
)

// StepNode represents a single step in the step list.
type StepNode struct {
	Name   string
	Status StepStatus
	Err    error
}

// EntryRow represents a single cache entry in the entry table.
type EntryRow struct {
	Key     string
	Label   string
	Status  domain.Status
	Stale   bool
	Err     error
	Fetches int
}

// Model represents the main TUI state.
type Model struct {
	Scenario    string
	Steps       []*StepNode
	StepMap     map[string]*StepNode
	Entries     []*EntryRow
	EntryMap    map[string]*EntryRow
	Spans       map[string]string
	Calls       int
	FailedCalls int
	Activity    []string
	MaxActivity int
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	Width       int
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

// SelectedEntry returns the highlighted cache entry, or nil when there is none.
func (m *Model) SelectedEntry() *EntryRow {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Entries) {
		return m.Entries[m.SelectedIdx]
	}
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.ensureVisible()
			}
		case "j", "down":
			if m.SelectedIdx < len(m.Entries)-1 {
				m.SelectedIdx++
				m.ensureVisible()
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		header := titleStyle.Render("CACHE") + "\n\n"
		m.ListHeight = msg.Height - lipgloss.Height(header) - m.MaxActivity - 2
		if m.ListHeight < 1 {
			m.ListHeight = 1
		}
		m.ensureVisible()

	case MsgPlan:
		m.Scenario = msg.Scenario
		m.Steps = make([]*StepNode, len(msg.Steps))
		m.StepMap = make(map[string]*StepNode, len(msg.Steps))
		for i, name := range msg.Steps {
			m.Steps[i] = &StepNode{Name: name, Status: StepPending}
			m.StepMap[name] = m.Steps[i]
		}

	case MsgStepDone:
		if node, ok := m.StepMap[msg.Step]; ok {
			node.Err = msg.Err
			node.Status = StepPassed
			if msg.Err != nil {
				node.Status = StepFailed
			}
		}

	case MsgSpanStart:
		if m.Spans == nil {
			m.Spans = make(map[string]string)
		}
		m.Spans[msg.SpanID] = msg.Name
		m.Calls++

	case MsgSpanEnd:
		if _, ok := m.Spans[msg.SpanID]; ok {
			delete(m.Spans, msg.SpanID)
			if msg.Err != nil {
				m.FailedCalls++
			}
		}

	case MsgEvent:
		m.applyEvent(msg.Event)
	}

	return m, nil
}

func (m *Model) applyEvent(ev domain.Event) {
	if m.EntryMap == nil {
		m.EntryMap = make(map[string]*EntryRow)
	}
	label := style.EntryLabel(ev.Name, ev.Args)

	switch ev.Kind {
	case domain.EventTransition:
		row, ok := m.EntryMap[ev.Key]
		if !ok {
			row = &EntryRow{Key: ev.Key, Label: label}
			m.EntryMap[ev.Key] = row
			m.Entries = append(m.Entries, row)
		}
		row.Status = ev.To
		switch ev.To {
		case domain.StatusLoading:
			row.Fetches++
		case domain.StatusSuccess:
			row.Stale = false
			row.Err = nil
		case domain.StatusError:
			row.Stale = false
			row.Err = ev.Err
		}

	case domain.EventInvalidated:
		if row, ok := m.EntryMap[ev.Key]; ok {
			row.Stale = true
		}
		m.record(fmt.Sprintf("%s %s stale", style.Stale, label))

	case domain.EventRemoved:
		if _, ok := m.EntryMap[ev.Key]; !ok {
			return
		}
		delete(m.EntryMap, ev.Key)
		m.Entries = slices.DeleteFunc(m.Entries, func(r *EntryRow) bool { return r.Key == ev.Key })
		if m.SelectedIdx >= len(m.Entries) && m.SelectedIdx > 0 {
			m.SelectedIdx = len(m.Entries) - 1
		}
		m.ensureVisible()
		m.record(fmt.Sprintf("%s %s removed", style.Circle, label))

	case domain.EventMutation:
		refs := strings.Join(lo.Map(ev.Refs, func(r domain.TaggedRef, _ int) string { return r.String() }), " ")
		line := fmt.Sprintf("%s %s %s %s", style.Dot, label, style.Arrow, refs)
		if ev.Err != nil {
			line += " (" + style.Cross + " " + ev.Err.Error() + ")"
		}
		m.record(line)
	}
}

func (m *Model) record(line string) {
	m.Activity = append(m.Activity, line)
	if m.MaxActivity > 0 && len(m.Activity) > m.MaxActivity {
		m.Activity = m.Activity[len(m.Activity)-m.MaxActivity:]
	}
}
