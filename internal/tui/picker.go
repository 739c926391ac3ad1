package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/snapbox/internal/backend"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionShell
	ActionClean
	ActionQuit
)

// Entry is one build instance shown by the picker
type Entry struct {
	Backend string
	Name    string
	Status  backend.InstanceStatus

	// Project and Arch are parsed from Name; empty when it does not parse
	Project string
	Arch    string
}

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Entry  *Entry
}

// instanceItem implements list.Item for instance display
type instanceItem struct {
	entry *Entry
}

func (i instanceItem) Title() string {
	return i.entry.Name
}

func (i instanceItem) Description() string {
	project := i.entry.Project
	if project == "" {
		project = "?"
	}
	arch := i.entry.Arch
	if arch == "" {
		arch = "?"
	}
	return fmt.Sprintf("%s %s | project %s | %s", statusIcon(i.entry.Status), i.entry.Status, project, arch)
}

func (i instanceItem) FilterValue() string {
	return i.entry.Name
}

func statusIcon(status backend.InstanceStatus) string {
	switch status {
	case backend.StatusRunning:
		return "✓"
	case backend.StatusStopped:
		return "○"
	default:
		return "?"
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the instance picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new instance picker, grouped by backend
func NewPicker(entries []*Entry) Model {
	items := buildGroupedItems(entries)

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = "snapbox - Build Instances"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	skipHeaders(&l, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) selected() *Entry {
	if item, ok := m.list.SelectedItem().(instanceItem); ok {
		return item.entry
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if entry := m.selected(); entry != nil {
				m.result = PickerResult{Action: ActionShell, Entry: entry}
				m.quitting = true
				return m, tea.Quit
			}

		case "d":
			if entry := m.selected(); entry != nil {
				m.result = PickerResult{Action: ActionClean, Entry: entry}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		if isHeaderSelected(&m.list) {
			skipHeaders(&m.list, navigationDirection(msg))
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Shell  [d] Clean  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive instance picker
func RunPicker(entries []*Entry) (PickerResult, error) {
	if len(entries) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	m := NewPicker(entries)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive listing of instances
func SimplePicker(entries []*Entry) string {
	var sb strings.Builder

	sb.WriteString("snapbox - Build Instances\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(entries) == 0 {
		sb.WriteString("No build instances found.\n")
		sb.WriteString("Create one with: snapbox build <project-dir>\n")
		return sb.String()
	}

	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s %s [%s]\n", i+1, statusIcon(e.Status), e.Name, e.Backend)
		if e.Project != "" {
			fmt.Fprintf(&sb, "   Project: %s | Arch: %s\n\n", e.Project, e.Arch)
		} else {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
