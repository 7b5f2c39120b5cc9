// Package entry is the terminal form used to type a record into a logbook form.
package entry

import (
	"errors"
	"fmt"
	"strings"

	"sheetlog/internal/dataset"
	"sheetlog/internal/logbook"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the form without submitting.
var ErrCancelled = errors.New("entry cancelled")

type state int

const (
	stateEdit state = iota
	stateConfirm
)

type model struct {
	form       logbook.Form
	values     []string
	cursor     int
	state      state
	submitted  bool
	problem    string
	labelWidth int

	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	normalStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	errorStyle    lipgloss.Style
}

func newModel(form logbook.Form, labelWidth int, initial map[string]string) model {
	if labelWidth < 1 {
		labelWidth = 24
	}
	values := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		values[i] = initial[f.Name]
	}

	return model{
		form:       form,
		values:     values,
		state:      stateEdit,
		labelWidth: labelWidth,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Width(labelWidth),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateEdit:
			return m.updateEdit(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyRunes:
		m.values[m.cursor] += string(msg.Runes)
		m.problem = ""
		return m, nil
	case tea.KeySpace:
		m.values[m.cursor] += " "
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "tab", "enter":
		if m.cursor < len(m.values)-1 {
			m.cursor++
		}

	case "backspace":
		runes := []rune(m.values[m.cursor])
		if len(runes) > 0 {
			m.values[m.cursor] = string(runes[:len(runes)-1])
		}

	case "ctrl+u":
		m.values[m.cursor] = ""

	case "ctrl+s":
		if i, problem := m.firstProblem(); problem != "" {
			m.cursor = i
			m.problem = problem
			return m, nil
		}
		m.problem = ""
		m.state = stateConfirm
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y":
		m.submitted = true
		return m, tea.Quit
	case "n", "esc":
		m.state = stateEdit
	}
	return m, nil
}

// firstProblem returns the index and message of the first field whose value
// would be rejected when recorded.
func (m model) firstProblem() (int, string) {
	for i, f := range m.form.Fields {
		v, err := dataset.ParseValue(f.Kind, m.values[i])
		if err != nil {
			return i, fmt.Sprintf("%s: expected %s", m.form.Label(f.Name), f.Kind)
		}
		if v == nil && f.Required {
			return i, fmt.Sprintf("%s is required", m.form.Label(f.Name))
		}
	}
	return 0, ""
}

// Values returns the non-blank entered values keyed by field name.
func (m model) Values() map[string]string {
	out := make(map[string]string, len(m.values))
	for i, f := range m.form.Fields {
		if v := strings.TrimSpace(m.values[i]); v != "" {
			out[f.Name] = v
		}
	}
	return out
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render(m.form.Title))
	b.WriteString("\n\n")

	for i, f := range m.form.Fields {
		label := m.form.Label(f.Name)
		if f.Required {
			label += " *"
		}
		value := m.values[i]
		style := m.normalStyle
		if i == m.cursor && m.state == stateEdit {
			style = m.selectedStyle
			value += "_"
		}
		b.WriteString(m.labelStyle.Render(label))
		b.WriteString(style.Render(value))
		b.WriteString(m.helpStyle.Render(" " + f.Kind.String()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.problem != "" {
		b.WriteString(m.errorStyle.Render(m.problem))
		b.WriteString("\n")
	}

	switch m.state {
	case stateConfirm:
		b.WriteString(m.titleStyle.Render(fmt.Sprintf("Record into %d files? (y/n)", len(m.form.Files))))
	default:
		b.WriteString(m.helpStyle.Render("↑/↓/tab: move • type to edit • ctrl+u: clear • ctrl+s: save • esc: cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// Run shows the form and returns the entered values once the user confirms.
// initial pre-fills fields by name.
func Run(form logbook.Form, labelWidth int, initial map[string]string) (map[string]string, error) {
	if len(form.Fields) == 0 {
		return nil, fmt.Errorf("form %q has no fields", form.Name)
	}

	p := tea.NewProgram(newModel(form, labelWidth, initial), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running form: %w", err)
	}

	final := finalModel.(model)
	if !final.submitted {
		return nil, ErrCancelled
	}
	return final.Values(), nil
}
