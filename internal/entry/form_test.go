package entry

import (
	"strings"
	"testing"

	"sheetlog/internal/dataset"
	"sheetlog/internal/logbook"

	tea "github.com/charmbracelet/bubbletea"
)

func testForm() logbook.Form {
	return logbook.Form{
		Name:  "sc",
		Title: "Registro de sistemas de control",
		Files: []string{"a.xlsx", "b.xlsx"},
		Fields: []dataset.Field{
			{Name: "Sistema", Kind: dataset.KindText, Required: true},
			{Name: "Tiempo_min", Kind: dataset.KindInt},
		},
		Labels: map[string]string{"Tiempo_min": "Tiempo (min)"},
	}
}

func press(m model, keys ...tea.KeyMsg) model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(model)
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
	keySave      = tea.KeyMsg{Type: tea.KeyCtrlS}
	keySpace     = tea.KeyMsg{Type: tea.KeySpace}
)

func TestTypingAndSubmitting(t *testing.T) {
	m := newModel(testForm(), 20, nil)
	m = press(m, typed("SCAD"), keySpace, typed("A1"), keyBackspace, keyTab, typed("45"), keySave)

	if m.state != stateConfirm {
		t.Fatalf("expected confirm state, got %v (problem %q)", m.state, m.problem)
	}

	next, cmd := m.Update(typed("y"))
	m = next.(model)
	if !m.submitted || cmd == nil {
		t.Fatalf("expected submit and quit after confirming")
	}

	got := m.Values()
	if got["Sistema"] != "SCAD A" || got["Tiempo_min"] != "45" {
		t.Errorf("unexpected values %v", got)
	}
}

func TestSaveRejectsInvalidFields(t *testing.T) {
	m := newModel(testForm(), 20, nil)
	m = press(m, keyTab, typed("cuarenta"), keySave)
	if m.state != stateEdit {
		t.Fatalf("expected to stay in edit state")
	}
	if m.cursor != 0 || !strings.Contains(m.problem, "required") {
		t.Errorf("expected required problem on first field, got cursor %d problem %q", m.cursor, m.problem)
	}

	m = press(m, typed("SCADA"), keySave)
	if m.cursor != 1 || !strings.Contains(m.problem, "Tiempo (min)") {
		t.Errorf("expected kind problem on second field, got cursor %d problem %q", m.cursor, m.problem)
	}
}

func TestDecliningReturnsToEdit(t *testing.T) {
	m := newModel(testForm(), 20, map[string]string{"Sistema": "SCADA"})
	m = press(m, keySave, typed("n"))
	if m.state != stateEdit || m.submitted {
		t.Errorf("expected edit state without submit, got state %v submitted %v", m.state, m.submitted)
	}

	m = press(m, keyUp)
	if m.cursor != 0 {
		t.Errorf("expected cursor to stay on the first field, got %d", m.cursor)
	}
}

func TestEscapeCancels(t *testing.T) {
	m := newModel(testForm(), 20, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command on esc")
	}
	if next.(model).submitted {
		t.Error("expected no submit on esc")
	}
}

func TestViewShowsLabels(t *testing.T) {
	m := newModel(testForm(), 20, nil)
	view := m.View()
	for _, want := range []string{"Registro de sistemas de control", "Sistema *", "Tiempo (min)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
