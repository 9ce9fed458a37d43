package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/form"
)

const acme = `
Form(
  TITLE "Acme"
  Controls(
    (ID "A" TYPE "textfield" LABEL "Company")
    (ID "B" TYPE "textfield" AUTOFILL(CAT(VALUE "A" " Inc.")))
    (ID "C" TYPE "textfield" PLAUSI(MATCH(VALUE "C" "[0-9]*")))
  )
)`

func newTestModel(t *testing.T) (model, *form.Model) {
	t.Helper()

	ctx := context.Background()

	root, err := conf.ParseString(ctx, "file:///acme.cfg", acme)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fm, err := form.New(ctx, root)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}

	m := newModel(ctx, fm, options{})
	fm.AddListener(m.events)

	return m, fm
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()

	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(model)
	}

	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestModel_EditPropagates(t *testing.T) {
	m, fm := newTestModel(t)

	m = press(t, m, keyMsg(tea.KeyEnter))
	if !m.editing {
		t.Fatal("enter did not start editing")
	}

	m = press(t, m, runes("Acme"), keyMsg(tea.KeyEnter))
	if m.editing {
		t.Fatal("enter did not finish editing")
	}

	if got, _ := fm.Value("B"); got != "Acme Inc." {
		t.Errorf("B = %q, want %q", got, "Acme Inc.")
	}

	if !m.events.changed["B"] {
		t.Error("B not marked changed")
	}

	if m.history.Len() != 1 {
		t.Errorf("history Len = %d, want 1", m.history.Len())
	}

	m = press(t, m, keyMsg(tea.KeyCtrlZ))

	if got, _ := fm.Value("A"); got != "" {
		t.Errorf("A after undo = %q, want empty", got)
	}

	if got, _ := fm.Value("B"); got != " Inc." {
		t.Errorf("B after undo = %q, want %q", got, " Inc.")
	}

	if m.history.Len() != 0 {
		t.Errorf("history Len after undo = %d, want 0", m.history.Len())
	}
}

func TestModel_EditCancel(t *testing.T) {
	m, fm := newTestModel(t)

	m = press(t, m, keyMsg(tea.KeyEnter), runes("x"), keyMsg(tea.KeyEsc))
	if m.editing {
		t.Fatal("esc did not cancel editing")
	}

	if got, _ := fm.Value("A"); got != "" {
		t.Errorf("A = %q after cancel, want empty", got)
	}
}

func TestModel_FilterAndSelect(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("C"))

	if _, ok := m.selected(); !ok {
		t.Fatal("nothing selected")
	}

	// "C" matches the id C and the label Company; both are listed.
	if len(m.matches) != 2 {
		t.Errorf("matches = %d, want 2", len(m.matches))
	}

	m = press(t, m, keyMsg(tea.KeyDown))

	c, _ := m.selected()
	if c.ID != "C" && c.ID != "A" {
		t.Errorf("selected %q, want A or C", c.ID)
	}

	m = press(t, m, keyMsg(tea.KeyEsc))
	if m.filter.Value() != "" || m.quitting {
		t.Error("esc with a filter should clear it without quitting")
	}

	if len(m.matches) != 3 {
		t.Errorf("matches after clear = %d, want 3", len(m.matches))
	}

	m = press(t, m, keyMsg(tea.KeyEsc))
	if !m.quitting {
		t.Error("esc without a filter should quit")
	}
}

func TestModel_InvalidShown(t *testing.T) {
	m, fm := newTestModel(t)

	m = m.apply("C", "abc", true)

	if valid, _ := fm.Valid("C"); valid {
		t.Fatal("C should be invalid")
	}

	if !strings.Contains(m.status, "C invalid") {
		t.Errorf("status = %q, want it to mention C invalid", m.status)
	}

	if !strings.Contains(m.View(), "invalid") {
		t.Error("view does not flag the invalid control")
	}
}

func TestModel_UnknownControl(t *testing.T) {
	m, _ := newTestModel(t)

	m = m.apply("Z", "x", true)
	if m.err == nil {
		t.Error("apply to unknown control did not set an error")
	}

	if m.history.Len() != 0 {
		t.Error("failed edit was recorded")
	}
}

func TestModel_Window(t *testing.T) {
	m, _ := newTestModel(t)

	if lo, hi := m.window(); lo != 0 || hi != 3 {
		t.Errorf("window = %d,%d; want 0,3", lo, hi)
	}

	m.height = chromeLines + 2
	m.cursor = 2

	if lo, hi := m.window(); lo != 1 || hi != 3 {
		t.Errorf("window = %d,%d; want 1,3", lo, hi)
	}
}
