package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/formkit/form"
	"github.com/ardnew/formkit/log"
)

// Option configures [Run].
type Option func(*options)

type options struct {
	logger  log.Logger
	program []tea.ProgramOption
	undo    int
}

// WithLogger sets the logger used to trace edits.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProgramOptions passes options to the underlying [tea.Program].
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(o *options) { o.program = append(o.program, opts...) }
}

// WithUndoLimit bounds the number of edits that can be undone.
func WithUndoLimit(n int) Option {
	return func(o *options) { o.undo = n }
}

// Run edits the form interactively until the user quits. Edits are applied
// to fm as they are confirmed.
func Run(ctx context.Context, fm *form.Model, opts ...Option) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := newModel(ctx, fm, o)

	fm.AddListener(m.events)
	defer fm.RemoveListener(m.events)

	o.logger.TraceContext(ctx, "editor start",
		slog.Int("controls", len(m.rows)),
	)

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, o.program...)...)
	_, err = p.Run()

	return err
}

// Styles.
//
//nolint:gochecknoglobals
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	matchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Underline(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hiddenStyle  = lipgloss.NewStyle().Faint(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

const (
	filterPrompt = "/ "
	editPrompt   = "= "
	defaultWidth = 80
	keyWidth     = 32
	chromeLines  = 5 // title, filter, status, help and a spacer
)

// events collects the notifications of the last update of the form.
type events struct {
	changed map[string]bool
	status  []string
}

func (e *events) reset() {
	e.changed = map[string]bool{}
	e.status = e.status[:0]
}

func (e *events) ValueChanged(id, _ string) { e.changed[id] = true }

func (e *events) StatusChanged(id string, valid bool) {
	if valid {
		e.status = append(e.status, id+" valid")
	} else {
		e.status = append(e.status, id+" invalid")
	}
}

func (e *events) VisibilityChanged(group string, visible bool) {
	if visible {
		e.status = append(e.status, group+" shown")
	} else {
		e.status = append(e.status, group+" hidden")
	}
}

// summary describes the last update in one line.
func (e *events) summary() string {
	if len(e.changed) == 0 && len(e.status) == 0 {
		return "no change"
	}

	parts := []string{fmt.Sprintf("%d value(s) changed", len(e.changed))}

	return strings.Join(append(parts, e.status...), ", ")
}

// editedMsg is sent when the external editor exits.
type editedMsg struct {
	id    string
	value string
	err   error
}

// model is the Bubble Tea model of the form editor.
type model struct {
	ctxFunc  func() context.Context
	form     *form.Model
	logger   log.Logger
	rows     []form.Control
	matches  []match
	filter   textinput.Model
	input    textinput.Model
	events   *events
	history  *history
	status   string
	err      error
	cursor   int
	width    int
	height   int
	editing  bool
	quitting bool
}

func newModel(ctx context.Context, fm *form.Model, o options) model {
	filter := textinput.New()
	filter.Prompt = promptStyle.Render(filterPrompt)
	filter.Placeholder = "filter controls"
	filter.Focus()

	input := textinput.New()
	input.Prompt = promptStyle.Render(editPrompt)
	input.CharLimit = 0

	ev := &events{}
	ev.reset()

	m := model{
		ctxFunc: func() context.Context { return ctx },
		form:    fm,
		logger:  o.logger,
		rows:    fm.Controls(),
		filter:  filter,
		input:   input,
		events:  ev,
		history: newHistory(o.undo),
		width:   defaultWidth,
	}

	m.matches = filterControls(m.rows, "")

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}

		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filter.Width = max(msg.Width-len(filterPrompt)-2, 1)
		m.input.Width = max(msg.Width/2, 1)

		return m, nil

	case editedMsg:
		if msg.err != nil {
			m.err = msg.err

			return m, nil
		}

		return m.apply(msg.id, msg.value, true), nil
	}

	return m, nil
}

// selected returns the control under the cursor.
func (m model) selected() (form.Control, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return form.Control{}, false
	}

	return m.rows[m.matches[m.cursor].index], true
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEsc:
		if m.filter.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.filter.SetValue("")
		m.refilter()

		return m, nil

	case tea.KeyUp, tea.KeyCtrlP:
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}

		return m, nil

	case tea.KeyEnter:
		c, ok := m.selected()
		if !ok {
			return m, nil
		}

		v, _ := m.form.Value(c.ID)
		m.editing = true
		m.err = nil
		m.input.SetValue(v)
		m.input.CursorEnd()
		m.filter.Blur()

		return m, m.input.Focus()

	case tea.KeyCtrlE:
		c, ok := m.selected()
		if !ok {
			return m, nil
		}

		v, _ := m.form.Value(c.ID)
		cmd := &editValueCommand{
			ctx:    m.ctxFunc(),
			logger: m.logger,
			id:     c.ID,
			value:  v,
		}

		return m, tea.Exec(cmd, func(err error) tea.Msg {
			return editedMsg{id: cmd.id, value: cmd.edited, err: err}
		})

	case tea.KeyCtrlZ:
		return m.undo(), nil
	}

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(msg)
	m.refilter()

	return m, cmd
}

func (m model) handleEditKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()

		return m, m.filter.Focus()

	case tea.KeyEnter:
		c, ok := m.selected()
		m.editing = false
		m.input.Blur()

		if ok {
			m = m.apply(c.ID, m.input.Value(), true)
		}

		return m, m.filter.Focus()
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// apply sets the value of control id and records the edit when record is
// set.
func (m model) apply(id, value string, record bool) model {
	before, err := m.form.Value(id)
	if err != nil {
		m.err = err

		return m
	}

	m.events.reset()

	if err := m.form.SetValue(id, value); err != nil {
		m.err = err

		return m
	}

	if record {
		m.history.push(edit{id: id, before: before, after: value})
	}

	m.err = nil
	m.status = m.events.summary()

	m.logger.DebugContext(m.ctxFunc(), "control edited",
		slog.String("id", id),
		slog.String("value", value),
		slog.Int("changed", len(m.events.changed)),
	)

	return m
}

// undo restores the value before the most recent edit.
func (m model) undo() model {
	e, ok := m.history.pop()
	if !ok {
		m.status = "nothing to undo"

		return m
	}

	return m.apply(e.id, e.before, false)
}

// refilter recomputes the filter matches and keeps the cursor in range.
func (m *model) refilter() {
	m.matches = filterControls(m.rows, m.filter.Value())
	m.cursor = min(m.cursor, max(len(m.matches)-1, 0))
}

// window returns the range of matches that fit the terminal.
func (m model) window() (lo, hi int) {
	n := len(m.matches)
	if m.height <= chromeLines || n <= m.height-chromeLines {
		return 0, n
	}

	size := m.height - chromeLines
	lo = max(0, m.cursor-size/2)
	lo = min(lo, n-size)

	return lo, lo + size
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if title := m.form.Title(); title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteByte('\n')
	}

	b.WriteString(m.filter.View())
	b.WriteByte('\n')

	lo, hi := m.window()
	for i := lo; i < hi; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteByte('\n')
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(hintStyle.Render(m.status))
	}

	b.WriteByte('\n')
	b.WriteString(hintStyle.Render(helpLine(m.editing, m.history.Len())))

	return b.String()
}

func helpLine(editing bool, undo int) string {
	if editing {
		return "enter apply · esc cancel"
	}

	help := "↑/↓ select · enter edit · ctrl+e $EDITOR · esc quit"
	if undo > 0 {
		help += fmt.Sprintf(" · ctrl+z undo (%d)", undo)
	}

	return help
}

// renderRow renders the i'th match: cursor, key, value and flags.
func (m model) renderRow(i int) string {
	mt := m.matches[i]
	c := m.rows[mt.index]

	marker := "  "
	if i == m.cursor {
		marker = cursorStyle.Render("> ")
	}

	k := key(c)
	pad := max(0, keyWidth-lipgloss.Width(k))

	if lipgloss.Width(k) > keyWidth {
		// Matches past the cut are not shown.
		k = string([]rune(k)[:keyWidth-1]) + "…"
		pad = 0
	}

	line := marker + highlight(k, mt.hits) + strings.Repeat(" ", pad) + "  "

	if m.editing && i == m.cursor {
		return line + m.input.View()
	}

	value, _ := m.form.Value(c.ID)
	valid, _ := m.form.Valid(c.ID)
	visible, _ := m.form.ControlVisible(c.ID)

	style := valueStyle
	if m.events.changed[c.ID] {
		style = changedStyle
	}

	line += style.Render(fmt.Sprintf("%q", value))

	if !valid {
		line += " " + invalidStyle.Render("invalid")
	}

	if !visible {
		return hiddenStyle.Render(line + " hidden")
	}

	return line
}
