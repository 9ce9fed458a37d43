package form

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/function"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// Model is the reactive state of a form.
type Model struct {
	logger log.Logger
	title  string

	controls []*control
	byID     values
	groups   []*group
	byGroup  map[string]*group

	// dialogs maps a dialog name to the controls whose AUTOFILL reads it.
	dialogs map[string][]*control

	listeners   []Listener
	dispatching bool
}

// New builds the model of the form described by root, which is either a Form
// node or a tree containing one.
//
// Every control and visibility group is created before any dependency is
// resolved, so functions may read controls declared after them.
func New(ctx context.Context, root *conf.Node, opts ...Option) (*Model, error) {
	o := makeOptions(opts...)

	lib, err := function.ParseFunctions(
		root, function.NewLibrary(o.lib), o.compileOptions(nil)...,
	)
	if err != nil {
		return nil, err
	}

	m := &Model{
		logger:  o.logger,
		byID:    values{},
		byGroup: map[string]*group{},
		dialogs: map[string][]*control{},
	}

	forms := findForms(root)
	if len(forms) == 0 {
		return nil, pkg.ErrConfiguration.
			With(slog.String("source", root.Name())).
			Wrapf("no Form section")
	}

	copts := o.compileOptions(lib)

	for _, f := range forms {
		if err := m.declare(f, copts); err != nil {
			return nil, err
		}
	}

	m.wire(ctx)
	m.evaluate(ctx, o.presets)

	m.logger.DebugContext(ctx, "form model built",
		slog.String("title", m.title),
		slog.Int("controls", len(m.controls)),
		slog.Int("groups", len(m.groups)),
	)

	return m, nil
}

func findForms(root *conf.Node) []*conf.Node {
	if root.Name() == "Form" || root.Name() == "Formular" {
		return []*conf.Node{root}
	}

	var out []*conf.Node
	for _, f := range root.Query("Form").All() {
		if !f.IsLeaf() {
			out = append(out, f)
		}
	}

	return out
}

// clause returns the last child of n named name that has children.
func clause(n *conf.Node, name string) *conf.Node {
	var found *conf.Node

	for _, c := range n.All() {
		if !c.IsLeaf() && c.Name() == name {
			found = c
		}
	}

	return found
}

// text returns the value of the clause name of n, or "".
func text(n *conf.Node, name string) string {
	c := clause(n, name)
	if c == nil {
		return ""
	}

	last, _ := c.Last()

	return last.Name()
}

type tab struct {
	name string
	node *conf.Node
}

func tabsOf(form *conf.Node) []tab {
	var tabs []tab

	for _, section := range form.QueryAll("Tabs", 0, false).All() {
		for _, t := range section.All() {
			if !t.IsLeaf() {
				tabs = append(tabs, tab{name: t.Name(), node: t})
			}
		}
	}

	if len(tabs) == 0 {
		tabs = append(tabs, tab{node: form})
	}

	return tabs
}

// declare creates the groups and controls of form.
func (m *Model) declare(form *conf.Node, copts []function.Option) error {
	if title := text(form, "TITLE"); title != "" && m.title == "" {
		m.title = title
	}

	for _, section := range form.QueryAll("Visibility", 0, false).All() {
		for _, g := range section.All() {
			if err := m.declareGroup(g, copts); err != nil {
				return err
			}
		}
	}

	for _, t := range tabsOf(form) {
		for _, section := range t.node.QueryAll("Controls", 0, false).All() {
			for _, entry := range section.All() {
				if err := m.declareControl(entry, t.name, copts); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (m *Model) declareGroup(n *conf.Node, copts []function.Option) error {
	if _, ok := m.byGroup[n.Name()]; ok {
		return pkg.ErrConfiguration.
			With(slog.String("group", n.Name())).
			Wrapf("duplicate visibility group %q", n.Name())
	}

	cond, err := function.CompileChildren(n, function.KindAnd, copts...)
	if err != nil {
		return err
	}

	if cond == nil {
		cond = function.True
	}

	m.addGroup(n.Name(), cond)

	return nil
}

func (m *Model) addGroup(id string, cond function.Function) *group {
	g := &group{id: id, condition: cond, index: len(m.groups)}
	m.groups = append(m.groups, g)
	m.byGroup[id] = g

	return g
}

func (m *Model) declareControl(entry *conf.Node, tabName string, copts []function.Option) error {
	id := text(entry, "ID")
	if id == "" {
		m.logger.Trace("entry without ID skipped",
			slog.String("type", text(entry, "TYPE")),
			slog.String("tab", tabName),
		)

		return nil
	}

	if _, ok := m.byID[id]; ok {
		return pkg.ErrConfiguration.
			With(slog.String("id", id)).
			Wrapf("duplicate control id %q", id)
	}

	c := &control{
		Control: Control{
			ID:    id,
			Type:  text(entry, "TYPE"),
			Label: text(entry, "LABEL"),
			Tab:   tabName,
		},
		index: len(m.controls),
	}

	if n := clause(entry, "AUTOFILL"); n != nil {
		f, err := function.CompileChildren(n, function.KindCat, copts...)
		if err != nil {
			return err
		}

		c.autofill = f
		c.Computed = f != nil
	}

	if n := clause(entry, "PLAUSI"); n != nil {
		f, err := function.CompileChildren(n, function.KindAnd, copts...)
		if err != nil {
			return err
		}

		c.plausi = f
	}

	if n := clause(entry, "GROUPS"); n != nil {
		for _, g := range n.All() {
			if g.IsLeaf() && !slices.Contains(c.Groups, g.Name()) {
				c.Groups = append(c.Groups, g.Name())
			}
		}
	}

	m.controls = append(m.controls, c)
	m.byID[id] = c

	return nil
}

// wire resolves function parameters into reverse dependency edges and ranks
// the controls for evaluation.
func (m *Model) wire(ctx context.Context) {
	indegree := make(map[*control]int, len(m.controls))

	for _, c := range m.controls {
		for _, name := range c.Groups {
			g, ok := m.byGroup[name]
			if !ok {
				g = m.addGroup(name, function.True)
			}

			g.controls = append(g.controls, c)
		}

		if c.autofill != nil {
			for _, p := range c.autofill.Parameters() {
				d, ok := m.byID[p]
				if !ok {
					m.logger.DebugContext(ctx, "unresolved AUTOFILL parameter",
						slog.String("id", c.ID),
						slog.String("parameter", p),
					)

					continue
				}

				d.dependents = append(d.dependents, c)
				c.inputs = append(c.inputs, d)
				indegree[c]++
			}

			for _, name := range c.autofill.DialogRefs() {
				m.dialogs[name] = append(m.dialogs[name], c)
			}
		}

		if c.plausi != nil {
			for _, p := range c.plausi.Parameters() {
				if d, ok := m.byID[p]; ok && d != c {
					d.checkers = append(d.checkers, c)
				}
			}
		}
	}

	for _, g := range m.groups {
		for _, p := range g.condition.Parameters() {
			if d, ok := m.byID[p]; ok {
				d.watchers = append(d.watchers, g)
			}
		}
	}

	m.rank(ctx, indegree)
}

// rank orders the controls topologically along AUTOFILL edges. Controls on a
// cycle follow in declaration order.
func (m *Model) rank(ctx context.Context, indegree map[*control]int) {
	ranked := make(map[*control]bool, len(m.controls))
	queue := make([]*control, 0, len(m.controls))

	for _, c := range m.controls {
		if indegree[c] == 0 {
			queue = append(queue, c)
		}
	}

	next := 0

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		c.rank = next
		ranked[c] = true
		next++

		for _, d := range c.dependents {
			if indegree[d]--; indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	for _, c := range m.controls {
		if !ranked[c] {
			m.logger.DebugContext(ctx, "AUTOFILL cycle",
				slog.String("id", c.ID),
			)

			c.rank = next
			next++
		}
	}
}

// evaluate computes the initial state of every control and group.
func (m *Model) evaluate(ctx context.Context, presets Presets) {
	for id := range presets {
		if _, ok := m.byID[id]; !ok {
			m.logger.DebugContext(ctx, "preset for unknown control",
				slog.String("id", id),
			)
		}
	}

	for _, c := range m.byRank(m.controls) {
		if v, ok := presets[c.ID]; ok {
			c.value = v

			continue
		}

		if c.autofill != nil {
			c.fill(m.byID)
		}
	}

	for _, c := range m.controls {
		c.valid = c.check(m.byID)
	}

	for _, g := range m.groups {
		g.visible = g.evaluate(m.byID)
	}
}

// Title returns the TITLE of the form.
func (m *Model) Title() string { return m.title }

func (m *Model) control(id string) (*control, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, pkg.ErrUnknownField.With(slog.String("id", id))
	}

	return c, nil
}

func (m *Model) group(id string) (*group, error) {
	g, ok := m.byGroup[id]
	if !ok {
		return nil, pkg.ErrUnknownField.With(slog.String("group", id))
	}

	return g, nil
}

// Value returns the value of control id.
func (m *Model) Value(id string) (string, error) {
	c, err := m.control(id)
	if err != nil {
		return "", err
	}

	return c.value, nil
}

// Valid reports whether the value of control id passes its PLAUSI.
func (m *Model) Valid(id string) (bool, error) {
	c, err := m.control(id)
	if err != nil {
		return false, err
	}

	return c.valid, nil
}

// Visible reports whether the condition of group id holds.
func (m *Model) Visible(id string) (bool, error) {
	g, err := m.group(id)
	if err != nil {
		return false, err
	}

	return g.visible, nil
}

// ControlVisible reports whether every group of control id is visible.
func (m *Model) ControlVisible(id string) (bool, error) {
	c, err := m.control(id)
	if err != nil {
		return false, err
	}

	return m.controlVisible(c), nil
}

func (m *Model) controlVisible(c *control) bool {
	for _, name := range c.Groups {
		if !m.byGroup[name].visible {
			return false
		}
	}

	return true
}

// Control returns the description of control id.
func (m *Model) Control(id string) (Control, error) {
	c, err := m.control(id)
	if err != nil {
		return Control{}, err
	}

	return c.describe(), nil
}

// Controls returns the descriptions of all controls in declaration order.
func (m *Model) Controls() []Control {
	out := make([]Control, len(m.controls))
	for i, c := range m.controls {
		out[i] = c.describe()
	}

	return out
}

// ControlsByGroup returns the ids of the controls in group id, or nil if
// there is no such group.
func (m *Model) ControlsByGroup(id string) []string {
	g, ok := m.byGroup[id]
	if !ok {
		return nil
	}

	out := make([]string, len(g.controls))
	for i, c := range g.controls {
		out[i] = c.ID
	}

	return out
}

// Groups returns the ids of all visibility groups. Declared groups come first,
// followed by those only named by a control's GROUPS.
func (m *Model) Groups() []string {
	out := make([]string, len(m.groups))
	for i, g := range m.groups {
		out[i] = g.id
	}

	return out
}
