package function

import (
	"maps"
	"slices"

	"github.com/ardnew/formkit/conf"
)

// Context holds per-document state. Dialogs use it to keep one instance per
// document.
type Context map[any]any

// Dialog supplies field values collected outside the form, such as a contact
// picker.
type Dialog interface {
	// Instance returns the dialog instance belonging to ctx.
	Instance(ctx Context) Dialog
	// Data returns the current value of field.
	Data(field string) (string, bool)
}

// DialogData is a stateless [Dialog] backed by a map.
type DialogData map[string]string

func (d DialogData) Instance(Context) Dialog { return d }

func (d DialogData) Data(field string) (string, bool) {
	s, ok := d[field]

	return s, ok
}

// DialogLibrary is a registry of named dialogs. Lookups fall back to the
// parent library.
type DialogLibrary struct {
	parent  *DialogLibrary
	dialogs map[string]Dialog
}

// NewDialogLibrary returns an empty library chained to parent, which may be
// nil.
func NewDialogLibrary(parent *DialogLibrary) *DialogLibrary {
	return &DialogLibrary{parent: parent, dialogs: map[string]Dialog{}}
}

// Add registers d under name, replacing any dialog of that name.
func (l *DialogLibrary) Add(name string, d Dialog) {
	l.dialogs[name] = d
}

// Get returns the dialog named name.
func (l *DialogLibrary) Get(name string) (Dialog, bool) {
	for ; l != nil; l = l.parent {
		if d, ok := l.dialogs[name]; ok {
			return d, true
		}
	}

	return nil, false
}

// Names returns the sorted names of the dialogs registered in l, not in its
// parents.
func (l *DialogLibrary) Names() []string {
	if l == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(l.dialogs))
}

// DIALOG("dialog" "field") reads field from the dialog instance of the
// compilation context.
func buildDialog(c *compiler, n *conf.Node) (Function, error) {
	ops, err := operands(c, n, 2)
	if err != nil {
		return nil, err
	}

	if !ops[0].IsLeaf() || !ops[1].IsLeaf() {
		return nil, c.errorf(n, "DIALOG requires a dialog and a field name")
	}

	name, field := ops[0].Name(), ops[1].Name()

	if c.ctx == nil {
		return nil, c.errorf(n, "DIALOG %q requires a context", name)
	}

	d, ok := c.dialogs.Get(name)
	if !ok {
		return nil, c.errorf(n, "undefined dialog %q", name)
	}

	ctx := c.ctx

	return &fn{
		kind:    KindDialog,
		dialogs: []string{name},
		eval: func(Values) Result {
			inst := d.Instance(ctx)
			if inst == nil {
				return Fail()
			}

			s, ok := inst.Data(field)
			if !ok {
				return Fail()
			}

			return Ok(s)
		},
	}, nil
}
