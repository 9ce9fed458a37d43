package form

import (
	"slices"

	"github.com/ardnew/formkit/pkg"
)

// Listener observes a [Model].
type Listener interface {
	// ValueChanged is called after the value of control id changed.
	ValueChanged(id, value string)
	// StatusChanged is called after the validity of control id changed.
	StatusChanged(id string, valid bool)
	// VisibilityChanged is called after the visibility of group changed.
	VisibilityChanged(group string, visible bool)
}

// ListenerFuncs adapts functions to a [Listener]. Nil fields are ignored.
type ListenerFuncs struct {
	Value      func(id, value string)
	Status     func(id string, valid bool)
	Visibility func(group string, visible bool)
}

func (f *ListenerFuncs) ValueChanged(id, value string) {
	if f.Value != nil {
		f.Value(id, value)
	}
}

func (f *ListenerFuncs) StatusChanged(id string, valid bool) {
	if f.Status != nil {
		f.Status(id, valid)
	}
}

func (f *ListenerFuncs) VisibilityChanged(group string, visible bool) {
	if f.Visibility != nil {
		f.Visibility(group, visible)
	}
}

// AddListener registers l. Registering a listener twice has no effect.
func (m *Model) AddListener(l Listener) {
	if !slices.Contains(m.listeners, l) {
		m.listeners = append(m.listeners, l)
	}
}

// RemoveListener unregisters l.
func (m *Model) RemoveListener(l Listener) {
	m.listeners = slices.DeleteFunc(m.listeners, func(e Listener) bool {
		return e == l
	})
}

// NotifyState reports the current value and validity of every control and the
// visibility of every group to l, which need not be registered.
func (m *Model) NotifyState(l Listener) error {
	if m.dispatching {
		return pkg.ErrReentrant
	}

	m.dispatching = true
	defer func() { m.dispatching = false }()

	for _, c := range m.controls {
		l.ValueChanged(c.ID, c.value)
		l.StatusChanged(c.ID, c.valid)
	}

	for _, g := range m.groups {
		l.VisibilityChanged(g.id, g.visible)
	}

	return nil
}

func (m *Model) notify(emit func(Listener)) {
	if len(m.listeners) == 0 {
		return
	}

	m.dispatching = true
	defer func() { m.dispatching = false }()

	for _, l := range slices.Clone(m.listeners) {
		emit(l)
	}
}
