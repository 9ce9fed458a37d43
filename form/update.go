package form

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/ardnew/formkit/pkg"
)

// SetValue sets the value of control id and recomputes what depends on it.
// Setting the current value does nothing.
//
// Listeners are notified once per changed control value, control validity
// and group visibility, after the model has settled. A listener calling
// SetValue receives [pkg.ErrReentrant].
func (m *Model) SetValue(id, value string) error {
	if m.dispatching {
		return pkg.ErrReentrant.With(slog.String("id", id))
	}

	c, err := m.control(id)
	if err != nil {
		return err
	}

	if c.value == value {
		if !c.failed {
			return nil
		}

		c.failed = false
		m.propagate(nil, nil, c)

		return nil
	}

	m.logger.Trace("set value",
		slog.String("id", id),
		slog.String("value", value),
	)

	c.value, c.failed = value, false
	m.propagate([]*control{c}, nil)

	return nil
}

// SetDialogAutofills recomputes the controls whose AUTOFILL reads dialog,
// after the dialog's data changed.
func (m *Model) SetDialogAutofills(dialog string) error {
	if m.dispatching {
		return pkg.ErrReentrant.With(slog.String("dialog", dialog))
	}

	seeds := m.dialogs[dialog]
	if len(seeds) == 0 {
		return nil
	}

	m.logger.Trace("dialog changed",
		slog.String("dialog", dialog),
		slog.Int("controls", len(seeds)),
	)

	m.propagate(nil, seeds)

	return nil
}

func (m *Model) byRank(cs []*control) []*control {
	out := slices.Clone(cs)
	slices.SortFunc(out, func(a, b *control) int { return cmp.Compare(a.rank, b.rank) })

	return out
}

// propagate recomputes the transitive AUTOFILL dependents of the origin
// controls, whose values were just set, and of the seeds, which must be
// recomputed themselves. A dependent is only evaluated if one of its inputs
// changed. The status of the rechecked controls is reevaluated even if their
// value is unchanged.
func (m *Model) propagate(origin, seeds []*control, rechecked ...*control) {
	var (
		changed = map[*control]bool{}
		set     = map[*control]bool{}
		dirty   = map[*control]bool{}
		order   []*control
	)

	for _, c := range origin {
		set[c] = true
		changed[c] = true
		order = append(order, c)
	}

	for _, c := range seeds {
		dirty[c] = true
	}

	var (
		pending []*control
		failed  = slices.Clone(rechecked)
		seen    = map[*control]bool{}
		stack   = append(slices.Clone(origin), seeds...)
	)

	for _, c := range seeds {
		seen[c] = true
		pending = append(pending, c)
	}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range c.dependents {
			if !seen[d] {
				seen[d] = true
				pending = append(pending, d)
				stack = append(stack, d)
			}
		}
	}

	for _, c := range m.byRank(pending) {
		if set[c] || (!dirty[c] && !slices.ContainsFunc(c.inputs, func(in *control) bool {
			return changed[in]
		})) {
			continue
		}

		value, failure := c.fill(m.byID)
		if failure {
			failed = append(failed, c)
		}

		if !value {
			continue
		}

		changed[c] = true
		order = append(order, c)
	}

	recheck := map[*control]bool{}
	regroup := map[*group]bool{}

	for _, c := range failed {
		recheck[c] = true
	}

	for _, c := range order {
		recheck[c] = true

		for _, k := range c.checkers {
			recheck[k] = true
		}

		for _, g := range c.watchers {
			regroup[g] = true
		}
	}

	var status []*control

	for _, c := range m.controls {
		if !recheck[c] {
			continue
		}

		if v := c.check(m.byID); v != c.valid {
			c.valid = v
			status = append(status, c)
		}
	}

	var visibility []*group

	for _, g := range m.groups {
		if !regroup[g] {
			continue
		}

		if v := g.evaluate(m.byID); v != g.visible {
			g.visible = v
			visibility = append(visibility, g)
		}
	}

	m.logger.Trace("propagated",
		slog.Int("values", len(order)),
		slog.Int("status", len(status)),
		slog.Int("visibility", len(visibility)),
	)

	m.notify(func(l Listener) {
		for _, c := range order {
			l.ValueChanged(c.ID, c.value)
		}

		for _, c := range status {
			l.StatusChanged(c.ID, c.valid)
		}

		for _, g := range visibility {
			l.VisibilityChanged(g.id, g.visible)
		}
	})
}
