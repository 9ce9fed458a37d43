package form

import (
	"slices"

	"github.com/ardnew/formkit/function"
)

// Control describes a form control.
type Control struct {
	ID     string   `json:"id"               yaml:"id"`
	Type   string   `json:"type,omitempty"   yaml:"type,omitempty"`
	Label  string   `json:"label,omitempty"  yaml:"label,omitempty"`
	Tab    string   `json:"tab,omitempty"    yaml:"tab,omitempty"`
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	// Computed reports whether the control has an AUTOFILL.
	Computed bool `json:"computed,omitempty" yaml:"computed,omitempty"`
}

type control struct {
	Control

	autofill function.Function
	plausi   function.Function

	value string
	valid bool
	// failed is set while the AUTOFILL evaluates to an error.
	failed bool

	// inputs are the controls read by the AUTOFILL.
	inputs []*control
	// dependents have an AUTOFILL reading this control.
	dependents []*control
	// checkers have a PLAUSI reading this control.
	checkers []*control
	// watchers are the groups whose condition reads this control.
	watchers []*group

	index int // declaration order
	rank  int // evaluation order of AUTOFILL
}

func (c *control) describe() Control {
	d := c.Control
	d.Groups = slices.Clone(c.Groups)

	return d
}

// fill evaluates the AUTOFILL. An error leaves the value empty and marks the
// control as failed. It reports whether the value or the failure changed.
func (c *control) fill(v function.Values) (value, failure bool) {
	s, ok := c.autofill.Eval(v).Value()
	if !ok {
		s = ""
	}

	value, failure = s != c.value, ok == c.failed
	c.value, c.failed = s, !ok

	return value, failure
}

func (c *control) check(v function.Values) bool {
	if c.failed {
		return false
	}

	if c.plausi == nil {
		return true
	}

	return c.plausi.EvalBool(v)
}

type group struct {
	id        string
	condition function.Function
	visible   bool
	controls  []*control
	index     int
}

func (g *group) evaluate(v function.Values) bool {
	return g.condition.EvalBool(v)
}

// values exposes the control values of a model to functions.
type values map[string]*control

func (v values) Lookup(id string) (string, bool) {
	c, ok := v[id]
	if !ok {
		return "", false
	}

	return c.value, true
}
