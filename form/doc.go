// Package form implements the reactive model behind a form described in
// ConfigTree.
//
// A [Model] holds one string value per control. Controls may derive their
// value from other controls through an AUTOFILL function, check it with a
// PLAUSI function, and belong to visibility groups whose condition is another
// function. The model is built in two phases: every control and group is
// created first, then the free parameters of their functions are resolved
// into reverse dependency edges. [Model.SetValue] follows those edges and
// recomputes only what depends on the changed control, notifying each
// [Listener] once per affected control or group.
//
// The model is not safe for concurrent use.
package form
