// Package tui implements the interactive form editor of the form command.
//
// The editor lists the controls of a [form.Model] with their values,
// filtered fuzzily by id and label as the user types. Enter edits the
// selected value inline, ctrl+e opens it in $VISUAL or $EDITOR, and ctrl+z
// undoes the last edit. Every confirmed edit goes through
// [form.Model.SetValue], so derived values, validity and visibility update
// as the user works.
package tui
