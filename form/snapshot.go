package form

import (
	"context"
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"
)

// ControlState is the state of a control at the time of a [Snapshot].
type ControlState struct {
	Control `yaml:",inline"`

	Value   string `json:"value"   yaml:"value"`
	Valid   bool   `json:"valid"   yaml:"valid"`
	Visible bool   `json:"visible" yaml:"visible"`
}

// GroupState is the state of a visibility group at the time of a [Snapshot].
type GroupState struct {
	ID       string   `json:"id"                 yaml:"id"`
	Visible  bool     `json:"visible"            yaml:"visible"`
	Controls []string `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// Snapshot is a copy of the state of a [Model].
type Snapshot struct {
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Controls []ControlState `json:"controls"        yaml:"controls"`
	Groups   []GroupState   `json:"groups"          yaml:"groups"`
}

// Snapshot returns the current state of every control and group.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Title:    m.title,
		Controls: make([]ControlState, len(m.controls)),
		Groups:   make([]GroupState, len(m.groups)),
	}

	for i, c := range m.controls {
		s.Controls[i] = ControlState{
			Control: c.describe(),
			Value:   c.value,
			Valid:   c.valid,
			Visible: m.controlVisible(c),
		}
	}

	for i, g := range m.groups {
		s.Groups[i] = GroupState{
			ID:       g.id,
			Visible:  g.visible,
			Controls: m.ControlsByGroup(g.id),
		}
	}

	return s
}

// Values returns the control values keyed by id.
func (s Snapshot) Values() Presets {
	out := make(Presets, len(s.Controls))
	for _, c := range s.Controls {
		out[c.ID] = c.Value
	}

	return out
}

// WriteJSON writes s as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}

// WriteYAML writes s as YAML.
func (s Snapshot) WriteYAML(ctx context.Context, w io.Writer) error {
	return yaml.NewEncoder(w, yaml.IndentSequence(true)).EncodeContext(ctx, s)
}
