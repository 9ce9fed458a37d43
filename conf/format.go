package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToNative converts n to plain Go values: a leaf becomes its string value, an
// interior node a []any of its children's native values. Named interior
// children become single-key maps, and a KEY "value" pair maps the key
// directly to the value.
func (n *Node) ToNative() any {
	return native(n, false)
}

func native(n *Node, ordered bool) any {
	if n.IsLeaf() {
		return n.name
	}

	var val any

	if len(n.children) == 1 && n.children[0].IsLeaf() {
		val = n.children[0].name
	} else {
		list := make([]any, len(n.children))
		for i, c := range n.children {
			list[i] = native(c, ordered)
		}

		val = list
	}

	if n.name == "" {
		return val
	}

	if ordered {
		return yaml.MapSlice{{Key: n.name, Value: val}}
	}

	return map[string]any{n.name: val}
}

// MarshalJSON implements [json.Marshaler].
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(native(n, false))
}

// MarshalYAML implements the goccy/go-yaml BytesMarshaler interface.
func (n *Node) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(native(n, true))
}

// FormatJSON writes the JSON form of n to w, indented by indent spaces.
func (n *Node) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(native(n, false), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(native(n, false))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the YAML form of n to w. An indent of zero selects flow
// style.
func (n *Node) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, native(n, true), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// Tree writes an indented outline of n to w, one node per line, for
// debugging.
func (n *Node) Tree(w io.Writer) error {
	type item struct {
		node  *Node
		depth int
	}

	stack := []item{{n, 0}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		marker := "+"
		if it.node.IsLeaf() {
			marker = "-"
		}

		if _, err := fmt.Fprintf(w, "%s%s %q\n",
			strings.Repeat(indentUnit, it.depth), marker, it.node.name); err != nil {
			return err
		}

		for i := len(it.node.children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.children[i], it.depth + 1})
		}
	}

	return nil
}
