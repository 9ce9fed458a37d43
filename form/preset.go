package form

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/formkit/pkg"
)

// Presets maps control ids to initial values.
type Presets map[string]string

// ReadPresets decodes presets from a YAML mapping. Scalars other than
// strings are formatted with fmt; null becomes "".
func ReadPresets(ctx context.Context, r io.Reader) (Presets, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrIO.Wrap(err)
	}

	var raw map[string]any

	if err := yaml.UnmarshalContext(ctx, data, &raw); err != nil {
		return nil, pkg.ErrConfiguration.Wrap(err)
	}

	out := make(Presets, len(raw))

	for id, v := range raw {
		switch val := v.(type) {
		case nil:
			out[id] = ""
		case string:
			out[id] = val
		case map[string]any, []any:
			return nil, pkg.ErrConfiguration.
				With(slog.String("id", id)).
				Wrapf("preset %q is not a scalar", id)
		default:
			out[id] = fmt.Sprint(val)
		}
	}

	return out, nil
}

// ParsePreset parses an assignment of the form "id=value".
func ParsePreset(s string) (id, value string, err error) {
	id, value, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return "", "", pkg.ErrConfiguration.
			With(slog.String("assignment", s)).
			Wrapf("expected id=value")
	}

	return id, value, nil
}
