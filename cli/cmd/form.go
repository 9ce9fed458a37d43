package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/formkit/cli/cmd/tui"
	"github.com/ardnew/formkit/form"
	"github.com/ardnew/formkit/function"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// Form builds the form model of a document, applies presets and edits, and
// prints the resulting state.
type Form struct {
	Preset      []string `help:"YAML files mapping control ids to initial values"             short:"P" placeholder:"FILE" type:"existingfile"`
	Init        []string `help:"Initial control value (id=value); overrides preset files"     short:"I" placeholder:"ID=VALUE"`
	Set         []string `help:"Edit a control after construction (id=value), in order"       short:"s" placeholder:"ID=VALUE"`
	Dialog      []string `help:"Dialog field value (dialog.field=value)"                      short:"d" placeholder:"DIALOG.FIELD=VALUE"`
	Functions   []string `help:"Sources whose Functions sections BIND(FUNCTION ...) may name" short:"F" placeholder:"SOURCE"`
	Output      string   `help:"Output format" default:"text" enum:"text,json,yaml"             short:"o"`
	Trace       bool     `help:"Log every change notification"                                short:"t"`
	Interactive bool     `help:"Edit the form in a terminal user interface"                   short:"i"`

	Source string `arg:"" default:"-" help:"Source input file, URL or '-' for default stdin." name:"source"`
}

// Run executes the form command.
func (f *Form) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	m, err := f.model(ctx)
	if err != nil {
		return err
	}

	if f.Trace {
		m.AddListener(traceListener(ctx))
	}

	for _, s := range f.Set {
		id, value, err := form.ParsePreset(s)
		if err != nil {
			return err
		}

		if err := m.SetValue(id, value); err != nil {
			return err
		}
	}

	if f.Interactive {
		if err := tui.Run(ctx, m, tui.WithLogger(log.Default())); err != nil {
			return err
		}
	}

	snap := m.Snapshot()

	switch f.Output {
	case "json":
		if err := snap.WriteJSON(stdout); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case "yaml":
		if err := snap.WriteYAML(ctx, stdout); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil

	default:
		_, err := fmt.Fprint(stdout, renderText(snap))

		return err
	}
}

// model loads the document, presets, functions and dialogs, and constructs
// the form model.
func (f *Form) model(ctx context.Context) (*form.Model, error) {
	root, err := load(ctx, f.Source)
	if err != nil {
		return nil, pkg.WrapError(err).
			With(slog.String("source", f.Source))
	}

	presets, err := f.presets(ctx)
	if err != nil {
		return nil, err
	}

	lib, err := loadFunctions(ctx, f.Functions)
	if err != nil {
		return nil, err
	}

	dialogs, err := dialogLibrary(f.Dialog)
	if err != nil {
		return nil, err
	}

	return form.New(ctx, root,
		form.WithPresets(presets),
		form.WithFunctions(lib),
		form.WithDialogs(dialogs),
		form.WithLogger(log.Default()),
	)
}

// presets merges the preset files in order, then the --init assignments.
func (f *Form) presets(ctx context.Context) (form.Presets, error) {
	out := form.Presets{}

	for _, path := range uniqueSources(f.Preset) {
		file, err := os.Open(path)
		if err != nil {
			return nil, pkg.ErrIO.With(slog.String("file", path)).Wrap(err)
		}

		p, err := form.ReadPresets(ctx, file)
		_ = file.Close()

		if err != nil {
			return nil, pkg.WrapError(err).With(slog.String("file", path))
		}

		for id, v := range p {
			out[id] = v
		}
	}

	inits, err := assignments(f.Init)
	if err != nil {
		return nil, err
	}

	for id, v := range inits {
		out[id] = v
	}

	return out, nil
}

// dialogLibrary builds a library of static dialogs from
// "dialog.field=value" assignments.
func dialogLibrary(pairs []string) (*function.DialogLibrary, error) {
	data := map[string]function.DialogData{}

	for _, s := range pairs {
		key, value, ok := strings.Cut(s, "=")
		name, field, dot := strings.Cut(key, ".")

		if !ok || !dot || name == "" || field == "" {
			return nil, pkg.ErrConfiguration.
				With(slog.String("assignment", s)).
				Wrapf("expected dialog.field=value")
		}

		if data[name] == nil {
			data[name] = function.DialogData{}
		}

		data[name][field] = value
	}

	lib := function.NewDialogLibrary(nil)
	for name, d := range data {
		lib.Add(name, d)
	}

	return lib, nil
}

// traceListener logs every notification of the model.
func traceListener(ctx context.Context) form.Listener {
	return &form.ListenerFuncs{
		Value: func(id, value string) {
			log.InfoContext(ctx, "value changed",
				slog.String("id", id),
				slog.String("value", value),
			)
		},
		Status: func(id string, valid bool) {
			log.InfoContext(ctx, "status changed",
				slog.String("id", id),
				slog.Bool("valid", valid),
			)
		},
		Visibility: func(group string, visible bool) {
			log.InfoContext(ctx, "visibility changed",
				slog.String("group", group),
				slog.Bool("visible", visible),
			)
		},
	}
}

//nolint:gochecknoglobals
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	invalidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hiddenStyle  = lipgloss.NewStyle().Faint(true)
)

// renderText lays out one line per control: id, value and flags.
func renderText(s form.Snapshot) string {
	var sb strings.Builder

	if s.Title != "" {
		sb.WriteString(titleStyle.Render(s.Title))
		sb.WriteByte('\n')
	}

	width := 0
	for _, c := range s.Controls {
		width = max(width, lipgloss.Width(c.ID))
	}

	for _, c := range s.Controls {
		line := fmt.Sprintf("%-*s  %q", width, c.ID, c.Value)

		var flags []string
		if !c.Valid {
			flags = append(flags, "invalid")
		}

		if !c.Visible {
			flags = append(flags, "hidden")
		}

		if len(flags) > 0 {
			line += "  [" + strings.Join(flags, ",") + "]"
		}

		switch {
		case !c.Valid:
			line = invalidStyle.Render(line)
		case !c.Visible:
			line = hiddenStyle.Render(line)
		}

		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return sb.String()
}
