package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func resolveString(t *testing.T, name, src string) kong.Resolver {
	t.Helper()

	resolver, err := resolve(context.Background(), name)(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	return resolver
}

func lookup(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_ReturnsCorrectConfig(t *testing.T) {
	src := `
config(
  log_level "debug"
  log_format "text"
  include_path("/a" "/b")
)
other(foo "bar")`

	r := resolveString(t, "config", src)

	tests := []struct {
		flag string
		want any
	}{
		{"log_level", "debug"},
		{"log-level", "debug"},
		{"log_format", "text"},
		{"include-path", []any{"/a", "/b"}},
		{"foo", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lookup(t, r, tt.flag)); diff != "" {
				t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", tt.flag, diff)
			}
		})
	}
}

func TestResolve_LaterSectionsOverride(t *testing.T) {
	r := resolveString(t, "config", `
config(log_level "debug" log_format "json")
config(log_level "warn")`)

	if got := lookup(t, r, "log-level"); got != "warn" {
		t.Errorf("log-level = %v, want warn", got)
	}

	if got := lookup(t, r, "log-format"); got != "json" {
		t.Errorf("log-format = %v, want json", got)
	}
}

func TestResolve_Ignored(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing section", `existing(foo "bar")`},
		{"syntax error", `config(log_level "debug"`},
		{"empty", ``},
		{"nested entry", `config(log_level(a(b "c")))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolveString(t, "config", tt.src)

			if got := lookup(t, r, "log-level"); got != nil {
				t.Errorf("log-level = %v, want nil", got)
			}
		})
	}
}

func TestResolve_Flags(t *testing.T) {
	var cli struct {
		Level string   `default:"info" name:"log-level"`
		Paths []string `name:"include-path"`
	}

	r := resolveString(t, "config", `config(log_level "debug" include_path("x" "y"))`)

	parser, err := kong.New(&cli, kong.Resolvers(r))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "debug" {
		t.Errorf("Level = %q, want debug", cli.Level)
	}

	if diff := cmp.Diff([]string{"x", "y"}, cli.Paths); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}

	if _, err := parser.Parse([]string{"--log-level=error"}); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "error" {
		t.Errorf("Level = %q, want error (flag overrides config)", cli.Level)
	}
}
