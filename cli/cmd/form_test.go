package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formkit/form"
	"github.com/ardnew/formkit/pkg"
)

const acmeForm = `
Form(
  TITLE "Acme"
  Controls(
    (ID "A" TYPE "textfield" LABEL "Company")
    (ID "B" TYPE "textfield" AUTOFILL(CAT(VALUE "A" " Inc.")))
    (ID "C" TYPE "textfield" PLAUSI(MATCH(VALUE "C" "[0-9]*")))
  )
)`

func TestForm_RunText(t *testing.T) {
	presets := writeFile(t, "presets.yaml", "A: Acme\nC: 7\n")
	out := redirect(t, acmeForm)

	f := &Form{
		Preset: []string{presets},
		Init:   []string{"C=42"},
		Set:    []string{"C=abc"},
		Output: "text",
		Source: stdinSource,
	}

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()

	for _, want := range []string{
		"Acme\n",
		`A  "Acme"`,
		`B  "Acme Inc."`,
		`C  "abc"  [invalid]`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestForm_RunJSON(t *testing.T) {
	out := redirect(t, acmeForm)

	f := &Form{
		Init:   []string{"A=Initech", "C=1"},
		Output: "json",
		Source: stdinSource,
	}

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var snap form.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		t.Fatalf("decode %s: %v", out.String(), err)
	}

	want := form.Presets{"A": "Initech", "B": "Initech Inc.", "C": "1"}
	if diff := cmp.Diff(want, snap.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if snap.Title != "Acme" {
		t.Errorf("title = %q", snap.Title)
	}
}

func TestForm_RunYAML(t *testing.T) {
	out := redirect(t, acmeForm)

	f := &Form{Output: "yaml", Source: stdinSource}
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{"title: Acme", "id: B", "computed: true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestForm_RunErrors(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"unknown control", Form{Set: []string{"Z=1"}}, pkg.ErrUnknownField},
		{"bad set", Form{Set: []string{"novalue"}}, pkg.ErrConfiguration},
		{"bad init", Form{Init: []string{"=x"}}, pkg.ErrConfiguration},
		{"bad dialog", Form{Dialog: []string{"Contacts=Ada"}}, pkg.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect(t, acmeForm)

			f := tt.form
			f.Output = "text"
			f.Source = stdinSource

			if err := f.Run(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestForm_RunDialog(t *testing.T) {
	out := redirect(t, `Form(Controls(
  (ID "N" AUTOFILL(DIALOG("Contacts" "Name")))
  (ID "M" AUTOFILL(CAT(VALUE "N" "!")))
))`)

	f := &Form{
		Dialog: []string{"Contacts.Name=Ada"},
		Output: "text",
		Source: stdinSource,
	}

	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{`N  "Ada"`, `M  "Ada!"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestForm_Presets(t *testing.T) {
	first := writeFile(t, "first.yaml", "A: one\nB: two\n")
	second := writeFile(t, "second.yaml", "B: three\nC: ~\n")

	f := &Form{
		Preset: []string{first, second, first},
		Init:   []string{"A=init"},
	}

	got, err := f.presets(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := form.Presets{"A": "init", "B": "three", "C": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("presets mismatch (-want +got):\n%s", diff)
	}

	bad := writeFile(t, "bad.yaml", "A: [1, 2]\n")
	if _, err := (&Form{Preset: []string{bad}}).presets(context.Background()); !errors.Is(err, pkg.ErrConfiguration) {
		t.Errorf("non-scalar preset: err = %v", err)
	}
}

func TestDialogLibrary(t *testing.T) {
	lib, err := dialogLibrary([]string{"D.a=1", "D.b=x=y", "E.a="})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"D", "E"}, lib.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	d, ok := lib.Get("D")
	if !ok {
		t.Fatal("D missing")
	}

	if v, ok := d.Data("b"); !ok || v != "x=y" {
		t.Errorf("D.b = %q, %v", v, ok)
	}

	for _, bad := range []string{"D.a", "D=1", ".a=1", "D.=1"} {
		if _, err := dialogLibrary([]string{bad}); err == nil {
			t.Errorf("dialogLibrary(%q) succeeded", bad)
		}
	}
}

func TestRenderText(t *testing.T) {
	s := form.Snapshot{
		Controls: []form.ControlState{
			{Control: form.Control{ID: "A"}, Value: "x", Valid: true, Visible: true},
			{Control: form.Control{ID: "Long"}, Value: "", Valid: true, Visible: false},
		},
	}

	got := renderText(s)

	for _, want := range []string{`A     "x"`, `Long  ""  [hidden]`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
