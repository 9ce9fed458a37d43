package function

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formkit/pkg"
)

func TestParseFunctions(t *testing.T) {
	root := parseExpr(t, `Config(
  Functions(
    Full(CAT(VALUE "first" " " VALUE "last"))
    Greeting(CAT("Hello " BIND(FUNCTION "Full" SET("first" "given"))))
  )
  Funktionen(
    IsAdult(GE(VALUE "age" "18"))
    Both(MATCH(VALUE "age" "[0-9]+") GE(VALUE "age" "0"))
  )
)`)

	lib, err := ParseFunctions(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"Full", "Greeting", "IsAdult", "Both"}, lib.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	greeting, ok := lib.Get("Greeting")
	if !ok {
		t.Fatal("Greeting not defined")
	}

	if diff := cmp.Diff([]string{"last", "given"}, greeting.Parameters()); diff != "" {
		t.Errorf("Parameters() mismatch (-want +got):\n%s", diff)
	}

	got := greeting.Eval(ValueMap{"given": "Ada", "last": "Lovelace"}).String()
	if got != "Hello Ada Lovelace" {
		t.Errorf("Eval() = %q", got)
	}

	both, _ := lib.Get("Both")
	if both.Kind() != KindAnd {
		t.Errorf("Both.Kind() = %v, want AND", both.Kind())
	}

	child := NewLibrary(lib)
	child.Add("Local", True)

	if _, ok := child.Get("IsAdult"); !ok {
		t.Error("Get() does not fall back to the parent library")
	}

	if child.Len() != 1 || lib.Len() != 4 {
		t.Errorf("Len() = %d, %d; want 1, 4", child.Len(), lib.Len())
	}
}

func TestParseFunctions_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"forward reference", `C(Functions(A(BIND(FUNCTION "B")) B("x")))`},
		{"bad definition", `C(Functions(A(NOPE("x"))))`},
		{"empty definition", `C(Functions(A))`},
		{"shadows builtin", `C(Functions(SUM(CAT("x"))))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFunctions(parseExpr(t, tt.src), nil)
			if !errors.Is(err, pkg.ErrConfiguration) {
				t.Fatalf("ParseFunctions() error = %v, want ErrConfiguration", err)
			}
		})
	}
}
