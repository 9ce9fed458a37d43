package function

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/pkg"
)

func parseExpr(t testing.TB, src string) *conf.Node {
	t.Helper()

	root, err := conf.ParseString(context.Background(), "file:///expr.cfg", src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	n, err := root.First()
	if err != nil {
		t.Fatalf("parse %q: empty", src)
	}

	return n
}

func mustCompile(t testing.TB, src string, opts ...Option) Function {
	t.Helper()

	f, err := Compile(parseExpr(t, src), opts...)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}

	return f
}

// errResult is the expected text of the error result.
const errResult = "<error>"

func TestEval(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values ValueMap
		want   string
	}{
		{"literal", `"text"`, nil, "text"},
		{"value", `VALUE "a"`, ValueMap{"a": "x"}, "x"},
		{"value missing", `VALUE "a"`, nil, errResult},
		{"cat", `CAT("a" VALUE "x" "c")`, ValueMap{"x": "b"}, "abc"},
		{"cat error", `CAT("a" VALUE "m")`, nil, errResult},
		{"and", `AND("true" "TRUE")`, nil, "true"},
		{"and false", `AND("true" "no")`, nil, "false"},
		{"and strict", `AND("false" VALUE "m")`, nil, errResult},
		{"or short circuit", `OR("true" VALUE "m")`, nil, "true"},
		{"or error", `OR("false" VALUE "m")`, nil, errResult},
		{"not", `NOT("false" "false")`, nil, "true"},
		{"not any", `NOT("false" "true")`, nil, "false"},
		{"if then", `IF(STRCMP(VALUE "a" "x") THEN "yes" ELSE "no")`, ValueMap{"a": "x"}, "yes"},
		{"if else", `IF(STRCMP(VALUE "a" "x") THEN "yes" ELSE "no")`, ValueMap{"a": "y"}, "no"},
		{"if no else", `IF("false" THEN "yes")`, nil, ""},
		{"if error", `IF(VALUE "m" THEN "yes" ELSE "no")`, nil, errResult},
		{"select", `SELECT("" VALUE "a" "z")`, ValueMap{"a": "q"}, "q"},
		{"select empty", `SELECT("" "")`, nil, ""},
		{"select onerror", `SELECT(VALUE "m" "z" ONERROR "err")`, nil, "err"},
		{"select error", `SELECT(VALUE "m" "z")`, nil, errResult},
		{"match", `MATCH(VALUE "a" "[0-9]+")`, ValueMap{"a": "123"}, "true"},
		{"match anchored", `MATCH(VALUE "a" "[0-9]+")`, ValueMap{"a": "12x"}, "false"},
		{"replace", `REPLACE("2024-01-31" "(\d+)-(\d+)-(\d+)" "$3.$2.$1")`, nil, "31.01.2024"},
		{"replace dollar", `REPLACE("5" "^" "\$")`, nil, "$5"},
		{"split", `SPLIT("a,b,,c" "," "3")`, nil, "c"},
		{"split empty field", `SPLIT("a,b,,c" "," "2")`, nil, ""},
		{"split out of range", `SPLIT("a,b,," "," "2")`, nil, ""},
		{"length", `LENGTH("äb" "c")`, nil, "3"},
		{"strcmp", `STRCMP("a" "a" "a")`, nil, "true"},
		{"strcmp differs", `STRCMP("a" "a" "b")`, nil, "false"},
		{"iserror", `ISERROR(VALUE "m")`, nil, "true"},
		{"iserror value", `ISERROR("!¤£!FEHLERHAFTE DATEN!¤£!")`, nil, "false"},
		{"iserrorstring", `ISERRORSTRING("!¤£!FEHLERHAFTE DATEN!¤£!")`, nil, "true"},
		{"iserrorstring error", `ISERRORSTRING(VALUE "m")`, nil, "true"},
		{"iserrorstring value", `ISERRORSTRING("ok")`, nil, "false"},
		{
			"bind",
			`BIND(FUNCTION(CAT(VALUE "a" "-" VALUE "b")) SET("a" "x") SET("b" CAT("lit")))`,
			ValueMap{"x": "X", "a": "ignored"},
			"X-lit",
		},
		{
			"bind error",
			`BIND(FUNCTION(VALUE "a") SET("a" VALUE "m"))`,
			ValueMap{"a": "x"},
			errResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustCompile(t, tt.src)

			if got := f.Eval(tt.values).String(); got != tt.want {
				t.Errorf("Eval(%s) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvalBool(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`"TRUE"`, true},
		{`"yes"`, false},
		{`VALUE "m"`, false},
		{`AND("true" "true")`, true},
	}

	for _, tt := range tests {
		if got := mustCompile(t, tt.src).EvalBool(NoValues); got != tt.want {
			t.Errorf("EvalBool(%s) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestParameters(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"literal", `"x"`, nil},
		{"deduplicated", `CAT(VALUE "a" VALUE "b" VALUE "a")`, []string{"a", "b"}},
		{"nested", `IF(VALUE "c" THEN(VALUE "t") ELSE(CAT(VALUE "e" VALUE "c")))`, []string{"c", "t", "e"}},
		{"bind rename", `BIND(FUNCTION(VALUE "a") SET("a" "b"))`, []string{"b"}},
		{
			"bind partial",
			`BIND(FUNCTION(CAT(VALUE "a" VALUE "c")) SET("a" VALUE "a"))`,
			[]string{"c", "a"},
		},
		{"select onerror", `SELECT(VALUE "a" ONERROR(VALUE "b"))`, []string{"a", "b"}},
		{"extern", `EXTERN(URL "expr:x + y" PARAMS("x" "y" "x"))`, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustCompile(t, tt.src).Parameters()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parameters() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		src  string
		want Kind
	}{
		{`"x"`, KindLiteral},
		{`VALUE "a"`, KindValue},
		{`THEN "a"`, KindCat},
		{`FORMAT("1" MAX "2")`, KindDivide},
		{`LE("1" "2")`, KindLessEqual},
		{`ISERRORSTRING("x")`, KindIsErrorString},
	}

	for _, tt := range tests {
		if got := mustCompile(t, tt.src).Kind(); got != tt.want {
			t.Errorf("Kind(%s) = %v, want %v", tt.src, got, tt.want)
		}
	}

	if got := Kind(200).String(); got != "Kind(200)" {
		t.Errorf("Kind(200).String() = %q", got)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown function", `FOO("x")`},
		{"anonymous", `("x" "y")`},
		{"value arity", `VALUE("a" "b")`},
		{"if without condition", `IF(THEN "a")`},
		{"if two conditions", `IF("a" "b" THEN "c")`},
		{"bad regex", `MATCH("a" "(")`},
		{"regex depends on values", `MATCH("a" VALUE "p")`},
		{"split index", `SPLIT("a" "," VALUE "i")`},
		{"split negative", `SPLIT("a" "," "-1")`},
		{"replace arity", `REPLACE("a" "b")`},
		{"strcmp arity", `STRCMP("a")`},
		{"bind unknown", `BIND(FUNCTION "nope" SET("a" "b"))`},
		{"bind without function", `BIND(SET("a" "b"))`},
		{"bind bad clause", `BIND(FUNCTION(VALUE "a") OTHER("x"))`},
		{"dialog without context", `DIALOG("Contacts" "Name")`},
		{"extern unknown", `EXTERN(URL "go:missing")`},
		{"extern scheme", `EXTERN(URL "ftp:x")`},
		{"extern without url", `EXTERN(PARAMS("a"))`},
		{"nested error", `CAT("a" AND(FOO("x")))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(parseExpr(t, tt.src))
			if !errors.Is(err, pkg.ErrConfiguration) {
				t.Fatalf("Compile(%s) error = %v, want ErrConfiguration", tt.src, err)
			}
		})
	}
}

func TestCompileChildren(t *testing.T) {
	n := parseExpr(t, `PLAUSI(MATCH(VALUE "a" "x+") STRCMP(VALUE "b" "y"))`)

	and, err := CompileChildren(n, KindAnd)
	if err != nil {
		t.Fatal(err)
	}

	if and.Kind() != KindAnd {
		t.Errorf("Kind() = %v, want AND", and.Kind())
	}

	if !and.EvalBool(ValueMap{"a": "xx", "b": "y"}) {
		t.Error("EvalBool() = false, want true")
	}

	one, err := CompileChildren(parseExpr(t, `AUTOFILL "v"`), KindCat)
	if err != nil {
		t.Fatal(err)
	}

	if one.Kind() != KindLiteral {
		t.Errorf("single child Kind() = %v, want literal", one.Kind())
	}

	none, err := CompileChildren(conf.NewNode("EMPTY"), KindCat)
	if err != nil || none != nil {
		t.Errorf("CompileChildren(empty) = %v, %v; want nil, nil", none, err)
	}

	if _, err := CompileChildren(n, KindOr); !errors.Is(err, pkg.ErrConfiguration) {
		t.Errorf("join with OR: error = %v, want ErrConfiguration", err)
	}
}

func TestWalk(t *testing.T) {
	f := mustCompile(t, `CAT(VALUE "a" IF("true" THEN "x"))`)

	var kinds []Kind

	Walk(f, func(g Function) bool {
		kinds = append(kinds, g.Kind())

		return g.Kind() != KindIf
	})

	want := []Kind{KindCat, KindValue, KindIf}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestDialog(t *testing.T) {
	dialogs := NewDialogLibrary(nil)
	dialogs.Add("Contacts", DialogData{"Name": "Ada"})

	opts := []Option{WithDialogs(dialogs), WithContext(Context{})}

	f := mustCompile(t, `CAT(DIALOG("Contacts" "Name") VALUE "x")`, opts...)

	if got := f.Eval(ValueMap{"x": "!"}).String(); got != "Ada!" {
		t.Errorf("Eval() = %q, want %q", got, "Ada!")
	}

	if diff := cmp.Diff([]string{"Contacts"}, f.DialogRefs()); diff != "" {
		t.Errorf("DialogRefs() mismatch (-want +got):\n%s", diff)
	}

	missing := mustCompile(t, `DIALOG("Contacts" "Phone")`, opts...)
	if !missing.Eval(NoValues).IsError() {
		t.Error("missing dialog field: want error result")
	}

	_, err := Compile(parseExpr(t, `DIALOG("Other" "Name")`), opts...)
	if !errors.Is(err, pkg.ErrConfiguration) {
		t.Errorf("unknown dialog: error = %v, want ErrConfiguration", err)
	}
}

type perDocument struct {
	key string
}

func (d perDocument) Instance(ctx Context) Dialog {
	data, _ := ctx[d.key].(DialogData)

	return data
}

func (perDocument) Data(string) (string, bool) { return "", false }

func TestDialog_Instance(t *testing.T) {
	parent := NewDialogLibrary(nil)
	parent.Add("Static", DialogData{})

	dialogs := NewDialogLibrary(parent)
	dialogs.Add("Picker", perDocument{key: "picker"})

	ctx := Context{"picker": DialogData{"Choice": "one"}}
	f := mustCompile(t, `DIALOG("Picker" "Choice")`,
		WithDialogs(dialogs), WithContext(ctx))

	if got := f.Eval(NoValues).String(); got != "one" {
		t.Errorf("Eval() = %q, want %q", got, "one")
	}

	ctx["picker"] = DialogData{"Choice": "two"}

	if got := f.Eval(NoValues).String(); got != "two" {
		t.Errorf("Eval() after context change = %q, want %q", got, "two")
	}

	if _, ok := dialogs.Get("Static"); !ok {
		t.Error("Get() does not fall back to the parent library")
	}

	if diff := cmp.Diff([]string{"Picker"}, dialogs.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
