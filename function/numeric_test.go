package function

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/formkit/pkg"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values ValueMap
		want   string
	}{
		{"sum exact", `SUM("0.1" "0.2")`, nil, "0.3"},
		{"sum comma", `SUM("1,5" "1")`, nil, "2.5"},
		{"sum values", `SUM(VALUE "a" VALUE "b")`, ValueMap{"a": "2", "b": "-3"}, "-1"},
		{"sum not a number", `SUM("1" "x")`, nil, errResult},
		{"sum empty operand", `SUM("1" "")`, nil, errResult},
		{"sum infinity", `SUM("1" "Inf")`, nil, errResult},
		{"diff", `DIFF("10" "2.5" "0.5")`, nil, "7"},
		{"diff single", `DIFF("4.20")`, nil, "4.2"},
		{"product", `PRODUCT("1.5" "4")`, nil, "6"},
		{"minus", `MINUS("3")`, nil, "-3"},
		{"minus zero", `MINUS("0")`, nil, "0"},
		{"abs", `ABS("-2.50")`, nil, "2.5"},
		{"sign negative", `SIGN("-0.1")`, nil, "-1"},
		{"sign zero", `SIGN("0.000")`, nil, "0"},
		{"sign positive", `SIGN("7")`, nil, "1"},
		{"divide", `DIVIDE("10" BY "3" MAX "2")`, nil, "3.33"},
		{"divide min", `DIVIDE("2" BY "3" MIN "1" MAX "3")`, nil, "0.667"},
		{"divide half up", `DIVIDE("1" BY "8" MAX "2")`, nil, "0.13"},
		{"divide half up negative", `DIVIDE("-1" BY "8" MAX "2")`, nil, "-0.13"},
		{"divide trims", `DIVIDE("1" BY "4" MIN "1" MAX "4")`, nil, "0.25"},
		{"divide pads", `DIVIDE("1" BY "2" MIN "3" MAX "4")`, nil, "0.500"},
		{"divide by zero", `DIVIDE("1" BY "0" MAX "2")`, nil, errResult},
		{"divide by value", `DIVIDE("9" BY(VALUE "d") MAX "0")`, ValueMap{"d": "2"}, "5"},
		{"format", `FORMAT("5" MIN "2")`, nil, "5.00"},
		{"format rounds", `FORMAT("2.345" MAX "2")`, nil, "2.35"},
		{"format large", `FORMAT("12345678901234567890.5" MAX "0")`, nil, "12345678901234567891"},
		{"divide max precision", `DIVIDE("1" BY "3" MAX "34")`, nil, "0." + strings.Repeat("3", 34)},
		{"lt", `LT("1" "2" "3")`, nil, "true"},
		{"lt chained", `LT("1" "3" "2")`, nil, "false"},
		{"le", `LE("1" "1.0" "2")`, nil, "true"},
		{"gt", `GT("3" "2")`, nil, "true"},
		{"ge", `GE("2" "2" "1")`, nil, "true"},
		{"compare error", `LT("1" VALUE "m")`, nil, errResult},
		{"numcmp", `NUMCMP("1" "1.00")`, nil, "true"},
		{"numcmp differs", `NUMCMP("1" "2")`, nil, "false"},
		{"numcmp margin", `NUMCMP("1.0" "1.05" "0.95" MARGIN "0.1")`, nil, "true"},
		{"numcmp outside margin", `NUMCMP("1.0" "1.2" MARGIN "0.1")`, nil, "false"},
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

func TestNumeric_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"minus arity", `MINUS("1" "2")`},
		{"sign arity", `SIGN("1" "2")`},
		{"by without max", `DIVIDE("1" BY "2")`},
		{"min exceeds max", `DIVIDE("1" MIN "3" MAX "2")`},
		{"negative max", `DIVIDE("1" MAX "-1")`},
		{"max beyond precision", `DIVIDE("1" MAX "40")`},
		{"max overflows int32", `DIVIDE("1" BY "3" MAX "4294967298")`},
		{"min beyond precision", `DIVIDE("1" MIN "35")`},
		{"max depends on values", `DIVIDE("1" MAX(VALUE "m"))`},
		{"two dividends", `DIVIDE("1" "2" MAX "1")`},
		{"no dividend", `DIVIDE(MAX "1")`},
		{"two divisors", `DIVIDE("1" BY "2" BY "3" MAX "1")`},
		{"compare arity", `GE("1")`},
		{"numcmp arity", `NUMCMP("1" MARGIN "1")`},
		{"numcmp negative margin", `NUMCMP("1" "2" MARGIN "-1")`},
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

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in       string
		minScale int
		want     string
	}{
		{"1.500", 0, "1.5"},
		{"1.500", 2, "1.50"},
		{"100", 0, "100"},
		{"1E+2", 0, "100"},
		{"-0.00", 0, "0"},
		{"-0.00", 1, "0.0"},
		{"0,25", 0, "0.25"},
	}

	for _, tt := range tests {
		d, ok := ParseDecimal(tt.in)
		if !ok {
			t.Fatalf("ParseDecimal(%q) failed", tt.in)
		}

		if got := FormatDecimal(d, tt.minScale); got != tt.want {
			t.Errorf("FormatDecimal(%q, %d) = %q, want %q", tt.in, tt.minScale, got, tt.want)
		}
	}

	for _, bad := range []string{"", "abc", "NaN", "1,5.0,", "-Infinity"} {
		if _, ok := ParseDecimal(bad); ok {
			t.Errorf("ParseDecimal(%q) succeeded", bad)
		}
	}
}
