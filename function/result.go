package function

// Result is the outcome of evaluating a function: either a string value or
// the error result. The zero value is the error result.
type Result struct {
	val string
	ok  bool
}

// Ok returns a successful result holding s.
func Ok(s string) Result { return Result{val: s, ok: true} }

// Fail returns the error result.
func Fail() Result { return Result{} }

// IsError reports whether r is the error result.
func (r Result) IsError() bool { return !r.ok }

// Value returns the string value of r and whether r is not the error result.
func (r Result) Value() (string, bool) { return r.val, r.ok }

// Or returns the value of r, or def if r is the error result.
func (r Result) Or(def string) string {
	if !r.ok {
		return def
	}

	return r.val
}

// String returns the value of r, or "<error>" for the error result.
func (r Result) String() string { return r.Or("<error>") }

func boolResult(b bool) Result {
	if b {
		return Ok("true")
	}

	return Ok("false")
}
