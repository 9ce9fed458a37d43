// Package function compiles ConfigTree expressions into evaluable functions.
//
// An expression is a [conf.Node] whose name selects the kind of function and
// whose children are its operands:
//
//	IF(STRCMP(VALUE "Country" "DE") THEN "Inland" ELSE "Ausland")
//	CAT(VALUE "Company" " Inc.")
//	SUM("0.1" VALUE "Net")
//
// A leaf always compiles to a literal, so "AND" on its own is just a string.
//
// Evaluation never fails with a Go error. A function whose operands cannot be
// evaluated yields the error [Result], which combinators propagate; only
// ISERROR, ISERRORSTRING and the ONERROR branch of SELECT observe it.
//
// Every function reports its free value names through Parameters, which the
// form model uses to wire its dependency graph.
package function
