// Package conf implements ConfigTree, the nested textual configuration
// language used to describe forms, functions and dialogs.
//
// # Grammar
//
//	KEY ( ... )       named node with children
//	KEY "value"       shorthand for KEY("value")
//	"value"           anonymous leaf
//	( ... )           anonymous node
//	%include "url"    splice the top-level children of another document
//	# comment         until end of line
//
// Keys match ^[a-zA-Z_][a-zA-Z_0-9]*$. Strings are delimited by ' or ", a
// doubled delimiter stands for itself, and %n, %% and %uXXXX are escapes for
// newline, percent and a UTF-16 code unit. Whitespace, ',' and ';' separate
// tokens and are otherwise insignificant.
//
// # Trees
//
// [Parse] produces a [*Node] tree. A leaf is a node without children whose
// name is its value. The parser keeps an explicit stack of open nodes, so
// nesting depth is bounded by memory rather than by the goroutine stack.
//
// # Queries
//
// [Node.Get] and [Node.Query] search descendants breadth-first and stop at the
// shallowest level holding a match. Lookups that miss retry once with the
// node's alias (see [LegacyAliases]), so a config written with the German
// section names answers queries for the English ones and vice versa.
package conf
