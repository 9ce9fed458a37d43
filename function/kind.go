package function

import "strconv"

// Kind identifies the operation performed by a [Function].
type Kind uint8

const (
	KindLiteral Kind = iota
	KindValue
	KindAnd
	KindOr
	KindNot
	KindCat
	KindIf
	KindSelect
	KindBind
	KindMatch
	KindReplace
	KindSplit
	KindLength
	KindDialog
	KindExtern
	KindSum
	KindDiff
	KindProduct
	KindMinus
	KindAbs
	KindSign
	KindDivide
	KindLess
	KindLessEqual
	KindGreater
	KindGreaterEqual
	KindNumCmp
	KindStrCmp
	KindIsError
	KindIsErrorString
)

var kindNames = [...]string{
	KindLiteral:       "literal",
	KindValue:         "VALUE",
	KindAnd:           "AND",
	KindOr:            "OR",
	KindNot:           "NOT",
	KindCat:           "CAT",
	KindIf:            "IF",
	KindSelect:        "SELECT",
	KindBind:          "BIND",
	KindMatch:         "MATCH",
	KindReplace:       "REPLACE",
	KindSplit:         "SPLIT",
	KindLength:        "LENGTH",
	KindDialog:        "DIALOG",
	KindExtern:        "EXTERN",
	KindSum:           "SUM",
	KindDiff:          "DIFF",
	KindProduct:       "PRODUCT",
	KindMinus:         "MINUS",
	KindAbs:           "ABS",
	KindSign:          "SIGN",
	KindDivide:        "DIVIDE",
	KindLess:          "LT",
	KindLessEqual:     "LE",
	KindGreater:       "GT",
	KindGreaterEqual:  "GE",
	KindNumCmp:        "NUMCMP",
	KindStrCmp:        "STRCMP",
	KindIsError:       "ISERROR",
	KindIsErrorString: "ISERRORSTRING",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}
