package query

import (
	"strconv"
	"strings"
)

// LiteralKind tags the variant held by a Literal
type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	IntLiteral
	FloatLiteral
)

// Literal is the right-hand side of a comparison
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
}

// String returns a string literal
func String(s string) Literal { return Literal{Kind: StringLiteral, Str: s} }

// Int returns an integer literal
func Int(i int64) Literal { return Literal{Kind: IntLiteral, Int: i} }

// Float returns a float literal
func Float(f float64) Literal { return Literal{Kind: FloatLiteral, Float: f} }

// String renders the literal in query syntax
func (l Literal) String() string {
	switch l.Kind {
	case IntLiteral:
		return strconv.FormatInt(l.Int, 10)
	case FloatLiteral:
		return formatFloat(l.Float)
	default:
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "'" + r.Replace(l.Str) + "'"
	}
}

// MarshalJSON encodes strings as JSON strings and numbers as JSON numbers.
// Floats always carry a fractional part so the service sees a float.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case IntLiteral:
		return []byte(strconv.FormatInt(l.Int, 10)), nil
	case FloatLiteral:
		return []byte(formatFloat(l.Float)), nil
	default:
		return Marshal(l.Str)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
