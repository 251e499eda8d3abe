package query

import (
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenAnd
	TokenOr
	TokenNot

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenInt
	TokenFloat
	TokenIdent

	// Delimiters
	TokenComma
	TokenLParen
	TokenRParen
	TokenStar

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenOrder:        "ORDER",
	TokenBy:           "BY",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenString:       "string",
	TokenInt:          "integer",
	TokenFloat:        "float",
	TokenIdent:        "identifier",
	TokenComma:        ",",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenStar:         "*",
	TokenEOF:          "end of query",
	TokenError:        "invalid token",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Token represents a lexical token. Pos is the byte offset of the token in
// the query text.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// FieldPath is a dotted identifier path such as customer.email. It names a
// projected column and, when echoed back by the export service, a row's
// column key.
type FieldPath []string

// String renders the path with "." separators.
func (f FieldPath) String() string {
	return strings.Join(f, ".")
}

// SortDirection is the order of a sort clause entry
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Sort is one entry of an ORDER BY clause
type Sort struct {
	Field     FieldPath
	Direction SortDirection
}

// SelectSpec is the compiled form of a query. Filter and Sorts are nil when
// the query had no WHERE or ORDER BY clause. A SelectSpec is never modified
// after Compile returns it.
type SelectSpec struct {
	Fields []FieldPath
	Object string
	Filter FilterNode
	Sorts  []Sort
}

// Columns returns the dotted names of the projected fields in request order.
// These are the header names the export service writes into result shards.
func (s *SelectSpec) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.String()
	}
	return cols
}

// Lookup is the row shape a filter is evaluated against
type Lookup interface {
	Get(column string) (string, bool)
}

// FilterNode is a node of a WHERE expression: either a *Comparison or a
// *Logical.
type FilterNode interface {
	// Evaluate reports whether row satisfies the filter
	Evaluate(row Lookup) (bool, error)
	String() string
	filterNode()
}

// CompareOp is a comparison operator
type CompareOp string

const (
	OpEqual        CompareOp = "="
	OpNotEqual     CompareOp = "!="
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
)

// LogicalOp is a connective between two filter terms
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "not"
)

// Comparison represents "field op literal"
type Comparison struct {
	Field FieldPath
	Op    CompareOp
	Value Literal
}

// Logical joins two filter terms. Chains nest to the right:
// "a and b or c" is and(a, or(b, c)).
type Logical struct {
	Op    LogicalOp
	Left  FilterNode
	Right FilterNode
}

func (*Comparison) filterNode() {}
func (*Logical) filterNode()    {}

func (c *Comparison) String() string {
	return c.Field.String() + " " + string(c.Op) + " " + c.Value.String()
}

func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + string(l.Op) + " " + l.Right.String() + ")"
}
