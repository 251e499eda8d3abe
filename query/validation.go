package query

import (
	"errors"
	"fmt"
)

// Validation constants to prevent DoS and resource exhaustion
const (
	// MaxQueryLength is the maximum allowed query string length (1MB)
	MaxQueryLength = 1024 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 10000

	// MaxExpressionDepth is the maximum nesting depth for expressions.
	// Connective chains nest to the right, so this also bounds chain length.
	MaxExpressionDepth = 500

	// MaxIdentifierLength is the maximum length for a field path or table name
	MaxIdentifierLength = 256

	// MinIdentifierLength is the minimum length of each identifier segment
	MinIdentifierLength = 2
)

var (
	// ErrSyntax is matched by every error returned from Compile
	ErrSyntax = errors.New("syntax error")

	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in query")

	// ErrExpressionTooDeep is returned when expression nesting exceeds limit
	ErrExpressionTooDeep = errors.New("expression nesting too deep")

	// ErrIdentifierTooLong is returned when an identifier is too long
	ErrIdentifierTooLong = errors.New("identifier too long")

	// ErrIdentifierTooShort is returned for single-character identifiers
	ErrIdentifierTooShort = errors.New("identifier too short")
)

// SyntaxError describes a malformed query. Pos is the byte offset of the
// offending token and Snippet the text around it.
type SyntaxError struct {
	Pos     int
	Snippet string
	Msg     string
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("syntax error at position %d near %q: %s", e.Pos, e.Snippet, e.Msg)
}

// Is makes every SyntaxError match ErrSyntax
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// snippetAround returns up to 20 bytes of input starting at pos
func snippetAround(input string, pos int) string {
	if pos >= len(input) {
		return ""
	}
	end := pos + 20
	if end > len(input) {
		end = len(input)
	}
	return input[pos:end]
}

// ValidateQuery performs security validation on query input
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(query), MaxQueryLength)
	}
	return nil
}

// ValidateIdentifier validates the length of every segment of a path
func ValidateIdentifier(path FieldPath) error {
	if len(path.String()) > MaxIdentifierLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrIdentifierTooLong, len(path.String()), MaxIdentifierLength)
	}
	for _, seg := range path {
		if len(seg) < MinIdentifierLength {
			return fmt.Errorf("%w: %q (min %d chars)", ErrIdentifierTooShort, seg, MinIdentifierLength)
		}
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ExpressionDepthCounter tracks expression nesting depth
type ExpressionDepthCounter struct {
	depth    int
	maxDepth int
}

// NewExpressionDepthCounter creates a new depth counter
func NewExpressionDepthCounter() *ExpressionDepthCounter {
	return &ExpressionDepthCounter{depth: 0, maxDepth: MaxExpressionDepth}
}

// Enter increments depth and returns error if limit exceeded
func (c *ExpressionDepthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth
func (c *ExpressionDepthCounter) Exit() {
	c.depth--
}
