package query

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedOperator is returned when a filter cannot be evaluated
// locally. The "not" connective is only understood by the export service.
var ErrUnsupportedOperator = errors.New("operator not supported for local evaluation")

// Evaluate evaluates a comparison. A missing column never matches.
func (c *Comparison) Evaluate(row Lookup) (bool, error) {
	value, exists := row.Get(c.Field.String())
	if !exists {
		return false, nil
	}

	return compare(value, c.Op, c.Value)
}

// Evaluate evaluates a logical expression
func (l *Logical) Evaluate(row Lookup) (bool, error) {
	left, err := l.Left.Evaluate(row)
	if err != nil {
		return false, err
	}

	switch l.Op {
	case OpAnd:
		if !left {
			return false, nil
		}
		return l.Right.Evaluate(row)
	case OpOr:
		if left {
			return true, nil
		}
		return l.Right.Evaluate(row)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, l.Op)
	}
}

// compare compares a row value with a literal. Numeric literals compare
// numerically and fail if the row value is not a number; string literals
// compare lexically.
func compare(value string, op CompareOp, lit Literal) (bool, error) {
	switch lit.Kind {
	case IntLiteral, FloatLiteral:
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false, fmt.Errorf("cannot compare %q with number %s", value, lit)
		}
		right := lit.Float
		if lit.Kind == IntLiteral {
			right = float64(lit.Int)
		}
		return compareNumbers(num, op, right), nil
	default:
		return compareStrings(value, op, lit.Str), nil
	}
}

// compareNumbers compares two numbers
func compareNumbers(left float64, op CompareOp, right float64) bool {
	switch op {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, op CompareOp, right string) bool {
	switch op {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// MapRow adapts a plain map to Lookup
type MapRow map[string]string

// Get returns the value stored under column
func (m MapRow) Get(column string) (string, bool) {
	v, ok := m[column]
	return v, ok
}

// ApplyFilter returns the rows matching filter. A nil filter matches all rows.
func ApplyFilter[R Lookup](rows []R, filter FilterNode) ([]R, error) {
	if filter == nil {
		return rows, nil
	}

	filtered := make([]R, 0)
	for _, row := range rows {
		match, err := filter.Evaluate(row)
		if err != nil {
			return nil, err
		}
		if match {
			filtered = append(filtered, row)
		}
	}

	return filtered, nil
}
