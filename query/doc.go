// Package query compiles the export query language into a SelectSpec.
//
// The language is a restricted subset of SQL matching what the export
// service can run:
//   - SELECT with an explicit, non-empty list of (possibly dotted) fields
//   - FROM naming exactly one object; related objects are joined
//     implicitly by the service through dotted field paths
//   - WHERE with "field op value" comparisons joined by AND, OR or NOT
//   - ORDER BY with optional ASC/DESC per field
//
// There is no aggregation, no explicit join and no wildcard projection.
//
// # Basic Usage
//
//	spec, err := query.Compile(`
//	    select user_id, customer.name
//	    from events
//	    where event_type = 'email' and ts > 1514764800
//	    order by user_id, ts desc
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Operators
//
// Comparison operators are =, !=, <>, <, >, <= and >=; "<>" is an alias of
// "!=". Values are single-quoted strings (with \\ and \' escapes), integers
// or floats. Numbers may carry a leading "-" but no leading zeros.
//
// Connectives have no precedence and chains nest to the right:
//
//	a = 1 and b = 2 or c = 3    =>    and(a = 1, or(b = 2, c = 3))
//
// Use parentheses to group to the left.
//
// # Local Evaluation
//
// A compiled filter can be evaluated against rows held locally:
//
//	ok, err := spec.Filter.Evaluate(query.MapRow{"ts": "5"})
//
// # Error Handling
//
// Every error returned by Compile is a *SyntaxError and matches ErrSyntax
// with errors.Is. Malformed queries never reach the network.
package query
