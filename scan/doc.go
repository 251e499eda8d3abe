// Package scan folds an ordered row sequence into one output per group of
// contiguous rows sharing a key.
//
// Rows must arrive grouped: a key that reappears after another key has
// been seen starts a new group. Queries feeding a scan therefore order by
// the grouping key.
//
// Basic usage:
//
//	counts := scan.Grouped[reader.Row, string, int, Count]{
//		Key:  func(r reader.Row) string { return r.Value("user_id") },
//		Zero: func() int { return 0 },
//		Fold: func(n int, _ reader.Row) (int, error) { return n + 1, nil },
//		Emit: func(id string, n int) (Count, bool) { return Count{id, n}, true },
//	}
//	for c, err := range counts.Run(rows) {
//		...
//	}
package scan
