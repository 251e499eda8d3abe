package scan

import (
	"iter"
)

// Grouped describes a streaming group-by over contiguous keys.
//
// Key extracts the grouping key of a row. Zero returns a fresh state for
// each group. Fold merges a row into the state. Emit turns a finished
// group into an output value; returning false drops the group.
type Grouped[R any, K comparable, S any, O any] struct {
	Key  func(R) K
	Zero func() S
	Fold func(S, R) (S, error)
	Emit func(K, S) (O, bool)
}

// Run consumes rows and yields one output per group, in row order. The
// last group is emitted once rows are exhausted. An error from the input
// or from Fold is yielded once and ends the scan.
func (g Grouped[R, K, S, O]) Run(rows iter.Seq2[R, error]) iter.Seq2[O, error] {
	return func(yield func(O, error) bool) {
		var (
			zero    O
			key     K
			state   S
			started bool
		)

		flush := func() bool {
			out, ok := g.Emit(key, state)
			if !ok {
				return true
			}
			return yield(out, nil)
		}

		for row, err := range rows {
			if err != nil {
				yield(zero, err)
				return
			}

			k := g.Key(row)
			if !started || k != key {
				if started && !flush() {
					return
				}
				key, state, started = k, g.Zero(), true
			}

			state, err = g.Fold(state, row)
			if err != nil {
				yield(zero, err)
				return
			}
		}

		if started {
			flush()
		}
	}
}

// Collect drains seq into a slice and stops at the first error
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Flatten yields every element of every slice produced by seq
func Flatten[T any](seq iter.Seq2[[]T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for batch, err := range seq {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, v := range batch {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// Progress calls report every n items and passes the sequence through
// unchanged. The final count is reported when the sequence ends.
func Progress[T any](seq iter.Seq2[T, error], n int, report func(count int, done bool)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		count := 0
		for v, err := range seq {
			if err == nil {
				count++
				if n > 0 && count%n == 0 {
					report(count, false)
				}
			}
			if !yield(v, err) {
				return
			}
		}
		report(count, true)
	}
}
