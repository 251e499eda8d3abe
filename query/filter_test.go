package query

import (
	"errors"
	"testing"
)

func TestCompare_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		value string
		op    CompareOp
		lit   Literal
		want  bool
	}{
		{"int equal", "30", OpEqual, Int(30), true},
		{"int not equal", "30", OpNotEqual, Int(25), true},
		{"int less", "25", OpLess, Int(30), true},
		{"int greater", "35", OpGreater, Int(30), true},
		{"int less equal same", "30", OpLessEqual, Int(30), true},
		{"int greater equal same", "30", OpGreaterEqual, Int(30), true},
		{"float row vs int literal", "30.0", OpEqual, Int(30), true},
		{"int row vs float literal", "3", OpLess, Float(3.5), true},
		{"negative", "-10", OpGreater, Int(0), false},
		{"numeric not lexical", "9", OpLess, Int(10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compare(tt.value, tt.op, tt.lit)
			if err != nil {
				t.Errorf("compare() error = %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("compare(%q, %v, %v) = %v, want %v", tt.value, tt.op, tt.lit, got, tt.want)
			}
		})
	}
}

func TestCompare_Strings(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		op    CompareOp
		right string
		want  bool
	}{
		{"equal", "alice", OpEqual, "alice", true},
		{"not equal", "alice", OpNotEqual, "bob", true},
		{"less", "alice", OpLess, "bob", true},
		{"greater", "bob", OpGreater, "alice", true},
		{"case sensitive", "Alice", OpEqual, "alice", false},
		{"digits compare lexically", "9", OpLess, "10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compare(tt.left, tt.op, String(tt.right))
			if err != nil {
				t.Errorf("compare() error = %v", err)
				return
			}
			if got != tt.want {
				t.Errorf("compare(%q, %v, %q) = %v, want %v", tt.left, tt.op, tt.right, got, tt.want)
			}
		})
	}
}

func TestCompare_NonNumericRowValue(t *testing.T) {
	if _, err := compare("blue", OpGreater, Int(1)); err == nil {
		t.Error("compare() expected error comparing text with a number")
	}
}

func assertMatchLike(t *testing.T, where string, rows []MapRow, want []bool) {
	t.Helper()

	spec, err := Compile("select fake from fake where " + where)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	for i, row := range rows {
		got, err := spec.Filter.Evaluate(row)
		if err != nil {
			t.Fatalf("Evaluate(%v) error = %v", row, err)
		}
		if got != want[i] {
			t.Errorf("row %d %v: got %v, want %v", i, row, got, want[i])
		}
	}
}

func TestEvaluate_Trivial(t *testing.T) {
	assertMatchLike(t, "ts > 0",
		[]MapRow{{"ts": "10"}, {"ts": "-10"}},
		[]bool{true, false})
}

func TestEvaluate_Compound(t *testing.T) {
	assertMatchLike(t, "ts > 0 and ts < 10",
		[]MapRow{{"ts": "0"}, {"ts": "1"}, {"ts": "9"}, {"ts": "10"}},
		[]bool{false, true, true, false})
}

func TestEvaluate_ThreeTerms(t *testing.T) {
	assertMatchLike(t, "ts > 0 and ts < 10 and color = 'blue'",
		[]MapRow{
			{"ts": "1", "color": "red"},
			{"ts": "3", "color": "blue"},
			{"ts": "5", "color": "blue"},
			{"ts": "10", "color": "blue"},
		},
		[]bool{false, true, true, false})
}

func TestEvaluate_RightNestedOr(t *testing.T) {
	// and(aa = 1, or(bb = 2, cc = 3))
	assertMatchLike(t, "aa = 1 and bb = 2 or cc = 3",
		[]MapRow{
			{"aa": "1", "bb": "2", "cc": "0"},
			{"aa": "1", "bb": "0", "cc": "3"},
			{"aa": "0", "bb": "2", "cc": "3"},
		},
		[]bool{true, true, false})
}

func TestEvaluate_MissingColumn(t *testing.T) {
	assertMatchLike(t, "color = 'blue'",
		[]MapRow{{"ts": "1"}},
		[]bool{false})
}

func TestEvaluate_NotIsRejectedLocally(t *testing.T) {
	spec, err := Compile("select ts from events where aa = 1 not bb = 2")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	_, err = spec.Filter.Evaluate(MapRow{"aa": "1", "bb": "2"})
	if !errors.Is(err, ErrUnsupportedOperator) {
		t.Errorf("Evaluate() error = %v, want ErrUnsupportedOperator", err)
	}
}

func TestApplyFilter(t *testing.T) {
	spec := MustCompile("select ts from events where ts >= 5")
	rows := []MapRow{{"ts": "1"}, {"ts": "5"}, {"ts": "7"}}

	got, err := ApplyFilter(rows, spec.Filter)
	if err != nil {
		t.Fatalf("ApplyFilter() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ApplyFilter() returned %d rows, want 2", len(got))
	}

	all, err := ApplyFilter(rows, nil)
	if err != nil || len(all) != 3 {
		t.Errorf("ApplyFilter(nil) = %d rows, %v; want 3 rows", len(all), err)
	}
}
