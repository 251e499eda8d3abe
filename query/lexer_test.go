package query

import (
	"testing"
)

func TestLexer_Keywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "SELECT keyword",
			input: "SELECT",
			expected: []Token{
				{Type: TokenSelect, Value: "SELECT"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "case insensitive keywords",
			input: "select FROM Where",
			expected: []Token{
				{Type: TokenSelect, Value: "select"},
				{Type: TokenFrom, Value: "FROM"},
				{Type: TokenWhere, Value: "Where"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "connectives",
			input: "AND or Not",
			expected: []Token{
				{Type: TokenAnd, Value: "AND"},
				{Type: TokenOr, Value: "or"},
				{Type: TokenNot, Value: "Not"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "order by direction",
			input: "order by ts DESC",
			expected: []Token{
				{Type: TokenOrder, Value: "order"},
				{Type: TokenBy, Value: "by"},
				{Type: TokenIdent, Value: "ts"},
				{Type: TokenDesc, Value: "DESC"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "dotted path starting with keyword is an identifier",
			input: "order.status",
			expected: []Token{
				{Type: TokenIdent, Value: "order.status"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d", len(tt.expected), len(tokens))
			}
			for i, tok := range tokens {
				if tok.Type != tt.expected[i].Type {
					t.Errorf("token %d: expected type %v, got %v", i, tt.expected[i].Type, tok.Type)
				}
				if tok.Value != tt.expected[i].Value {
					t.Errorf("token %d: expected value %q, got %q", i, tt.expected[i].Value, tok.Value)
				}
			}
		})
	}
}

func TestLexer_Operators(t *testing.T) {
	input := "= != <> < > <= >="
	expected := []TokenType{
		TokenEqual, TokenNotEqual, TokenNotEqual, TokenLess, TokenGreater,
		TokenLessEqual, TokenGreaterEqual, TokenEOF,
	}

	tokens := Tokenize(input)
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], tok.Type)
		}
	}
}

func TestLexer_OperatorsWithoutSpaces(t *testing.T) {
	tokens := Tokenize("ts>=10")
	want := []TokenType{TokenIdent, TokenGreaterEqual, TokenInt, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Type != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], tok.Type)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		wantType TokenType
		wantVal  string
	}{
		{"0", TokenInt, "0"},
		{"42", TokenInt, "42"},
		{"-17", TokenInt, "-17"},
		{"3.14", TokenFloat, "3.14"},
		{"-0.5", TokenFloat, "-0.5"},
		{"0.25", TokenFloat, "0.25"},
		{"007", TokenError, "number has leading zeros"},
		{"-01", TokenError, "number has leading zeros"},
		{"-", TokenError, "expected digit after '-'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			if tok.Type != tt.wantType {
				t.Errorf("type = %v, want %v", tok.Type, tt.wantType)
			}
			if tok.Value != tt.wantVal {
				t.Errorf("value = %q, want %q", tok.Value, tt.wantVal)
			}
		})
	}
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType TokenType
		wantVal  string
	}{
		{"simple", `'blue'`, TokenString, "blue"},
		{"empty", `''`, TokenString, ""},
		{"escaped quote", `'it\'s'`, TokenString, "it's"},
		{"escaped backslash", `'a\\b'`, TokenString, `a\b`},
		{"spaces kept", `'two words'`, TokenString, "two words"},
		{"unterminated", `'open`, TokenError, "unterminated string"},
		{"bad escape", `'a\nb'`, TokenError, "invalid escape sequence in string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewLexer(tt.input).NextToken()
			if tok.Type != tt.wantType {
				t.Errorf("type = %v, want %v", tok.Type, tt.wantType)
			}
			if tok.Value != tt.wantVal {
				t.Errorf("value = %q, want %q", tok.Value, tt.wantVal)
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	tokens := Tokenize("select  ts\nfrom events")
	want := []int{0, 8, 11, 16, 22}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Pos != want[i] {
			t.Errorf("token %d (%q): pos = %d, want %d", i, tok.Value, tok.Pos, want[i])
		}
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []string{"!", "#", "events.", "a.1b"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			tokens := Tokenize(input)
			last := tokens[len(tokens)-1]
			if last.Type != TokenError {
				t.Errorf("Tokenize(%q) last token = %v, want error", input, last.Type)
			}
		})
	}
}
