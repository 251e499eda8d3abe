package query

import (
	"strings"
)

// Lexer tokenizes query strings
type Lexer struct {
	input string
	pos   int // position of ch
	next  int // position after ch
	ch    byte
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.next]
	}
	l.pos = l.next
	l.next++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.next >= len(l.input) {
		return 0
	}
	return l.input[l.next]
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// readString reads a single-quoted string. Only \\ and \' are valid escapes.
func (l *Lexer) readString(start int) Token {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != '\'' {
		switch {
		case l.ch == 0 && l.pos >= len(l.input):
			return Token{Type: TokenError, Value: "unterminated string", Pos: start}
		case l.ch == '\\':
			l.readChar()
			if l.ch != '\\' && l.ch != '\'' {
				return Token{Type: TokenError, Value: "invalid escape sequence in string", Pos: l.pos}
			}
			result.WriteByte(l.ch)
		default:
			result.WriteByte(l.ch)
		}
		l.readChar()
	}
	l.readChar() // skip closing quote

	return Token{Type: TokenString, Value: result.String(), Pos: start}
}

// readNumber reads -?(0|[1-9][0-9]*)(\.[0-9]+)?
func (l *Lexer) readNumber(start int) Token {
	if l.ch == '-' {
		l.readChar()
		if !isDigit(l.ch) {
			return Token{Type: TokenError, Value: "expected digit after '-'", Pos: start}
		}
	}

	intStart := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.pos-intStart > 1 && l.input[intStart] == '0' {
		return Token{Type: TokenError, Value: "number has leading zeros", Pos: start}
	}

	tokType := TokenInt
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokType = TokenFloat
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{Type: tokType, Value: l.input[start:l.pos], Pos: start}
}

// readIdentifier reads an identifier or keyword. Dotted paths are read as a
// single token; a segment may not be empty.
func (l *Lexer) readIdentifier(start int) Token {
	for {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		if l.ch != '.' || !isLetter(l.peekChar()) {
			break
		}
		l.readChar()
	}
	if l.ch == '.' {
		return Token{Type: TokenError, Value: "incomplete field path", Pos: start}
	}

	value := l.input[start:l.pos]
	return Token{Type: identifierType(value), Value: value, Pos: start}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.pos
	var tok Token

	switch l.ch {
	case 0:
		if l.pos >= len(l.input) {
			return Token{Type: TokenEOF, Pos: len(l.input)}
		}
		tok = Token{Type: TokenError, Value: "NUL", Pos: start}
		l.readChar()
	case '=':
		tok = Token{Type: TokenEqual, Value: "=", Pos: start}
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "!=", Pos: start}
			l.readChar()
		} else {
			tok = Token{Type: TokenError, Value: "!", Pos: start}
			l.readChar()
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: TokenLessEqual, Value: "<=", Pos: start}
		case '>':
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "<>", Pos: start}
		default:
			tok = Token{Type: TokenLess, Value: "<", Pos: start}
		}
		l.readChar()
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenGreaterEqual, Value: ">=", Pos: start}
		} else {
			tok = Token{Type: TokenGreater, Value: ">", Pos: start}
		}
		l.readChar()
	case '\'':
		return l.readString(start)
	case ',':
		tok = Token{Type: TokenComma, Value: ",", Pos: start}
		l.readChar()
	case '(':
		tok = Token{Type: TokenLParen, Value: "(", Pos: start}
		l.readChar()
	case ')':
		tok = Token{Type: TokenRParen, Value: ")", Pos: start}
		l.readChar()
	case '*':
		tok = Token{Type: TokenStar, Value: "*", Pos: start}
		l.readChar()
	default:
		switch {
		case isDigit(l.ch) || l.ch == '-':
			return l.readNumber(start)
		case isLetter(l.ch):
			return l.readIdentifier(start)
		default:
			tok = Token{Type: TokenError, Value: string(l.ch), Pos: start}
			l.readChar()
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"select": TokenSelect,
	"from":   TokenFrom,
	"where":  TokenWhere,
	"order":  TokenOrder,
	"by":     TokenBy,
	"asc":    TokenAsc,
	"desc":   TokenDesc,
	"and":    TokenAnd,
	"or":     TokenOr,
	"not":    TokenNot,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive; a dotted path is never a keyword.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input. The last token is always
// TokenEOF or TokenError.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
