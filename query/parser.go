package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses query tokens into a SelectSpec
type Parser struct {
	input        string
	tokens       []Token
	pos          int
	seen         map[TokenType]bool
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser. input is the text the tokens were read
// from and is only used for error snippets.
func NewParser(input string, tokens []Token) *Parser {
	return &Parser{
		input:        input,
		tokens:       tokens,
		pos:          0,
		seen:         make(map[TokenType]bool),
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: len(p.input)}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// errorf builds a SyntaxError located at tok
func (p *Parser) errorf(tok Token, format string, args ...interface{}) error {
	return &SyntaxError{
		Pos:     tok.Pos,
		Snippet: snippetAround(p.input, tok.Pos),
		Msg:     fmt.Sprintf(format, args...),
	}
}

// wrap builds a SyntaxError located at tok around a validation error
func (p *Parser) wrap(tok Token, err error) error {
	return &SyntaxError{
		Pos:     tok.Pos,
		Snippet: snippetAround(p.input, tok.Pos),
		Msg:     err.Error(),
		Err:     err,
	}
}

// unexpected reports the current token as out of place
func (p *Parser) unexpected(want string) error {
	tok := p.current()
	switch {
	case tok.Type == TokenError:
		return p.errorf(tok, "%s", tok.Value)
	case p.seen[tok.Type]:
		return p.errorf(tok, "keyword %s may only appear once", tok.Type)
	case tok.Type == TokenEOF:
		return p.errorf(tok, "expected %s, got end of query", want)
	default:
		return p.errorf(tok, "expected %s, got %s %q", want, tok.Type, tok.Value)
	}
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return p.unexpected(tokType.String())
	}
	p.advance()
	return nil
}

// clause consumes a clause keyword, recording that it was used
func (p *Parser) clause(tokType TokenType) error {
	if err := p.expect(tokType); err != nil {
		return err
	}
	p.seen[tokType] = true
	return nil
}

// Compile parses query text into a SelectSpec. Every error it returns
// matches ErrSyntax.
func Compile(query string) (*SelectSpec, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, &SyntaxError{Msg: err.Error(), Err: err}
	}

	tokens := Tokenize(query)

	if err := ValidateTokens(tokens); err != nil {
		return nil, &SyntaxError{Msg: err.Error(), Err: err}
	}

	parser := NewParser(query, tokens)
	return parser.parseQuery()
}

// MustCompile is like Compile but panics on error. It is meant for queries
// fixed at compile time.
func MustCompile(query string) *SelectSpec {
	spec, err := Compile(query)
	if err != nil {
		panic(err)
	}
	return spec
}

// parseQuery parses: SELECT fields FROM table [WHERE expr] [ORDER BY sorts]
func (p *Parser) parseQuery() (*SelectSpec, error) {
	if err := p.clause(TokenSelect); err != nil {
		return nil, err
	}

	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}

	if err := p.clause(TokenFrom); err != nil {
		return nil, err
	}

	tableTok := p.current()
	if tableTok.Type != TokenIdent {
		return nil, p.unexpected("table name")
	}
	if strings.Contains(tableTok.Value, ".") {
		return nil, p.errorf(tableTok, "table name must be a single identifier")
	}
	if err := ValidateIdentifier(FieldPath{tableTok.Value}); err != nil {
		return nil, p.wrap(tableTok, err)
	}
	p.advance()

	if p.current().Type == TokenComma {
		return nil, p.errorf(p.current(), "only one table may be named in FROM")
	}

	spec := &SelectSpec{
		Fields: fields,
		Object: tableTok.Value,
	}

	// Parse WHERE clause (optional)
	if p.current().Type == TokenWhere {
		p.seen[TokenWhere] = true
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		spec.Filter = expr
	}

	// Parse ORDER BY clause (optional)
	if p.current().Type == TokenOrder {
		sorts, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		spec.Sorts = sorts
	}

	if p.current().Type != TokenEOF {
		return nil, p.unexpected("end of query")
	}

	return spec, nil
}

// parseFieldList parses one or more comma separated fields
func (p *Parser) parseFieldList() ([]FieldPath, error) {
	switch p.current().Type {
	case TokenStar:
		return nil, p.errorf(p.current(), "wildcard projection is not supported, name each field")
	case TokenFrom:
		return nil, p.errorf(p.current(), "field list is empty")
	}

	var fields []FieldPath
	for {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)

		if p.current().Type != TokenComma {
			return fields, nil
		}
		p.advance()
	}
}

// parseField parses identifier ("." identifier)*
func (p *Parser) parseField() (FieldPath, error) {
	tok := p.current()
	if tok.Type == TokenStar {
		return nil, p.errorf(tok, "wildcard projection is not supported, name each field")
	}
	if tok.Type != TokenIdent {
		return nil, p.unexpected("field name")
	}

	field := FieldPath(strings.Split(tok.Value, "."))
	if err := ValidateIdentifier(field); err != nil {
		return nil, p.wrap(tok, err)
	}

	p.advance()
	return field, nil
}

// parseExpression parses term [logop expression]. Chains nest to the right
// and no connective binds tighter than another.
func (p *Parser) parseExpression() (FilterNode, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, p.wrap(p.current(), err)
	}
	defer p.depthCounter.Exit()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	var op LogicalOp
	switch p.current().Type {
	case TokenAnd:
		op = OpAnd
	case TokenOr:
		op = OpOr
	case TokenNot:
		op = OpNot
	default:
		return left, nil
	}
	p.advance()

	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Logical{Op: op, Left: left, Right: right}, nil
}

// parseTerm parses "(" expression ")" or a comparison
func (p *Parser) parseTerm() (FilterNode, error) {
	if p.current().Type != TokenLParen {
		return p.parseComparison()
	}
	p.advance()

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseComparison parses field op literal
func (p *Parser) parseComparison() (FilterNode, error) {
	field, err := p.parseField()
	if err != nil {
		return nil, err
	}

	var op CompareOp
	switch p.current().Type {
	case TokenEqual:
		op = OpEqual
	case TokenNotEqual:
		op = OpNotEqual
	case TokenLess:
		op = OpLess
	case TokenLessEqual:
		op = OpLessEqual
	case TokenGreater:
		op = OpGreater
	case TokenGreaterEqual:
		op = OpGreaterEqual
	default:
		return nil, p.unexpected("comparison operator")
	}
	p.advance()

	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return &Comparison{Field: field, Op: op, Value: value}, nil
}

// parseLiteral parses a string, integer or float literal
func (p *Parser) parseLiteral() (Literal, error) {
	tok := p.current()
	switch tok.Type {
	case TokenString:
		p.advance()
		return String(tok.Value), nil
	case TokenInt:
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Literal{}, p.errorf(tok, "invalid integer %s", tok.Value)
		}
		p.advance()
		return Int(i), nil
	case TokenFloat:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return Literal{}, p.errorf(tok, "invalid float %s", tok.Value)
		}
		p.advance()
		return Float(f), nil
	default:
		return Literal{}, p.unexpected("value (string or number)")
	}
}

// parseOrderBy parses ORDER BY field [ASC|DESC] ("," field [ASC|DESC])*
func (p *Parser) parseOrderBy() ([]Sort, error) {
	if err := p.clause(TokenOrder); err != nil {
		return nil, err
	}
	if err := p.expect(TokenBy); err != nil {
		return nil, err
	}

	var sorts []Sort
	for {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}

		sort := Sort{Field: field, Direction: Ascending}
		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			sort.Direction = Descending
			p.advance()
		}
		sorts = append(sorts, sort)

		if p.current().Type != TokenComma {
			return sorts, nil
		}
		p.advance()
	}
}
