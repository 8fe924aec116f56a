// Package parser turns source text into ESTree shaped *ast.Node trees.
package parser

import (
	"fmt"
	"strings"

	"github.com/xmorgan/metaes/ast"
)

// ParseException is an error during parsing.
type ParseException struct {
	Msg  string
	Line int
	Code string
}

func (e ParseException) Error() string {
	return fmt.Sprintf("Parse error at line %d: %s\nCode: %s", e.Line, e.Msg, e.Code)
}

// Parser holds tokens and the source lines used for error reports.
type Parser struct {
	tokens []Token
	pos    int
	lines  []string
}

// NewParser creates a parser over already tokenized input.
func NewParser(tokens []Token, source string) *Parser {
	return &Parser{tokens: tokens, lines: strings.Split(source, "\n")}
}

// Parse parses a whole program.
func Parse(source string) (*ast.Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, ParseException{Msg: err.Error(), Line: lastLine(tokens), Code: ""}
	}
	return NewParser(tokens, source).ParseProgram()
}

// ParseExpression parses source consisting of a single expression.
func ParseExpression(source string) (*ast.Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, ParseException{Msg: err.Error(), Line: lastLine(tokens)}
	}
	p := NewParser(tokens, source)
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokEOF {
		return nil, p.errorf("unexpected token after expression: %s", p.peek().Literal)
	}
	return expr, nil
}

// ParseProgram parses a sequence of statements until EOF.
func (p *Parser) ParseProgram() (*ast.Node, error) {
	body := []*ast.Node{}
	for p.peek().Type != TokEOF {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return ast.New("Program", "body", body, "sourceType", "script").At(1, 0), nil
}

// ParseExpression parses a full expression including the comma operator.
func (p *Parser) ParseExpression() (*ast.Node, error) {
	first, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokComma {
		return first, nil
	}
	exprs := []*ast.Node{first}
	for p.peek().Type == TokComma {
		p.next()
		expr, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return p.node(first, "SequenceExpression", "expressions", exprs), nil
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	if i := p.pos + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		return tok, p.errorf("expected %s, got %q", typ, tok.Literal)
	}
	return p.next(), nil
}

// consumeSemicolon skips an optional statement terminator.
func (p *Parser) consumeSemicolon() {
	if p.peek().Type == TokSemicolon {
		p.next()
	}
}

// errorf creates a ParseException with the current line information
func (p *Parser) errorf(format string, args ...interface{}) error {
	line := p.peek().Line
	var code string
	if line > 0 && line-1 < len(p.lines) {
		code = strings.TrimSpace(p.lines[line-1])
	}
	return ParseException{Msg: fmt.Sprintf(format, args...), Line: line, Code: code}
}

// at builds a node positioned at tok.
func at(tok Token, typ string, kv ...any) *ast.Node {
	return ast.New(typ, kv...).At(tok.Line, tok.Col)
}

// node builds a node positioned at the start of from.
func (p *Parser) node(from *ast.Node, typ string, kv ...any) *ast.Node {
	return ast.New(typ, kv...).At(from.Line, from.Col)
}

func lastLine(tokens []Token) int {
	if len(tokens) == 0 {
		return 1
	}
	return tokens[len(tokens)-1].Line
}
