package parser

import (
	"strconv"

	"github.com/xmorgan/metaes/ast"
)

var assignOps = map[TokenType]bool{
	TokAssign: true, TokPlusAssign: true, TokMinusAssign: true,
	TokAsteriskAssign: true, TokSlashAssign: true, TokRemAssign: true,
	TokShlAssign: true, TokShrAssign: true, TokUshrAssign: true,
	TokAndAssign: true, TokOrAssign: true, TokXorAssign: true,
}

// parseAssignment handles target = expr (recursive, right-associative) and
// arrow functions, which share the same precedence.
func (p *Parser) parseAssignment() (*ast.Node, error) {
	if p.isArrowAhead() {
		return p.parseArrow()
	}
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !assignOps[p.peek().Type] {
		return left, nil
	}
	tok := p.next()
	if left.Type != "Identifier" && left.Type != "MemberExpression" {
		return nil, p.errorf("invalid assignment target %s", left.Type)
	}
	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return p.node(left, "AssignmentExpression", "operator", tok.Literal, "left", left, "right", right), nil
}

// parseConditional handles test ? a : b
func (p *Parser) parseConditional() (*ast.Node, error) {
	test, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokQuestion {
		return test, nil
	}
	p.next()
	consequent, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	alternate, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return p.node(test, "ConditionalExpression", "test", test, "consequent", consequent, "alternate", alternate), nil
}

// binaryLevels lists binary operators from the loosest to the tightest binding.
var binaryLevels = [][]TokenType{
	{TokLogicalOr},
	{TokLogicalAnd},
	{TokOr},
	{TokXor},
	{TokAnd},
	{TokEqual, TokNotEqual, TokStrictEqual, TokNotStrictEqual},
	{TokLT, TokGT, TokLTE, TokGTE},
	{TokShl, TokShr, TokUshr},
	{TokPlus, TokMinus},
	{TokAsterisk, TokSlash, TokRem},
}

// parseBinary handles one precedence level, left-associative.
func (p *Parser) parseBinary(level int) (*ast.Node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.atLevel(level) {
		tok := p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		typ := "BinaryExpression"
		if tok.Type == TokLogicalAnd || tok.Type == TokLogicalOr {
			typ = "LogicalExpression"
		}
		left = p.node(left, typ, "operator", tok.Literal, "left", left, "right", right)
	}
	return left, nil
}

func (p *Parser) atLevel(level int) bool {
	typ := p.peek().Type
	for _, t := range binaryLevels[level] {
		if t == typ {
			return true
		}
	}
	return false
}

// parseUnary handles prefix operators: ! - + typeof ++ --
func (p *Parser) parseUnary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokLogicalNot, TokMinus, TokPlus, TokTypeof:
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return at(tok, "UnaryExpression", "operator", tok.Literal, "prefix", true, "argument", arg), nil
	case TokInc, TokDec:
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return at(tok, "UpdateExpression", "operator", tok.Literal, "prefix", true, "argument", arg), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles member access, calls and postfix ++, --
func (p *Parser) parsePostfix() (*ast.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case TokDot:
			p.next()
			propTok := p.next()
			if _, kw := keywords[propTok.Literal]; propTok.Type != TokIdentifier && !kw {
				return nil, p.errorf("expected property name, got %q", propTok.Literal)
			}
			prop := at(propTok, "Identifier", "name", propTok.Literal)
			left = p.node(left, "MemberExpression", "object", left, "property", prop, "computed", false)
		case TokLBracket:
			p.next()
			prop, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
			left = p.node(left, "MemberExpression", "object", left, "property", prop, "computed", true)
		case TokLParen:
			p.next()
			args, err := p.parseList(TokRParen)
			if err != nil {
				return nil, err
			}
			left = p.node(left, "CallExpression", "callee", left, "arguments", args)
		case TokInc, TokDec:
			tok := p.next()
			left = p.node(left, "UpdateExpression", "operator", tok.Literal, "prefix", false, "argument", left)
		default:
			return left, nil
		}
	}
}

// parseList parses comma separated expressions, allowing spread, up to the
// closing token. Holes are kept as nil when allowed by the caller's end token.
func (p *Parser) parseList(end TokenType) ([]*ast.Node, error) {
	items := []*ast.Node{}
	for p.peek().Type != end {
		if end == TokRBracket && p.peek().Type == TokComma {
			p.next()
			items = append(items, nil)
			continue
		}
		var item *ast.Node
		if tok := p.peek(); tok.Type == TokEllipsis {
			p.next()
			arg, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			item = at(tok, "SpreadElement", "argument", arg)
		} else {
			expr, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			item = expr
		}
		items = append(items, item)
		if p.peek().Type != TokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(end); err != nil {
		return nil, err
	}
	return items, nil
}

// parsePrimary handles literals, identifiers, grouping and compound literals.
func (p *Parser) parsePrimary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokNumber:
		p.next()
		num, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Literal)
		}
		return at(tok, "Literal", "value", num, "raw", tok.Literal), nil
	case TokString:
		p.next()
		return at(tok, "Literal", "value", tok.Literal, "raw", strconv.Quote(tok.Literal)), nil
	case TokBool:
		p.next()
		return at(tok, "Literal", "value", tok.Literal == "true", "raw", tok.Literal), nil
	case TokNull:
		p.next()
		return at(tok, "Literal", "value", nil, "raw", "null"), nil
	case TokIdentifier:
		p.next()
		return at(tok, "Identifier", "name", tok.Literal), nil
	case TokThis:
		p.next()
		return at(tok, "ThisExpression"), nil
	case TokFunction:
		return p.parseFunction("FunctionExpression")
	case TokLParen:
		p.next()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBracket:
		p.next()
		elems, err := p.parseList(TokRBracket)
		if err != nil {
			return nil, err
		}
		return at(tok, "ArrayExpression", "elements", elems), nil
	case TokLBrace:
		return p.parseObject()
	default:
		return nil, p.errorf("unexpected token %q", tok.Literal)
	}
}

// parseObject handles { key: value, "key": value, short, [expr]: value }
func (p *Parser) parseObject() (*ast.Node, error) {
	start, err := p.expect(TokLBrace)
	if err != nil {
		return nil, err
	}
	props := []*ast.Node{}
	for p.peek().Type != TokRBrace {
		keyTok := p.next()
		var key *ast.Node
		computed := false
		switch {
		case keyTok.Type == TokString:
			key = at(keyTok, "Literal", "value", keyTok.Literal, "raw", strconv.Quote(keyTok.Literal))
		case keyTok.Type == TokNumber:
			num, _ := strconv.ParseFloat(keyTok.Literal, 64)
			key = at(keyTok, "Literal", "value", num, "raw", keyTok.Literal)
		case keyTok.Type == TokLBracket:
			computed = true
			if key, err = p.parseAssignment(); err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
		case keyTok.Type == TokIdentifier || keyTok.Literal != "" && isIdentBegin(keyTok.Literal[0]):
			key = at(keyTok, "Identifier", "name", keyTok.Literal)
		default:
			return nil, p.errorf("unexpected object key %q", keyTok.Literal)
		}
		var value *ast.Node
		shorthand := false
		if p.peek().Type == TokColon {
			p.next()
			if value, err = p.parseAssignment(); err != nil {
				return nil, err
			}
		} else if keyTok.Type == TokIdentifier {
			shorthand = true
			value = key
		} else {
			return nil, p.errorf("expected ':' after object key")
		}
		props = append(props, at(keyTok, "Property",
			"key", key, "value", value, "kind", "init", "computed", computed, "shorthand", shorthand))
		if p.peek().Type != TokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return at(start, "ObjectExpression", "properties", props), nil
}

// isArrowAhead reports whether the upcoming tokens start an arrow function:
// `x =>` or `( ... ) =>`.
func (p *Parser) isArrowAhead() bool {
	tok := p.peek()
	if tok.Type == TokIdentifier {
		return p.peekAt(1).Type == TokArrow
	}
	if tok.Type != TokLParen {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		switch p.peekAt(i).Type {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
			if depth == 0 {
				return p.peekAt(i+1).Type == TokArrow
			}
		case TokEOF:
			return false
		}
	}
}

// parseArrow handles x => body and (a, ...rest) => body
func (p *Parser) parseArrow() (*ast.Node, error) {
	start := p.peek()
	var params []*ast.Node
	if start.Type == TokIdentifier {
		p.next()
		params = []*ast.Node{at(start, "Identifier", "name", start.Literal)}
	} else {
		var err error
		if params, err = p.parseParams(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokArrow); err != nil {
		return nil, err
	}
	if p.peek().Type == TokLBrace {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return at(start, "ArrowFunctionExpression", "params", params, "body", body, "expression", false), nil
	}
	body, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return at(start, "ArrowFunctionExpression", "params", params, "body", body, "expression", true), nil
}

// parseParams handles ( a, b, ...rest ). Patterns other than identifiers are
// parsed as expressions and left for the evaluator to reject.
func (p *Parser) parseParams() ([]*ast.Node, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	params := []*ast.Node{}
	for p.peek().Type != TokRParen {
		tok := p.peek()
		if tok.Type == TokEllipsis {
			p.next()
			arg, err := p.expect(TokIdentifier)
			if err != nil {
				return nil, err
			}
			params = append(params, at(tok, "RestElement", "argument", at(arg, "Identifier", "name", arg.Literal)))
		} else {
			param, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			if param.Type == "AssignmentExpression" {
				param = p.node(param, "AssignmentPattern", "left", param.Node("left"), "right", param.Node("right"))
			}
			params = append(params, param)
		}
		if p.peek().Type != TokComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parseFunction handles function name?(params) { body }
func (p *Parser) parseFunction(typ string) (*ast.Node, error) {
	start, err := p.expect(TokFunction)
	if err != nil {
		return nil, err
	}
	var id *ast.Node
	if tok := p.peek(); tok.Type == TokIdentifier {
		p.next()
		id = at(tok, "Identifier", "name", tok.Literal)
	} else if typ == "FunctionDeclaration" {
		return nil, p.errorf("function declaration requires a name")
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return at(start, typ, "id", id, "params", params, "body", body), nil
}
