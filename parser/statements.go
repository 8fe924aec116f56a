package parser

import "github.com/xmorgan/metaes/ast"

// ParseStatement parses a single statement.
func (p *Parser) ParseStatement() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokSemicolon:
		p.next()
		return at(tok, "EmptyStatement"), nil
	case TokLBrace:
		return p.parseBlock()
	case TokVar, TokLet, TokConst:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		p.consumeSemicolon()
		return decl, nil
	case TokFunction:
		return p.parseFunction("FunctionDeclaration")
	case TokIf:
		return p.parseIf()
	case TokWhile:
		return p.parseWhile()
	case TokFor:
		return p.parseFor()
	case TokReturn:
		p.next()
		var arg *ast.Node
		if p.startsExpression(tok.Line) {
			expr, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			arg = expr
		}
		p.consumeSemicolon()
		return at(tok, "ReturnStatement", "argument", arg), nil
	case TokThrow:
		p.next()
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		p.consumeSemicolon()
		return at(tok, "ThrowStatement", "argument", arg), nil
	case TokTry:
		return p.parseTry()
	case TokBreak, TokContinue:
		p.next()
		p.consumeSemicolon()
		if tok.Type == TokBreak {
			return at(tok, "BreakStatement", "label", nil), nil
		}
		return at(tok, "ContinueStatement", "label", nil), nil
	default:
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		p.consumeSemicolon()
		return p.node(expr, "ExpressionStatement", "expression", expr), nil
	}
}

// startsExpression reports whether a return argument follows on the same line.
func (p *Parser) startsExpression(line int) bool {
	next := p.peek()
	switch next.Type {
	case TokSemicolon, TokRBrace, TokEOF:
		return false
	}
	return next.Line == line
}

// parseBlock handles { stmt* }
func (p *Parser) parseBlock() (*ast.Node, error) {
	start, err := p.expect(TokLBrace)
	if err != nil {
		return nil, err
	}
	body := []*ast.Node{}
	for p.peek().Type != TokRBrace {
		if p.peek().Type == TokEOF {
			return nil, p.errorf("unterminated block")
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	return at(start, "BlockStatement", "body", body), nil
}

// parseVarDecl handles var/let/const a = 1, b without the trailing semicolon.
func (p *Parser) parseVarDecl() (*ast.Node, error) {
	kindTok := p.next()
	decls := []*ast.Node{}
	for {
		idTok, err := p.expect(TokIdentifier)
		if err != nil {
			return nil, err
		}
		var init *ast.Node
		if p.peek().Type == TokAssign {
			p.next()
			if init, err = p.parseAssignment(); err != nil {
				return nil, err
			}
		} else if kindTok.Type == TokConst && !p.atOf() {
			return nil, p.errorf("missing initializer in const declaration")
		}
		decls = append(decls, at(idTok, "VariableDeclarator", "id", at(idTok, "Identifier", "name", idTok.Literal), "init", init))
		if p.peek().Type != TokComma {
			break
		}
		p.next()
	}
	return at(kindTok, "VariableDeclaration", "kind", kindTok.Literal, "declarations", decls), nil
}

func (p *Parser) atOf() bool {
	tok := p.peek()
	return tok.Type == TokIdentifier && tok.Literal == "of"
}

// parseIf handles if (test) stmt [else stmt]
func (p *Parser) parseIf() (*ast.Node, error) {
	start := p.next()
	test, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	consequent, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	var alternate *ast.Node
	if p.peek().Type == TokElse {
		p.next()
		if alternate, err = p.ParseStatement(); err != nil {
			return nil, err
		}
	}
	return at(start, "IfStatement", "test", test, "consequent", consequent, "alternate", alternate), nil
}

// parseWhile handles while (test) stmt
func (p *Parser) parseWhile() (*ast.Node, error) {
	start := p.next()
	test, err := p.parseParenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	return at(start, "WhileStatement", "test", test, "body", body), nil
}

func (p *Parser) parseParenExpr() (*ast.Node, error) {
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseFor handles for (init; test; update) stmt and for (x of xs) stmt
func (p *Parser) parseFor() (*ast.Node, error) {
	start := p.next()
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	var init *ast.Node
	switch tok := p.peek(); {
	case tok.Type == TokSemicolon:
	case tok.Type == TokVar || tok.Type == TokLet || tok.Type == TokConst:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		init = decl
	case tok.Type == TokIdentifier && p.peekAt(1).Type == TokIdentifier && p.peekAt(1).Literal == "of":
		p.next()
		init = at(tok, "Identifier", "name", tok.Literal)
	default:
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		init = expr
	}

	if p.atOf() {
		if init == nil || (init.Type == "VariableDeclaration" && len(init.Nodes("declarations")) != 1) {
			return nil, p.errorf("invalid left-hand side in for-of")
		}
		p.next()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		body, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return at(start, "ForOfStatement", "left", init, "right", right, "body", body), nil
	}

	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}
	var test, update *ast.Node
	var err error
	if p.peek().Type != TokSemicolon {
		if test, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}
	if p.peek().Type != TokRParen {
		if update, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	return at(start, "ForStatement", "init", init, "test", test, "update", update, "body", body), nil
}

// parseTry handles try {} catch (e) {} finally {}
func (p *Parser) parseTry() (*ast.Node, error) {
	start := p.next()
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var handler, finalizer *ast.Node
	if tok := p.peek(); tok.Type == TokCatch {
		p.next()
		var param *ast.Node
		if p.peek().Type == TokLParen {
			p.next()
			idTok, err := p.expect(TokIdentifier)
			if err != nil {
				return nil, err
			}
			param = at(idTok, "Identifier", "name", idTok.Literal)
			if _, err := p.expect(TokRParen); err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		handler = at(tok, "CatchClause", "param", param, "body", body)
	}
	if p.peek().Type == TokFinally {
		p.next()
		if finalizer, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	if handler == nil && finalizer == nil {
		return nil, p.errorf("missing catch or finally after try")
	}
	return at(start, "TryStatement", "block", block, "handler", handler, "finalizer", finalizer), nil
}
