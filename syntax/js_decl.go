package syntax

// parseFunction parses function declarations and expressions, async and
// generator forms included. The name is optional when anonymous is set.
func (p *Parser) parseFunction(kind NodeKind, anonymous bool) NodeID {
	node := p.startNode(kind)
	if p.atWord("async") {
		p.addToken(node)
	}
	p.expect(node, TokenFunction)
	generator := p.eat(node, TokenStar)
	switch {
	case p.check(TokenIdent):
		p.addChild(node, p.parseIdentifierBinding())
	case !anonymous:
		p.errorExpected(expectedIdentifier)
		p.addMissing(node, expectedIdentifier)
	}
	p.parseFunctionRest(node, generator)
	return p.finishNode(node)
}

// parseFunctionRest parses type parameters, parameters, the return type and
// the body of a function-like node.
func (p *Parser) parseFunctionRest(node NodeID, generator bool) {
	savedGen, savedNoIn := p.inGenerator, p.noIn
	p.inGenerator, p.noIn = generator, false
	defer func() {
		p.inGenerator, p.noIn = savedGen, savedNoIn
	}()

	p.parseTypeParametersOpt(node)
	if p.check(TokenLParen) {
		p.addChild(node, p.parseParameters())
	} else {
		p.errorExpected(quote("("))
		p.addMissing(node, quote("("))
	}
	p.parseTypeAnnotationOpt(node)
	if p.check(TokenLBrace) {
		p.addChild(node, p.parseBlock())
		return
	}
	if p.mode == TypeScript {
		// Overload signatures and abstract members have no body.
		p.consumeSemicolon(node)
		return
	}
	p.addBlock(node)
}

func (p *Parser) parseParameters() NodeID {
	node := p.startNode(KindParameters)
	p.expect(node, TokenLParen)
	p.parseSeparatedList(node, listConfig{
		close:         TokenRParen,
		expected:      "a parameter",
		allowTrailing: true,
		isStart: func() bool {
			return p.check(TokenEllipsis) || p.isBindingStart() || p.check(TokenThis)
		},
		parse: p.parseParameter,
	})
	p.expect(node, TokenRParen)
	return p.finishNode(node)
}

var parameterModifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"readonly":  true,
	"override":  true,
}

func (p *Parser) parseParameter() NodeID {
	if p.check(TokenEllipsis) {
		return p.parseRestElement()
	}
	node := p.startNode(KindParameter)
	if p.mode == TypeScript {
		for p.check(TokenIdent) && parameterModifiers[p.peek().Text] {
			next := p.peekN(1).Kind
			if next != TokenIdent && next != TokenLBrace && next != TokenLBracket {
				break
			}
			p.addToken(node)
		}
		if p.check(TokenThis) {
			// `this: T` declares the receiver type and binds nothing.
			p.addToken(node)
			p.parseTypeAnnotationOpt(node)
			return p.finishNode(node)
		}
	}
	p.addRequired(node, p.parseBindingTarget(), expectedBinding)
	if p.mode == TypeScript {
		p.eat(node, TokenQuestion)
	}
	p.parseTypeAnnotationOpt(node)
	if p.eat(node, TokenAssign) {
		p.addRequired(node, p.parseAssignment(), expectedExpression)
	}
	return p.finishNode(node)
}

func (p *Parser) parseRestElement() NodeID {
	node := p.startNode(KindRestElement)
	p.addToken(node)
	p.addRequired(node, p.parseBindingTarget(), expectedBinding)
	p.parseTypeAnnotationOpt(node)
	return p.finishNode(node)
}

func (p *Parser) isBindingStart() bool {
	return p.match(TokenIdent, TokenLBracket, TokenLBrace)
}

// parseBindingTarget parses an identifier, array pattern or object pattern.
func (p *Parser) parseBindingTarget() NodeID {
	switch p.peek().Kind {
	case TokenIdent:
		return p.parseIdentifierBinding()
	case TokenLBracket, TokenLBrace:
	default:
		return NoNode
	}
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()
	if p.check(TokenLBracket) {
		return p.parseArrayPattern()
	}
	return p.parseObjectPattern()
}

// parseBindingElement parses a binding target with an optional default.
func (p *Parser) parseBindingElement() NodeID {
	target := p.parseBindingTarget()
	if target == NoNode || !p.check(TokenAssign) {
		return target
	}
	node := p.startNodeAt(KindAssignmentPattern, p.firstTokenOf(target))
	p.addChild(node, target)
	p.addToken(node)
	p.addRequired(node, p.parseAssignment(), expectedExpression)
	return p.finishNode(node)
}

func (p *Parser) parseArrayPattern() NodeID {
	node := p.startNode(KindArrayPattern)
	p.addToken(node)
	p.parseSeparatedList(node, listConfig{
		close:         TokenRBracket,
		expected:      expectedBinding,
		allowTrailing: true,
		allowHoles:    true,
		isStart: func() bool {
			return p.check(TokenEllipsis) || p.isBindingStart()
		},
		parse: func() NodeID {
			if p.check(TokenEllipsis) {
				return p.parseRestElement()
			}
			return p.parseBindingElement()
		},
	})
	p.expect(node, TokenRBracket)
	return p.finishNode(node)
}

func (p *Parser) parseObjectPattern() NodeID {
	node := p.startNode(KindObjectPattern)
	p.addToken(node)
	p.parseSeparatedList(node, listConfig{
		close:         TokenRBrace,
		expected:      "a property pattern",
		allowTrailing: true,
		isStart: func() bool {
			return p.check(TokenEllipsis) || p.isPropertyNameStart()
		},
		parse: p.parsePatternProperty,
	})
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

// parsePatternProperty parses `{ a }`, `{ a = 1 }` and `{ key: target }`
// entries of an object pattern.
func (p *Parser) parsePatternProperty() NodeID {
	if p.check(TokenEllipsis) {
		return p.parseRestElement()
	}
	node := p.startNode(KindPatternProperty)
	if p.check(TokenIdent) && p.peekN(1).Kind != TokenColon {
		p.addChild(node, p.parseBindingElement())
		return p.finishNode(node)
	}
	p.addRequired(node, p.parsePropertyName(), "a property name")
	p.expect(node, TokenColon)
	p.addRequired(node, p.parseBindingElement(), expectedBinding)
	return p.finishNode(node)
}

var classModifiers = map[string]bool{
	"static":    true,
	"async":     true,
	"get":       true,
	"set":       true,
	"public":    true,
	"private":   true,
	"protected": true,
	"readonly":  true,
	"abstract":  true,
	"override":  true,
	"declare":   true,
	"accessor":  true,
}

func (p *Parser) parseClass(kind NodeKind, anonymous bool) NodeID {
	node := p.startNode(kind)
	if p.atWord("abstract") {
		p.addToken(node)
	}
	p.expect(node, TokenClass)
	switch {
	case p.check(TokenIdent) && !p.atWord("implements"):
		p.addChild(node, p.parseIdentifierBinding())
	case !anonymous:
		p.errorExpected(expectedIdentifier)
		p.addMissing(node, expectedIdentifier)
	}
	p.parseTypeParametersOpt(node)
	if p.eat(node, TokenExtends) {
		p.addRequired(node, p.parseLeftHandSide(), expectedExpression)
		if p.mode == TypeScript && p.check(TokenLT) {
			p.addChild(node, p.parseTypeArgumentsNode())
		}
	}
	if p.mode == TypeScript && p.atWord("implements") {
		p.addToken(node)
		for {
			p.addRequired(node, p.parseType(), expectedType)
			if !p.eat(node, TokenComma) {
				break
			}
		}
	}
	if p.check(TokenLBrace) {
		p.addChild(node, p.parseClassBody())
	} else {
		p.errorExpected(quote("{"))
		p.addMissing(node, quote("{"))
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassBody() NodeID {
	node := p.startNode(KindClassBody)
	p.addToken(node)
	for !p.atEOF() && !p.check(TokenRBrace) {
		progress := p.mustProgress(node)
		if !p.eat(node, TokenSemicolon) {
			p.addChild(node, p.parseClassMember())
		}
		progress()
	}
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

// parseClassMember parses a method or field. The node starts as a method
// and becomes a field when no parameter list follows the name.
func (p *Parser) parseClassMember() NodeID {
	if !p.isPropertyNameStart() && !p.check(TokenStar) {
		p.errorExpected("a class member")
		return p.bogus(func() bool {
			return p.match(TokenSemicolon, TokenRBrace) || p.hasPrecedingLineBreak()
		})
	}
	node := p.startNode(KindMethodDef)
	if p.atWord("static") && p.peekN(1).Kind == TokenLBrace {
		p.addToken(node)
		p.addChild(node, p.parseBlock())
		return p.finishNode(node)
	}
	generator := false
	for {
		tok := p.peek()
		if tok.Kind == TokenStar {
			generator = true
			p.addToken(node)
			continue
		}
		if tok.Kind != TokenIdent || !classModifiers[tok.Text] || !p.isPropertyNameAt(1) {
			break
		}
		if p.peekN(1).HasLeadingNewline() && (tok.Text == "get" || tok.Text == "set" || tok.Text == "static") {
			break
		}
		p.addToken(node)
	}
	p.addRequired(node, p.parsePropertyName(), "a property name")
	if p.mode == TypeScript && !p.eat(node, TokenQuestion) {
		p.eat(node, TokenBang)
	}
	if p.check(TokenLParen) || (p.mode == TypeScript && p.check(TokenLT)) {
		p.parseFunctionRest(node, generator)
		return p.finishNode(node)
	}
	p.nodes[node].kind = KindFieldDef
	p.parseTypeAnnotationOpt(node)
	if p.eat(node, TokenAssign) {
		p.addRequired(node, p.parseAssignment(), expectedExpression)
	}
	p.consumeSemicolon(node)
	return p.finishNode(node)
}
