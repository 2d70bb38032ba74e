package syntax

func (p *Parser) isExpressionStart() bool {
	switch p.peek().Kind {
	case TokenIdent, TokenNumber, TokenString, TokenTemplate, TokenTemplateHead, TokenRegex,
		TokenTrue, TokenFalse, TokenNull, TokenThis, TokenSuper,
		TokenLParen, TokenLBracket, TokenLBrace,
		TokenFunction, TokenClass, TokenNew, TokenImport,
		TokenPlus, TokenMinus, TokenBang, TokenTilde,
		TokenTypeof, TokenVoid, TokenDelete,
		TokenIncrement, TokenDecrement, TokenPrivateName:
		return true
	}
	return false
}

// parseExpression parses a comma separated sequence of assignments.
func (p *Parser) parseExpression() NodeID {
	first := p.parseAssignment()
	if first == NoNode || !p.check(TokenComma) {
		return first
	}
	node := p.startNodeAt(KindSequence, p.firstTokenOf(first))
	p.addChild(node, first)
	for p.eat(node, TokenComma) {
		p.addRequired(node, p.parseAssignment(), expectedExpression)
	}
	return p.finishNode(node)
}

func isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign,
		TokenPercentAssign, TokenStarStarAssign, TokenShlAssign, TokenShrAssign,
		TokenUShrAssign, TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenLogicalAndAssign, TokenLogicalOrAssign, TokenNullishAssign:
		return true
	}
	return false
}

func (p *Parser) parseAssignment() NodeID {
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()

	if arrow := p.tryArrow(); arrow != NoNode {
		return arrow
	}
	if p.inGenerator && p.atWord("yield") {
		return p.parseYield()
	}
	left := p.parseConditional()
	if left == NoNode || !isAssignOp(p.peek().Kind) {
		return left
	}
	p.markAssignmentTarget(left)
	node := p.startNodeAt(KindAssign, p.firstTokenOf(left))
	p.addChild(node, left)
	p.addToken(node)
	p.addRequired(node, p.parseAssignment(), expectedExpression)
	return p.finishNode(node)
}

// markAssignmentTarget turns plain identifier references in an assignment
// target into IdentifierAssignment nodes, descending into destructuring
// array and object literals.
func (p *Parser) markAssignmentTarget(id NodeID) {
	if id == NoNode {
		return
	}
	data := &p.nodes[id]
	switch data.kind {
	case KindReferenceIdentifier:
		data.kind = KindIdentifierAssignment
	case KindParen, KindSpread, KindNonNull, KindAs:
		for _, c := range data.children {
			if c.kind == ElementNode {
				p.markAssignmentTarget(NodeID(c.index))
				return
			}
		}
	case KindArray, KindObject:
		for _, c := range data.children {
			if c.kind == ElementNode {
				p.markAssignmentTarget(NodeID(c.index))
			}
		}
	case KindProperty:
		// Only the value side of `key: target` is assigned.
		last := NoNode
		for _, c := range data.children {
			if c.kind == ElementNode {
				last = NodeID(c.index)
			}
		}
		if last != NoNode && p.nodes[last].kind != KindPropertyName && p.nodes[last].kind != KindComputedPropertyName {
			p.markAssignmentTarget(last)
		}
	case KindAssign, KindShorthandProperty:
		// The target comes first; a default value after `=` is only read.
		for _, c := range data.children {
			if c.kind == ElementNode {
				p.markAssignmentTarget(NodeID(c.index))
				return
			}
		}
	}
}

func (p *Parser) parseYield() NodeID {
	node := p.startNode(KindYield)
	p.addToken(node)
	if p.hasPrecedingLineBreak() {
		return p.finishNode(node)
	}
	p.eat(node, TokenStar)
	if p.isExpressionStart() {
		p.addChild(node, p.parseAssignment())
	}
	return p.finishNode(node)
}

func (p *Parser) parseConditional() NodeID {
	test := p.parseBinary(0)
	if test == NoNode || !p.check(TokenQuestion) {
		return test
	}
	node := p.startNodeAt(KindConditional, p.firstTokenOf(test))
	p.addChild(node, test)
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.addRequired(node, p.parseAssignment(), expectedExpression)
	p.noIn = savedNoIn
	p.expect(node, TokenColon)
	p.addRequired(node, p.parseAssignment(), expectedExpression)
	return p.finishNode(node)
}

const relationalPrecedence = 8

func binaryPrecedence(kind TokenKind) int {
	switch kind {
	case TokenNullish:
		return 1
	case TokenLogicalOr:
		return 2
	case TokenLogicalAnd:
		return 3
	case TokenBitOr:
		return 4
	case TokenBitXor:
		return 5
	case TokenBitAnd:
		return 6
	case TokenEQ, TokenNE, TokenStrictEQ, TokenStrictNE:
		return 7
	case TokenLT, TokenGT, TokenLE, TokenGE, TokenInstanceof, TokenIn:
		return relationalPrecedence
	case TokenShl, TokenShr, TokenUShr:
		return 9
	case TokenPlus, TokenMinus:
		return 10
	case TokenStar, TokenSlash, TokenPercent:
		return 11
	case TokenStarStar:
		return 12
	}
	return 0
}

// parseBinary is a precedence climber over binary and logical operators.
// Operators binding no tighter than minPrec are left to the caller.
func (p *Parser) parseBinary(minPrec int) NodeID {
	left := p.parseUnary()
	if left == NoNode {
		return NoNode
	}
	for {
		if p.mode == TypeScript && minPrec < relationalPrecedence &&
			(p.atWord("as") || p.atWord("satisfies")) && !p.hasPrecedingLineBreak() {
			node := p.startNodeAt(KindAs, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addToken(node)
			p.addRequired(node, p.parseType(), expectedType)
			left = p.finishNode(node)
			continue
		}
		op := p.peek().Kind
		prec := binaryPrecedence(op)
		if prec == 0 || prec <= minPrec || (op == TokenIn && p.noIn) {
			return left
		}
		kind := KindBinary
		if op == TokenLogicalAnd || op == TokenLogicalOr || op == TokenNullish {
			kind = KindLogical
		}
		node := p.startNodeAt(kind, p.firstTokenOf(left))
		p.addChild(node, left)
		p.addToken(node)
		if op == TokenStarStar {
			// Right associative: the right operand recurses at this level.
			if !p.enter() {
				p.addChild(node, p.tooDeep())
			} else {
				p.addRequired(node, p.parseBinary(prec-1), expectedExpression)
			}
			p.leave()
		} else {
			p.addRequired(node, p.parseBinary(prec), expectedExpression)
		}
		left = p.finishNode(node)
	}
}

func (p *Parser) parseUnary() NodeID {
	tok := p.peek()
	switch tok.Kind {
	case TokenBang, TokenTilde, TokenPlus, TokenMinus, TokenTypeof, TokenVoid, TokenDelete:
		return p.parsePrefix(KindUnary, false)
	case TokenIncrement, TokenDecrement:
		return p.parsePrefix(KindUpdate, true)
	case TokenIdent:
		if tok.Text == "await" && p.isAwaitOperand() {
			return p.parsePrefix(KindAwait, false)
		}
	}
	return p.parsePostfix()
}

// isAwaitOperand tells `await x` apart from a variable named await.
func (p *Parser) isAwaitOperand() bool {
	next := p.peekN(1)
	switch next.Kind {
	case TokenIdent, TokenNumber, TokenString, TokenTemplate, TokenTemplateHead, TokenRegex,
		TokenTrue, TokenFalse, TokenNull, TokenThis, TokenSuper,
		TokenLParen, TokenLBracket, TokenLBrace, TokenFunction, TokenClass, TokenNew,
		TokenBang, TokenTilde, TokenTypeof, TokenVoid, TokenDelete:
		return true
	}
	return false
}

func (p *Parser) parsePrefix(kind NodeKind, assigns bool) NodeID {
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()
	node := p.startNode(kind)
	p.addToken(node)
	operand := p.parseUnary()
	if assigns {
		p.markAssignmentTarget(operand)
	}
	p.addRequired(node, operand, expectedExpression)
	return p.finishNode(node)
}

func (p *Parser) parsePostfix() NodeID {
	left := p.parseLeftHandSide()
	if left == NoNode {
		return NoNode
	}
	if p.match(TokenIncrement, TokenDecrement) && !p.hasPrecedingLineBreak() {
		p.markAssignmentTarget(left)
		node := p.startNodeAt(KindUpdate, p.firstTokenOf(left))
		p.addChild(node, left)
		p.addToken(node)
		return p.finishNode(node)
	}
	return left
}

func (p *Parser) parseLeftHandSide() NodeID {
	var left NodeID
	if p.check(TokenNew) {
		left = p.parseNew()
	} else {
		left = p.parsePrimary()
	}
	if left == NoNode {
		return NoNode
	}
	return p.parseChain(left, true)
}

func (p *Parser) parseNew() NodeID {
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()

	node := p.startNode(KindNew)
	p.addToken(node)
	if p.eat(node, TokenDot) {
		p.addMemberName(node)
		return p.finishNode(node)
	}
	var callee NodeID
	if p.check(TokenNew) {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	if callee != NoNode {
		callee = p.parseChain(callee, false)
	}
	p.addRequired(node, callee, expectedExpression)
	if p.mode == TypeScript && p.check(TokenLT) {
		p.addChild(node, p.tryTypeArguments())
	}
	if p.check(TokenLParen) {
		p.addChild(node, p.parseArguments())
	}
	return p.finishNode(node)
}

// parseChain extends left with member accesses, calls and tagged templates.
// Calls are excluded for the callee of `new`.
func (p *Parser) parseChain(left NodeID, allowCall bool) NodeID {
	for {
		switch p.peek().Kind {
		case TokenDot:
			node := p.startNodeAt(KindMember, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addToken(node)
			p.addMemberName(node)
			left = p.finishNode(node)
		case TokenQuestionDot:
			if !allowCall {
				return left
			}
			switch p.peekN(1).Kind {
			case TokenLParen:
				node := p.startNodeAt(KindCall, p.firstTokenOf(left))
				p.addChild(node, left)
				p.addToken(node)
				p.addChild(node, p.parseArguments())
				left = p.finishNode(node)
			case TokenLBracket:
				node := p.startNodeAt(KindComputedMember, p.firstTokenOf(left))
				p.addChild(node, left)
				p.addToken(node)
				p.parseComputedAccess(node)
				left = p.finishNode(node)
			default:
				node := p.startNodeAt(KindMember, p.firstTokenOf(left))
				p.addChild(node, left)
				p.addToken(node)
				p.addMemberName(node)
				left = p.finishNode(node)
			}
		case TokenLBracket:
			node := p.startNodeAt(KindComputedMember, p.firstTokenOf(left))
			p.addChild(node, left)
			p.parseComputedAccess(node)
			left = p.finishNode(node)
		case TokenLParen:
			if !allowCall {
				return left
			}
			node := p.startNodeAt(KindCall, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addChild(node, p.parseArguments())
			left = p.finishNode(node)
		case TokenTemplate, TokenTemplateHead:
			node := p.startNodeAt(KindTaggedTemplate, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addChild(node, p.parseTemplate())
			left = p.finishNode(node)
		case TokenBang:
			if p.mode != TypeScript || p.hasPrecedingLineBreak() {
				return left
			}
			node := p.startNodeAt(KindNonNull, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addToken(node)
			left = p.finishNode(node)
		case TokenLT:
			if p.mode != TypeScript || !allowCall {
				return left
			}
			args := p.tryTypeArguments()
			if args == NoNode {
				return left
			}
			if p.match(TokenTemplate, TokenTemplateHead) {
				node := p.startNodeAt(KindTaggedTemplate, p.firstTokenOf(left))
				p.addChild(node, left)
				p.addChild(node, args)
				p.addChild(node, p.parseTemplate())
				left = p.finishNode(node)
				continue
			}
			node := p.startNodeAt(KindCall, p.firstTokenOf(left))
			p.addChild(node, left)
			p.addChild(node, args)
			p.addChild(node, p.parseArguments())
			left = p.finishNode(node)
		default:
			return left
		}
	}
}

func (p *Parser) parseComputedAccess(node NodeID) {
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.addRequired(node, p.parseExpression(), expectedExpression)
	p.noIn = savedNoIn
	p.expect(node, TokenRBracket)
}

func (p *Parser) addMemberName(parent NodeID) {
	tok := p.peek()
	if tok.Kind == TokenIdent || tok.Kind == TokenPrivateName || tok.Kind.IsKeyword() {
		p.addChild(parent, p.parseNameNode(KindMemberName))
		return
	}
	p.errorExpected(expectedIdentifier)
	p.addMissing(parent, expectedIdentifier)
}

func (p *Parser) parseArguments() NodeID {
	node := p.startNode(KindArguments)
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.parseSeparatedList(node, listConfig{
		close:         TokenRParen,
		expected:      expectedExpression,
		allowTrailing: true,
		isStart:       p.isSpreadOrExpressionStart,
		parse:         p.parseSpreadOrAssignment,
	})
	p.noIn = savedNoIn
	p.expect(node, TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) isSpreadOrExpressionStart() bool {
	return p.check(TokenEllipsis) || p.isExpressionStart()
}

func (p *Parser) parseSpreadOrAssignment() NodeID {
	if !p.check(TokenEllipsis) {
		return p.parseAssignment()
	}
	node := p.startNode(KindSpread)
	p.addToken(node)
	p.addRequired(node, p.parseAssignment(), expectedExpression)
	return p.finishNode(node)
}

func (p *Parser) parsePrimary() NodeID {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		if tok.Text == "async" && p.peekN(1).Kind == TokenFunction && !p.peekN(1).HasLeadingNewline() {
			return p.parseFunction(KindFunctionExpr, true)
		}
		return p.parseNameNode(KindReferenceIdentifier)
	case TokenNumber, TokenString, TokenRegex, TokenTrue, TokenFalse, TokenNull, TokenImport:
		return p.parseNameNode(KindLiteral)
	case TokenTemplate, TokenTemplateHead:
		return p.parseTemplate()
	case TokenThis:
		return p.parseNameNode(KindThis)
	case TokenSuper:
		return p.parseNameNode(KindSuper)
	case TokenPrivateName:
		// `#x in obj`
		return p.parseNameNode(KindMemberName)
	case TokenLParen:
		return p.parseParen()
	case TokenLBracket:
		return p.parseArrayLiteral()
	case TokenLBrace:
		return p.parseObjectLiteral()
	case TokenFunction:
		return p.parseFunction(KindFunctionExpr, true)
	case TokenClass:
		return p.parseClass(KindClassExpr, true)
	}
	return NoNode
}

// parseTemplate parses a template literal. Each substitution is an ordinary
// expression between the head, middle and tail text tokens.
func (p *Parser) parseTemplate() NodeID {
	node := p.startNode(KindTemplate)
	if p.eat(node, TokenTemplate) {
		return p.finishNode(node)
	}
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	for {
		p.addRequired(node, p.parseExpression(), expectedExpression)
		if !p.atEOF() && !p.match(TokenTemplateMiddle, TokenTemplateTail) {
			p.errorExpected(quote("}"))
			p.bogusUntil(node, func() bool {
				return p.match(TokenTemplateMiddle, TokenTemplateTail)
			})
		}
		if !p.eat(node, TokenTemplateMiddle) {
			break
		}
	}
	p.noIn = savedNoIn
	if !p.eat(node, TokenTemplateTail) {
		p.errorExpected(quote("}"))
		p.addMissing(node, quote("}"))
	}
	return p.finishNode(node)
}

func (p *Parser) parseParen() NodeID {
	node := p.startNode(KindParen)
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.addRequired(node, p.parseExpression(), expectedExpression)
	p.noIn = savedNoIn
	p.expect(node, TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parseArrayLiteral() NodeID {
	node := p.startNode(KindArray)
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.parseSeparatedList(node, listConfig{
		close:         TokenRBracket,
		expected:      expectedExpression,
		allowTrailing: true,
		allowHoles:    true,
		isStart:       p.isSpreadOrExpressionStart,
		parse:         p.parseSpreadOrAssignment,
	})
	p.noIn = savedNoIn
	p.expect(node, TokenRBracket)
	return p.finishNode(node)
}

func (p *Parser) isPropertyNameStart() bool {
	switch tok := p.peek(); tok.Kind {
	case TokenIdent, TokenString, TokenNumber, TokenPrivateName, TokenLBracket:
		return true
	default:
		return tok.Kind.IsKeyword()
	}
}

// isPropertyNameAt reports whether the token n ahead can start a property
// name, used to tell modifiers like get or static from member names.
func (p *Parser) isPropertyNameAt(n int) bool {
	tok := p.peekN(n)
	switch tok.Kind {
	case TokenIdent, TokenString, TokenNumber, TokenPrivateName, TokenLBracket, TokenStar:
		return true
	default:
		return tok.Kind.IsKeyword()
	}
}

func (p *Parser) parseObjectLiteral() NodeID {
	node := p.startNode(KindObject)
	p.addToken(node)
	savedNoIn := p.noIn
	p.noIn = false
	p.parseSeparatedList(node, listConfig{
		close:         TokenRBrace,
		expected:      "a property",
		allowTrailing: true,
		isStart: func() bool {
			return p.check(TokenEllipsis) || p.check(TokenStar) || p.isPropertyNameStart()
		},
		parse: p.parseObjectMember,
	})
	p.noIn = savedNoIn
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseObjectMember() NodeID {
	if p.check(TokenEllipsis) {
		return p.parseSpreadOrAssignment()
	}
	if p.check(TokenStar) || ((p.atWord("get") || p.atWord("set") || p.atWord("async")) && p.isPropertyNameAt(1)) {
		node := p.startNode(KindMethodDef)
		generator := false
		for p.atWord("get") || p.atWord("set") || p.atWord("async") || p.check(TokenStar) {
			if p.check(TokenStar) {
				generator = true
			} else if !p.isPropertyNameAt(1) {
				break
			}
			p.addToken(node)
		}
		p.addRequired(node, p.parsePropertyName(), "a property name")
		p.parseFunctionRest(node, generator)
		return p.finishNode(node)
	}

	nameTok := p.peek()
	name := p.parsePropertyName()
	if name == NoNode {
		return NoNode
	}
	switch {
	case p.check(TokenLParen), p.mode == TypeScript && p.check(TokenLT):
		node := p.startNodeAt(KindMethodDef, p.firstTokenOf(name))
		p.addChild(node, name)
		p.parseFunctionRest(node, false)
		return p.finishNode(node)
	case p.check(TokenColon):
		node := p.startNodeAt(KindProperty, p.firstTokenOf(name))
		p.addChild(node, name)
		p.addToken(node)
		p.addRequired(node, p.parseAssignment(), expectedExpression)
		return p.finishNode(node)
	case nameTok.Kind == TokenIdent:
		p.nodes[name].kind = KindReferenceIdentifier
		node := p.startNodeAt(KindShorthandProperty, p.firstTokenOf(name))
		p.addChild(node, name)
		if p.eat(node, TokenAssign) {
			p.addRequired(node, p.parseAssignment(), expectedExpression)
		}
		return p.finishNode(node)
	}
	node := p.startNodeAt(KindProperty, p.firstTokenOf(name))
	p.addChild(node, name)
	p.expect(node, TokenColon)
	return p.finishNode(node)
}

// parsePropertyName parses a literal or computed key.
func (p *Parser) parsePropertyName() NodeID {
	if p.check(TokenLBracket) {
		node := p.startNode(KindComputedPropertyName)
		p.addToken(node)
		p.addRequired(node, p.parseAssignment(), expectedExpression)
		p.expect(node, TokenRBracket)
		return p.finishNode(node)
	}
	if !p.isPropertyNameStart() {
		return NoNode
	}
	return p.parseNameNode(KindPropertyName)
}

// tryArrow parses an arrow function when the tokens ahead form one and
// returns NoNode otherwise without consuming anything.
func (p *Parser) tryArrow() NodeID {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdent:
		next := p.peekN(1)
		if next.Kind == TokenArrow {
			return p.parseArrow(false, true, false)
		}
		if tok.Text != "async" || next.HasLeadingNewline() {
			return NoNode
		}
		if next.Kind == TokenIdent && p.peekN(2).Kind == TokenArrow {
			return p.parseArrow(true, true, false)
		}
		if next.Kind == TokenLParen {
			return p.tryParenArrow(p.pos+1, true)
		}
	case TokenLParen:
		return p.tryParenArrow(p.pos, false)
	}
	return NoNode
}

func (p *Parser) tryParenArrow(open int, async bool) NodeID {
	after := p.matchingParen(open)
	if after < 0 {
		return NoNode
	}
	switch p.tokens[after].Kind {
	case TokenArrow:
		return p.parseArrow(async, false, false)
	case TokenColon:
		if p.mode == TypeScript {
			return p.parseArrow(async, false, true)
		}
	}
	return NoNode
}

// matchingParen returns the index of the token after the parenthesis that
// closes the one at open, or -1.
func (p *Parser) matchingParen(open int) int {
	if p.parens == nil {
		p.parens = make(map[int]int)
		var stack []int
		for i, tok := range p.tokens {
			switch tok.Kind {
			case TokenLParen:
				stack = append(stack, i)
			case TokenRParen:
				if len(stack) > 0 {
					p.parens[stack[len(stack)-1]] = i + 1
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	after, ok := p.parens[open]
	if !ok || after >= len(p.tokens) {
		return -1
	}
	return after
}

// parseArrow parses `x => body` when single is set, or a parenthesized
// parameter list otherwise. In speculative mode it rewinds and returns
// NoNode when no `=>` follows the parameters.
func (p *Parser) parseArrow(async, single, speculative bool) NodeID {
	cp := p.checkpoint()
	node := p.startNode(KindArrowFunction)
	if async {
		p.addToken(node)
	}
	if single {
		params := p.startNode(KindParameters)
		param := p.startNode(KindParameter)
		p.addChild(param, p.parseIdentifierBinding())
		p.finishNode(param)
		p.addChild(params, param)
		p.finishNode(params)
		p.addChild(node, params)
	} else {
		p.addChild(node, p.parseParameters())
		p.parseTypeAnnotationOpt(node)
	}
	if speculative && !p.check(TokenArrow) {
		p.rewind(cp)
		return NoNode
	}
	p.expect(node, TokenArrow)

	savedGen, savedNoIn := p.inGenerator, p.noIn
	p.inGenerator, p.noIn = false, false
	if p.check(TokenLBrace) {
		p.addChild(node, p.parseBlock())
	} else {
		p.addRequired(node, p.parseAssignment(), expectedExpression)
	}
	p.inGenerator, p.noIn = savedGen, savedNoIn
	return p.finishNode(node)
}
