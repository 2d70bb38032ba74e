package syntax

const expectedType = "a type"

// Types are kept as flat token runs inside Type nodes. Their structure is not
// modelled beyond bracket balance because no analysis looks inside them.

func (p *Parser) parseTypeAnnotationOpt(parent NodeID) {
	if p.mode != TypeScript || !p.check(TokenColon) {
		return
	}
	node := p.startNode(KindTypeAnnotation)
	p.addToken(node)
	p.addRequired(node, p.parseType(), expectedType)
	p.finishNode(node)
	p.addChild(parent, node)
}

func (p *Parser) isTypeStart() bool {
	switch p.peek().Kind {
	case TokenIdent, TokenVoid, TokenNull, TokenThis, TokenTrue, TokenFalse,
		TokenNumber, TokenString, TokenTemplate, TokenTemplateHead, TokenTypeof, TokenMinus,
		TokenLBrace, TokenLBracket, TokenLParen, TokenNew, TokenLT,
		TokenBitOr, TokenBitAnd, TokenConst:
		return true
	}
	return false
}

func (p *Parser) parseType() NodeID {
	if !p.isTypeStart() {
		return NoNode
	}
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()

	node := p.startNode(KindType)
	p.eat(node, TokenBitOr)
	p.eat(node, TokenBitAnd)
	for {
		if !p.parseTypeOperand(node) {
			p.errorExpected(expectedType)
			p.addMissing(node, expectedType)
			break
		}
		if p.match(TokenBitOr, TokenBitAnd) {
			p.addToken(node)
			continue
		}
		break
	}
	if p.check(TokenExtends) && !p.hasPrecedingLineBreak() {
		// Conditional type: A extends B ? C : D
		p.addToken(node)
		p.addRequired(node, p.parseType(), expectedType)
		if p.eat(node, TokenQuestion) {
			p.addRequired(node, p.parseType(), expectedType)
			p.expect(node, TokenColon)
			p.addRequired(node, p.parseType(), expectedType)
		}
	}
	return p.finishNode(node)
}

var typeOperators = map[string]bool{
	"keyof":    true,
	"unique":   true,
	"readonly": true,
	"infer":    true,
	"asserts":  true,
}

func (p *Parser) parseTypeOperand(node NodeID) bool {
	for p.check(TokenTypeof) || (p.check(TokenIdent) && typeOperators[p.peek().Text] && p.peekN(1).Kind != TokenComma) {
		p.addToken(node)
	}
	switch p.peek().Kind {
	case TokenIdent, TokenVoid, TokenNull, TokenThis, TokenTrue, TokenFalse,
		TokenNumber, TokenString, TokenTemplate, TokenConst:
		p.addToken(node)
		for p.check(TokenDot) {
			p.addToken(node)
			if tok := p.peek(); tok.Kind == TokenIdent || tok.Kind.IsKeyword() {
				p.addToken(node)
			}
		}
		if p.check(TokenLT) && !p.hasPrecedingLineBreak() {
			p.skipBalanced(node)
		}
		if p.atWord("is") && !p.hasPrecedingLineBreak() {
			// Type predicate: x is T
			p.addToken(node)
			p.addRequired(node, p.parseType(), expectedType)
		}
	case TokenTemplateHead:
		p.skipTemplate(node)
	case TokenMinus:
		p.addToken(node)
		p.eat(node, TokenNumber)
	case TokenLBrace, TokenLBracket:
		p.skipBalanced(node)
	case TokenLT, TokenLParen:
		generic := p.check(TokenLT)
		if generic {
			p.skipBalanced(node)
		}
		if p.check(TokenLParen) {
			p.skipBalanced(node)
		}
		if p.eat(node, TokenArrow) {
			p.addRequired(node, p.parseType(), expectedType)
		} else if generic {
			p.errorExpected(quote("=>"))
			p.addMissing(node, quote("=>"))
		}
	case TokenNew:
		p.addToken(node)
		if p.check(TokenLT) {
			p.skipBalanced(node)
		}
		if p.check(TokenLParen) {
			p.skipBalanced(node)
		}
		p.expect(node, TokenArrow)
		p.addRequired(node, p.parseType(), expectedType)
	default:
		return false
	}
	for p.check(TokenLBracket) && !p.hasPrecedingLineBreak() {
		p.skipBalanced(node)
	}
	return true
}

// skipBalanced consumes a bracketed run starting at the current opener up to
// its matching closer and reports whether the closer was found. Angle
// brackets only count when the run starts with `<`.
func (p *Parser) skipBalanced(node NodeID) bool {
	angle := p.check(TokenLT)
	depth := 0
	for !p.atEOF() {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		case TokenLT:
			if angle {
				depth++
			}
		case TokenGT:
			if angle {
				depth--
			}
		case TokenShr:
			if angle {
				depth -= 2
			}
		case TokenUShr:
			if angle {
				depth -= 3
			}
		}
		p.addToken(node)
		if depth <= 0 {
			return depth == 0
		}
	}
	return false
}

// skipTemplate consumes a template literal type from its head token through
// the matching tail.
func (p *Parser) skipTemplate(node NodeID) {
	depth := 0
	for !p.atEOF() {
		switch p.peek().Kind {
		case TokenTemplateHead:
			depth++
		case TokenTemplateTail:
			depth--
		}
		p.addToken(node)
		if depth == 0 {
			return
		}
	}
}

func (p *Parser) parseTypeParametersOpt(parent NodeID) {
	if p.mode != TypeScript || !p.check(TokenLT) {
		return
	}
	node := p.startNode(KindTypeParameters)
	if !p.skipBalanced(node) {
		p.errorExpected(quote(">"))
		p.addMissing(node, quote(">"))
	}
	p.finishNode(node)
	p.addChild(parent, node)
}

func (p *Parser) parseTypeArgumentsNode() NodeID {
	node := p.startNode(KindTypeArguments)
	if !p.skipBalanced(node) {
		p.errorExpected(quote(">"))
		p.addMissing(node, quote(">"))
	}
	return p.finishNode(node)
}

// maxTypeArgumentLookahead bounds the tokens examined after a `<` before the
// parser settles on a comparison.
const maxTypeArgumentLookahead = 256

// tryTypeArguments reads `<...>` after an expression when it is followed by
// a call and looks like types, so `a < b && c > (d)` stays a comparison.
func (p *Parser) tryTypeArguments() NodeID {
	if !p.looksLikeTypeArguments() {
		return NoNode
	}
	node := p.startNode(KindTypeArguments)
	p.skipBalanced(node)
	return p.finishNode(node)
}

// looksLikeTypeArguments scans ahead from a `<` without consuming anything.
// It stops at the first token that cannot occur in type arguments and after
// maxTypeArgumentLookahead tokens.
func (p *Parser) looksLikeTypeArguments() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens) && i-p.pos < maxTypeArgumentLookahead; i++ {
		switch p.tokens[i].Kind {
		case TokenEOF, TokenLogicalAnd, TokenLogicalOr, TokenSemicolon, TokenAssign,
			TokenPlus, TokenStar, TokenSlash, TokenBang, TokenEQ, TokenStrictEQ,
			TokenNE, TokenStrictNE, TokenLE, TokenGE:
			return false
		case TokenLT, TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenGT, TokenRParen, TokenRBracket, TokenRBrace:
			depth--
		case TokenShr:
			depth -= 2
		case TokenUShr:
			depth -= 3
		}
		if depth < 0 {
			return false
		}
		if depth == 0 {
			switch p.tokens[i+1].Kind {
			case TokenLParen, TokenTemplate, TokenTemplateHead:
				return true
			}
			return false
		}
	}
	return false
}

func (p *Parser) parseTypeAlias() NodeID {
	node := p.startNode(KindTypeAlias)
	p.addToken(node)
	p.addChild(node, p.parseNameNode(KindTypeName))
	p.parseTypeParametersOpt(node)
	p.expect(node, TokenAssign)
	p.addRequired(node, p.parseType(), expectedType)
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

func (p *Parser) parseInterface() NodeID {
	node := p.startNode(KindInterface)
	p.addToken(node)
	p.addChild(node, p.parseNameNode(KindTypeName))
	p.parseTypeParametersOpt(node)
	if p.eat(node, TokenExtends) {
		for {
			p.addRequired(node, p.parseType(), expectedType)
			if !p.eat(node, TokenComma) {
				break
			}
		}
	}
	if !p.check(TokenLBrace) {
		p.errorExpected(quote("{"))
		p.addMissing(node, quote("{"))
		return p.finishNode(node)
	}
	body := p.startNode(KindType)
	p.skipBalanced(body)
	p.finishNode(body)
	p.addChild(node, body)
	return p.finishNode(node)
}
