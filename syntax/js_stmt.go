package syntax

const (
	expectedExpression = "an expression"
	expectedStatement  = "a statement"
	expectedBinding    = "an identifier, an array pattern, or an object pattern"
	expectedIdentifier = "an identifier"
)

func (p *Parser) parseModule() NodeID {
	node := p.startNode(KindModule)
	p.parseStatementList(node, TokenEOF)
	return p.finishNode(node)
}

func (p *Parser) parseStatementList(parent NodeID, close TokenKind) {
	for !p.atEOF() && !p.check(close) {
		progress := p.mustProgress(parent)
		p.addChild(parent, p.parseStatement())
		progress()
	}
}

// parseStatement returns NoNode without reporting when the current token is
// a closing brace or EOF, so the caller decides whether that is an error.
func (p *Parser) parseStatement() NodeID {
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()

	tok := p.peek()
	switch tok.Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenVar, TokenConst:
		return p.parseVarDecl(false)
	case TokenFunction:
		return p.parseFunction(KindFunctionDecl, false)
	case TokenClass:
		return p.parseClass(KindClassDecl, false)
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenWhile:
		return p.parseWhile()
	case TokenDo:
		return p.parseDoWhile()
	case TokenReturn:
		return p.parseReturn()
	case TokenBreak:
		return p.parseJump(KindBreak)
	case TokenContinue:
		return p.parseJump(KindContinue)
	case TokenThrow:
		return p.parseThrow()
	case TokenTry:
		return p.parseTry()
	case TokenSwitch:
		return p.parseSwitch()
	case TokenSemicolon:
		node := p.startNode(KindEmpty)
		p.addToken(node)
		return p.finishNode(node)
	case TokenDebugger:
		node := p.startNode(KindDebugger)
		p.addToken(node)
		p.consumeSemicolon(node)
		return p.finishNode(node)
	case TokenImport:
		if next := p.peekN(1).Kind; next != TokenLParen && next != TokenDot {
			return p.parseImport()
		}
	case TokenExport:
		return p.parseExport()
	case TokenIdent:
		next := p.peekN(1)
		switch {
		case tok.Text == "let" && p.isLetDeclaration():
			return p.parseVarDecl(false)
		case tok.Text == "async" && next.Kind == TokenFunction && !next.HasLeadingNewline():
			return p.parseFunction(KindFunctionDecl, false)
		case p.mode == TypeScript && tok.Text == "type" && next.Kind == TokenIdent:
			return p.parseTypeAlias()
		case p.mode == TypeScript && tok.Text == "interface" && next.Kind == TokenIdent:
			return p.parseInterface()
		case p.mode == TypeScript && tok.Text == "abstract" && next.Kind == TokenClass:
			return p.parseClass(KindClassDecl, false)
		case next.Kind == TokenColon:
			return p.parseLabeled()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) isLetDeclaration() bool {
	switch p.peekN(1).Kind {
	case TokenIdent, TokenLBracket, TokenLBrace:
		return true
	}
	return false
}

func (p *Parser) parseExpressionStatement() NodeID {
	if !p.isExpressionStart() {
		if p.check(TokenRBrace) || p.atEOF() {
			return NoNode
		}
		p.errorExpected(expectedStatement)
		return p.bogus(func() bool {
			return p.match(TokenSemicolon, TokenRBrace) || p.hasPrecedingLineBreak()
		})
	}
	node := p.startNode(KindExprStmt)
	p.addChild(node, p.parseExpression())
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

// consumeSemicolon applies automatic semicolon insertion: a semicolon may be
// omitted before `}`, at EOF, or after a line break.
func (p *Parser) consumeSemicolon(node NodeID) {
	if p.eat(node, TokenSemicolon) {
		return
	}
	if p.check(TokenRBrace) || p.atEOF() || p.hasPrecedingLineBreak() {
		return
	}
	p.errorExpected(quote(";"))
	p.addMissing(node, quote(";"))
}

func (p *Parser) parseBlock() NodeID {
	node := p.startNode(KindBlock)
	p.expect(node, TokenLBrace)
	p.parseStatementList(node, TokenRBrace)
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

// addBlock adds a block to parent, or a Missing marker when no `{` follows.
func (p *Parser) addBlock(parent NodeID) {
	if p.check(TokenLBrace) {
		p.addChild(parent, p.parseBlock())
		return
	}
	p.errorExpected(quote("{"))
	p.addMissing(parent, quote("{"))
}

// addStatement adds a nested statement such as a loop body.
func (p *Parser) addStatement(parent NodeID) {
	p.addRequired(parent, p.parseStatement(), expectedStatement)
}

func (p *Parser) parseVarDecl(inForHead bool) NodeID {
	node := p.startNode(KindVarDecl)
	p.addToken(node)
	for {
		p.addChild(node, p.parseVarDeclarator())
		if !p.eat(node, TokenComma) {
			break
		}
	}
	if !inForHead {
		p.consumeSemicolon(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseVarDeclarator() NodeID {
	node := p.startNode(KindVarDeclarator)
	p.addRequired(node, p.parseBindingTarget(), expectedBinding)
	if p.mode == TypeScript {
		p.eat(node, TokenBang)
	}
	p.parseTypeAnnotationOpt(node)
	if p.eat(node, TokenAssign) {
		p.addRequired(node, p.parseAssignment(), expectedExpression)
	}
	return p.finishNode(node)
}

func (p *Parser) parseIf() NodeID {
	node := p.startNode(KindIf)
	p.addToken(node)
	p.parseParenthesizedCondition(node)
	p.addStatement(node)
	if p.eat(node, TokenElse) {
		p.addStatement(node)
	}
	return p.finishNode(node)
}

func (p *Parser) parseParenthesizedCondition(node NodeID) {
	p.expect(node, TokenLParen)
	p.addRequired(node, p.parseExpression(), expectedExpression)
	p.expect(node, TokenRParen)
}

func (p *Parser) parseWhile() NodeID {
	node := p.startNode(KindWhile)
	p.addToken(node)
	p.parseParenthesizedCondition(node)
	p.addStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseDoWhile() NodeID {
	node := p.startNode(KindDoWhile)
	p.addToken(node)
	p.addStatement(node)
	p.expect(node, TokenWhile)
	p.parseParenthesizedCondition(node)
	p.eat(node, TokenSemicolon)
	return p.finishNode(node)
}

// parseFor handles classic, for-in and for-of loops. The node kind is fixed
// once the token after the head's first clause is known.
func (p *Parser) parseFor() NodeID {
	node := p.startNode(KindFor)
	p.addToken(node)
	if p.atWord("await") {
		p.addToken(node)
	}
	p.expect(node, TokenLParen)

	savedNoIn := p.noIn
	p.noIn = true
	init := NoNode
	switch {
	case p.match(TokenVar, TokenConst), p.atWord("let") && p.isLetDeclaration():
		init = p.parseVarDecl(true)
	case !p.check(TokenSemicolon):
		init = p.parseExpression()
	}
	p.noIn = savedNoIn

	if init != NoNode && (p.check(TokenIn) || p.atWord("of")) {
		of := p.atWord("of")
		if of {
			p.nodes[node].kind = KindForOf
		} else {
			p.nodes[node].kind = KindForIn
		}
		if p.nodes[init].kind != KindVarDecl {
			p.markAssignmentTarget(init)
		}
		p.addChild(node, init)
		p.addToken(node)
		if of {
			p.addRequired(node, p.parseAssignment(), expectedExpression)
		} else {
			p.addRequired(node, p.parseExpression(), expectedExpression)
		}
	} else {
		p.addChild(node, init)
		p.expect(node, TokenSemicolon)
		if !p.check(TokenSemicolon) {
			p.addChild(node, p.parseExpression())
		}
		p.expect(node, TokenSemicolon)
		if !p.check(TokenRParen) {
			p.addChild(node, p.parseExpression())
		}
	}
	p.expect(node, TokenRParen)
	p.addStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseReturn() NodeID {
	node := p.startNode(KindReturn)
	p.addToken(node)
	if !p.match(TokenSemicolon, TokenRBrace) && !p.atEOF() && !p.hasPrecedingLineBreak() {
		p.addRequired(node, p.parseExpression(), expectedExpression)
	}
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

// parseJump parses break and continue with their optional label.
func (p *Parser) parseJump(kind NodeKind) NodeID {
	node := p.startNode(kind)
	p.addToken(node)
	if p.check(TokenIdent) && !p.hasPrecedingLineBreak() {
		p.addToken(node)
	}
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

func (p *Parser) parseThrow() NodeID {
	node := p.startNode(KindThrow)
	p.addToken(node)
	p.addRequired(node, p.parseExpression(), expectedExpression)
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

func (p *Parser) parseTry() NodeID {
	node := p.startNode(KindTry)
	p.addToken(node)
	p.addBlock(node)
	handled := false
	if p.check(TokenCatch) {
		handled = true
		catch := p.startNode(KindCatch)
		p.addToken(catch)
		if p.eat(catch, TokenLParen) {
			p.addRequired(catch, p.parseBindingTarget(), expectedBinding)
			p.parseTypeAnnotationOpt(catch)
			p.expect(catch, TokenRParen)
		}
		p.addBlock(catch)
		p.finishNode(catch)
		p.addChild(node, catch)
	}
	if p.check(TokenFinally) {
		handled = true
		finally := p.startNode(KindFinally)
		p.addToken(finally)
		p.addBlock(finally)
		p.finishNode(finally)
		p.addChild(node, finally)
	}
	if !handled {
		expected := "`catch` or `finally`"
		p.errorExpected(expected)
		p.addMissing(node, expected)
	}
	return p.finishNode(node)
}

func (p *Parser) parseSwitch() NodeID {
	node := p.startNode(KindSwitch)
	p.addToken(node)
	p.parseParenthesizedCondition(node)
	if !p.expect(node, TokenLBrace) {
		return p.finishNode(node)
	}
	for !p.atEOF() && !p.check(TokenRBrace) {
		progress := p.mustProgress(node)
		if p.match(TokenCase, TokenDefault) {
			p.addChild(node, p.parseCase())
		} else {
			p.errorExpected("`case` or `default`")
			p.bogusUntil(node, func() bool {
				return p.match(TokenCase, TokenDefault, TokenRBrace)
			})
		}
		progress()
	}
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseCase() NodeID {
	node := p.startNode(KindCase)
	if p.check(TokenCase) {
		p.addToken(node)
		p.addRequired(node, p.parseExpression(), expectedExpression)
	} else {
		p.addToken(node)
	}
	p.expect(node, TokenColon)
	for !p.atEOF() && !p.match(TokenCase, TokenDefault, TokenRBrace) {
		progress := p.mustProgress(node)
		p.addChild(node, p.parseStatement())
		progress()
	}
	return p.finishNode(node)
}

func (p *Parser) parseLabeled() NodeID {
	node := p.startNode(KindLabeled)
	p.addToken(node)
	p.addToken(node)
	p.addStatement(node)
	return p.finishNode(node)
}

func (p *Parser) parseImport() NodeID {
	node := p.startNode(KindImport)
	p.addToken(node)
	if p.mode == TypeScript && p.atWord("type") {
		if next := p.peekN(1); next.Kind == TokenLBrace || next.Kind == TokenStar ||
			(next.Kind == TokenIdent && next.Text != "from") {
			p.addToken(node)
		}
	}
	if p.check(TokenString) {
		p.addToken(node)
		p.consumeSemicolon(node)
		return p.finishNode(node)
	}

	if p.check(TokenIdent) && !(p.atWord("from") && p.peekN(1).Kind == TokenString) {
		spec := p.startNode(KindImportSpecifier)
		p.addChild(spec, p.parseIdentifierBinding())
		p.finishNode(spec)
		p.addChild(node, spec)
		p.eat(node, TokenComma)
	}
	switch {
	case p.check(TokenStar):
		spec := p.startNode(KindImportSpecifier)
		p.addToken(spec)
		p.expectWord(spec, "as")
		p.addRequired(spec, p.parseOptionalIdentifierBinding(), expectedIdentifier)
		p.finishNode(spec)
		p.addChild(node, spec)
	case p.check(TokenLBrace):
		p.addToken(node)
		p.parseSeparatedList(node, listConfig{
			close:         TokenRBrace,
			expected:      "an import specifier",
			allowTrailing: true,
			isStart:       p.isModuleExportNameStart,
			parse:         p.parseImportSpecifier,
		})
		p.expect(node, TokenRBrace)
	}
	p.expectWord(node, "from")
	if !p.eat(node, TokenString) {
		p.errorExpected("a module source")
		p.addMissing(node, "a module source")
	}
	p.consumeSemicolon(node)
	return p.finishNode(node)
}

func (p *Parser) expectWord(parent NodeID, word string) bool {
	if p.atWord(word) {
		p.addToken(parent)
		return true
	}
	p.errorExpected(quote(word))
	p.addMissing(parent, quote(word))
	return false
}

func (p *Parser) isModuleExportNameStart() bool {
	tok := p.peek()
	return tok.Kind == TokenIdent || tok.Kind == TokenString || tok.Kind.IsKeyword()
}

func (p *Parser) parseImportSpecifier() NodeID {
	node := p.startNode(KindImportSpecifier)
	if p.mode == TypeScript && p.atWord("type") && p.peekN(1).Kind == TokenIdent {
		p.addToken(node)
	}
	next := p.peekN(1)
	if next.Kind == TokenIdent && next.Text == "as" {
		p.addChild(node, p.parseNameNode(KindMemberName))
		p.addToken(node)
		p.addRequired(node, p.parseOptionalIdentifierBinding(), expectedIdentifier)
		return p.finishNode(node)
	}
	p.addRequired(node, p.parseOptionalIdentifierBinding(), expectedIdentifier)
	return p.finishNode(node)
}

func (p *Parser) parseExport() NodeID {
	node := p.startNode(KindExport)
	p.addToken(node)
	if p.mode == TypeScript && p.atWord("type") && p.peekN(1).Kind == TokenLBrace {
		p.addToken(node)
	}
	switch {
	case p.check(TokenDefault):
		p.addToken(node)
		switch {
		case p.check(TokenFunction), p.atWord("async") && p.peekN(1).Kind == TokenFunction:
			p.addChild(node, p.parseFunction(KindFunctionDecl, true))
		case p.check(TokenClass):
			p.addChild(node, p.parseClass(KindClassDecl, true))
		default:
			p.addRequired(node, p.parseAssignment(), expectedExpression)
			p.consumeSemicolon(node)
		}
	case p.check(TokenStar):
		p.addToken(node)
		if p.atWord("as") {
			p.addToken(node)
			if p.isModuleExportNameStart() {
				p.addChild(node, p.parseNameNode(KindMemberName))
			} else {
				p.errorExpected(expectedIdentifier)
				p.addMissing(node, expectedIdentifier)
			}
		}
		p.expectWord(node, "from")
		if !p.eat(node, TokenString) {
			p.errorExpected("a module source")
			p.addMissing(node, "a module source")
		}
		p.consumeSemicolon(node)
	case p.check(TokenLBrace):
		p.addToken(node)
		first := len(p.nodes)
		p.parseSeparatedList(node, listConfig{
			close:         TokenRBrace,
			expected:      "an export specifier",
			allowTrailing: true,
			isStart:       p.isModuleExportNameStart,
			parse:         p.parseExportSpecifier,
		})
		p.expect(node, TokenRBrace)
		if p.atWord("from") {
			// Re-exported names refer to the other module, not local bindings.
			for i := first; i < len(p.nodes); i++ {
				if p.nodes[i].kind == KindReferenceIdentifier {
					p.nodes[i].kind = KindMemberName
				}
			}
			p.addToken(node)
			if !p.eat(node, TokenString) {
				p.errorExpected("a module source")
				p.addMissing(node, "a module source")
			}
		}
		p.consumeSemicolon(node)
	default:
		p.addRequired(node, p.parseStatement(), "a declaration")
	}
	return p.finishNode(node)
}

func (p *Parser) parseExportSpecifier() NodeID {
	node := p.startNode(KindExportSpecifier)
	if p.check(TokenIdent) {
		p.addChild(node, p.parseNameNode(KindReferenceIdentifier))
	} else {
		p.addChild(node, p.parseNameNode(KindMemberName))
	}
	if p.atWord("as") {
		p.addToken(node)
		if p.isModuleExportNameStart() {
			p.addChild(node, p.parseNameNode(KindMemberName))
		} else {
			p.errorExpected(expectedIdentifier)
			p.addMissing(node, expectedIdentifier)
		}
	}
	return p.finishNode(node)
}

// parseNameNode wraps the current token into a single-token node of kind.
func (p *Parser) parseNameNode(kind NodeKind) NodeID {
	node := p.startNode(kind)
	p.addToken(node)
	return p.finishNode(node)
}

func (p *Parser) parseIdentifierBinding() NodeID {
	return p.parseNameNode(KindIdentifierBinding)
}

func (p *Parser) parseOptionalIdentifierBinding() NodeID {
	if !p.check(TokenIdent) {
		return NoNode
	}
	return p.parseIdentifierBinding()
}
