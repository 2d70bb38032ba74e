package syntax

const expectedJSONValue = "an array, an object, or a literal"

func (p *Parser) parseJSONRoot() NodeID {
	root := p.startNode(KindJsonRoot)
	p.addRequired(root, p.parseJSONValue(), expectedJSONValue)
	if !p.atEOF() {
		p.errorExpected("the end of the file")
		p.bogusUntil(root, func() bool { return false })
	}
	return p.finishNode(root)
}

func (p *Parser) isJSONValueStart() bool {
	switch p.peek().Kind {
	case TokenLBracket, TokenLBrace, TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
		return true
	}
	return false
}

// parseJSONValue returns NoNode when the current token cannot start a value.
func (p *Parser) parseJSONValue() NodeID {
	if !p.isJSONValueStart() {
		return NoNode
	}
	if !p.enter() {
		defer p.leave()
		return p.tooDeep()
	}
	defer p.leave()

	switch p.peek().Kind {
	case TokenLBracket:
		return p.parseJSONArray()
	case TokenLBrace:
		return p.parseJSONObject()
	case TokenString:
		return p.parseJSONString(KindJsonString)
	case TokenNumber:
		return p.parseJSONLeaf(KindJsonNumber)
	case TokenTrue, TokenFalse:
		return p.parseJSONLeaf(KindJsonBoolean)
	default:
		return p.parseJSONLeaf(KindJsonNull)
	}
}

func (p *Parser) parseJSONLeaf(kind NodeKind) NodeID {
	node := p.startNode(kind)
	p.addToken(node)
	return p.finishNode(node)
}

func (p *Parser) parseJSONString(kind NodeKind) NodeID {
	if text := p.peek().Text; len(text) > 0 && text[0] == '\'' {
		p.errorAt(p.currentSpan(), "JSON standard does not allow single quoted strings")
	}
	return p.parseJSONLeaf(kind)
}

func (p *Parser) parseJSONArray() NodeID {
	node := p.startNode(KindJsonArray)
	p.addToken(node)
	elements := p.startNode(KindJsonArrayElements)
	p.parseSeparatedList(elements, listConfig{
		close:    TokenRBracket,
		expected: expectedJSONValue,
		isStart:  p.isJSONValueStart,
		parse:    p.parseJSONValue,
	})
	p.finishNode(elements)
	p.addChild(node, elements)
	p.expect(node, TokenRBracket)
	return p.finishNode(node)
}

func (p *Parser) parseJSONObject() NodeID {
	node := p.startNode(KindJsonObject)
	p.addToken(node)
	members := p.startNode(KindJsonMemberList)
	p.parseSeparatedList(members, listConfig{
		close:    TokenRBrace,
		expected: "a property",
		isStart:  func() bool { return p.check(TokenString) },
		parse:    p.parseJSONMember,
	})
	p.finishNode(members)
	p.addChild(node, members)
	p.expect(node, TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseJSONMember() NodeID {
	node := p.startNode(KindJsonMember)
	p.addChild(node, p.parseJSONString(KindJsonMemberName))
	p.expect(node, TokenColon)
	p.addRequired(node, p.parseJSONValue(), expectedJSONValue)
	return p.finishNode(node)
}
