package syntax

import (
	"fmt"

	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/source"
)

// DefaultMaxDepth bounds the nesting of values, statements and expressions.
const DefaultMaxDepth = 512

type Option func(*Parser)

func WithMode(mode Mode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// Parser builds a Tree from tokens. It never fails: every problem becomes a
// diagnostic, a Missing marker or a Bogus node.
type Parser struct {
	mode     Mode
	maxDepth int

	src    string
	lines  *source.LineIndex
	tokens []Token
	pos    int
	nodes  []nodeData

	diags     []diagnostic.Diagnostic
	lastError int

	depth         int
	depthReported bool

	noIn        bool
	inGenerator bool

	parens map[int]int
}

// Parse parses src in the selected mode (JavaScript unless WithMode says
// otherwise) and returns the tree with all parse diagnostics in source order.
func Parse(src []byte, opts ...Option) (tree *Tree, diags []diagnostic.Diagnostic) {
	p := &Parser{
		mode:      JavaScript,
		maxDepth:  DefaultMaxDepth,
		lastError: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.src = string(src)
	p.lines = source.NewLineIndex(p.src)
	p.tokens = NewLexer(src, p.mode).Tokens()

	defer func() {
		if r := recover(); r != nil {
			tree, diags = p.salvage(r)
		}
	}()

	var root NodeID
	if p.mode == JSON {
		root = p.parseJSONRoot()
	} else {
		root = p.parseModule()
	}
	diagnostic.Sort(p.diags)
	return p.tree(root), p.diags
}

func (p *Parser) tree(root NodeID) *Tree {
	return &Tree{
		mode:   p.mode,
		source: p.src,
		tokens: p.tokens,
		nodes:  p.nodes,
		root:   root,
		lines:  p.lines,
	}
}

// salvage turns an internal parser failure into a tree that still covers
// every token, so callers keep the lossless guarantee.
func (p *Parser) salvage(r any) (*Tree, []diagnostic.Diagnostic) {
	p.nodes = nil
	p.pos = 0
	kind := KindModule
	if p.mode == JSON {
		kind = KindJsonRoot
	}
	root := p.startNode(kind)
	if !p.atEOF() {
		p.bogusUntil(root, func() bool { return false })
	}
	p.finishNode(root)
	p.diags = append(p.diags, diagnostic.New(diagnostic.RuleParse, diagnostic.Error,
		p.lines.Span(0, 0), fmt.Sprintf("internal parser error: %v", r)))
	diagnostic.Sort(p.diags)
	return p.tree(root), p.diags
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// atWord reports whether the next token is the contextual word w.
func (p *Parser) atWord(w string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Text == w
}

func (p *Parser) atEOF() bool {
	return p.check(TokenEOF)
}

// advance consumes the current token. EOF is never consumed.
func (p *Parser) advance() TokenID {
	id := TokenID(p.pos)
	if !p.atEOF() {
		p.pos++
	}
	return id
}

// hasPrecedingLineBreak reports whether a line break separates the previous
// token from the current one.
func (p *Parser) hasPrecedingLineBreak() bool {
	if p.pos == 0 {
		return false
	}
	return p.tokens[p.pos-1].hasTrailingNewline() || p.peek().HasLeadingNewline()
}

func (p *Parser) startNode(kind NodeKind) NodeID {
	return p.startNodeAt(kind, TokenID(p.pos))
}

// startNodeAt starts a node whose first token was already consumed, used to
// wrap a completed left operand.
func (p *Parser) startNodeAt(kind NodeKind, first TokenID) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, nodeData{
		kind:     kind,
		parent:   NoNode,
		firstTok: first,
		endTok:   first,
	})
	return id
}

func (p *Parser) finishNode(id NodeID) NodeID {
	p.nodes[id].endTok = TokenID(p.pos)
	return id
}

func (p *Parser) firstTokenOf(id NodeID) TokenID {
	return p.nodes[id].firstTok
}

func (p *Parser) addChild(parent, id NodeID) {
	if id == NoNode {
		return
	}
	p.nodes[id].parent = parent
	p.nodes[parent].children = append(p.nodes[parent].children, child{kind: ElementNode, index: int32(id)})
}

// addToken consumes the current token into parent.
func (p *Parser) addToken(parent NodeID) TokenID {
	if p.atEOF() {
		return TokenID(p.pos)
	}
	id := p.advance()
	p.nodes[parent].children = append(p.nodes[parent].children, child{kind: ElementToken, index: int32(id)})
	return id
}

func (p *Parser) addMissing(parent NodeID, expected string) {
	p.nodes[parent].children = append(p.nodes[parent].children, child{kind: ElementMissing, expected: expected})
}

// addRequired adds id to parent, or reports the expectation and records a
// Missing marker when id is NoNode.
func (p *Parser) addRequired(parent, id NodeID, expected string) {
	if id == NoNode {
		p.errorExpected(expected)
		p.addMissing(parent, expected)
		return
	}
	p.addChild(parent, id)
}

func (p *Parser) expect(parent NodeID, kind TokenKind) bool {
	if p.check(kind) {
		p.addToken(parent)
		return true
	}
	expected := quote(kind.String())
	p.errorExpected(expected)
	p.addMissing(parent, expected)
	return false
}

func (p *Parser) eat(parent NodeID, kind TokenKind) bool {
	if p.check(kind) {
		p.addToken(parent)
		return true
	}
	return false
}

func quote(s string) string {
	return "`" + s + "`"
}

func (p *Parser) describeCurrent() string {
	tok := p.peek()
	switch tok.Kind {
	case TokenEOF:
		return "the end of the file"
	case TokenTemplateMiddle, TokenTemplateTail:
		// Only the brace that closes the substitution.
		return quote("}")
	}
	return quote(tok.Text)
}

func (p *Parser) currentSpan() source.Span {
	tok := p.peek()
	return p.lines.Span(tok.Offset, tok.End())
}

func (p *Parser) errorExpected(what string) {
	p.errorAt(p.currentSpan(), fmt.Sprintf("expected %s but instead found %s", what, p.describeCurrent()))
}

// errorAt records a parse error unless the previous one starts at the same
// offset, so each recovery point yields a single diagnostic.
func (p *Parser) errorAt(span source.Span, msg string) {
	if span.Start.Offset == p.lastError {
		return
	}
	p.lastError = span.Start.Offset
	p.diags = append(p.diags, diagnostic.New(diagnostic.RuleParse, diagnostic.Error, span, msg))
}

// bogusUntil wraps tokens into a Bogus child of parent until stop reports
// true. At least one token is consumed.
func (p *Parser) bogusUntil(parent NodeID, stop func() bool) {
	p.addChild(parent, p.bogus(stop))
}

// bogus is bogusUntil without a parent. It returns NoNode at EOF.
func (p *Parser) bogus(stop func() bool) NodeID {
	if p.atEOF() {
		return NoNode
	}
	node := p.startNode(KindBogus)
	p.addToken(node)
	for !p.atEOF() && !stop() {
		p.addToken(node)
	}
	return p.finishNode(node)
}

// mustProgress returns a function to call at the end of a loop iteration.
// When the iteration consumed nothing, the current token is reported and
// wrapped into a Bogus node under parent so the loop cannot spin.
func (p *Parser) mustProgress(parent NodeID) func() bool {
	saved := p.pos
	return func() bool {
		if p.pos != saved {
			return true
		}
		if p.atEOF() {
			return false
		}
		p.errorAt(p.currentSpan(), fmt.Sprintf("unexpected %s", p.describeCurrent()))
		p.bogusUntil(parent, func() bool { return true })
		return false
	}
}

func (p *Parser) enter() bool {
	p.depth++
	return p.depth <= p.maxDepth
}

func (p *Parser) leave() {
	p.depth--
}

// tooDeep reports the nesting limit once and wraps the rest of the current
// construct, up to the closing bracket or separator at this level, into a
// Bogus node without recursing.
func (p *Parser) tooDeep() NodeID {
	if !p.depthReported {
		p.depthReported = true
		p.errorAt(p.currentSpan(), "the nesting depth exceeds the supported maximum")
	}
	node := p.startNode(KindBogus)
	level := 0
loop:
	for !p.atEOF() {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			level++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if level == 0 {
				break loop
			}
			level--
		case TokenComma, TokenSemicolon, TokenTemplateMiddle, TokenTemplateTail:
			if level == 0 {
				break loop
			}
		}
		p.addToken(node)
	}
	return p.finishNode(node)
}

type checkpoint struct {
	pos           int
	nodes         int
	diags         int
	lastError     int
	depth         int
	depthReported bool
}

func (p *Parser) checkpoint() checkpoint {
	return checkpoint{
		pos:           p.pos,
		nodes:         len(p.nodes),
		diags:         len(p.diags),
		lastError:     p.lastError,
		depth:         p.depth,
		depthReported: p.depthReported,
	}
}

// rewind discards everything parsed since c. Only nodes created after c may
// have been modified in between.
func (p *Parser) rewind(c checkpoint) {
	p.pos = c.pos
	p.nodes = p.nodes[:c.nodes]
	p.diags = p.diags[:c.diags]
	p.lastError = c.lastError
	p.depth = c.depth
	p.depthReported = c.depthReported
}

func (p *Parser) atClosingBracket() bool {
	return p.match(TokenRParen, TokenRBracket, TokenRBrace)
}

type listConfig struct {
	close         TokenKind
	expected      string
	allowTrailing bool
	allowHoles    bool
	isStart       func() bool
	parse         func() NodeID
}

// parseSeparatedList parses comma separated elements into list until the
// closing token, a foreign closing bracket, or EOF. The closing token itself
// is left for the caller.
func (p *Parser) parseSeparatedList(list NodeID, cfg listConfig) {
	last := -1
	for !p.atEOF() && !p.check(cfg.close) {
		if p.pos == last {
			p.bogusUntil(list, func() bool { return true })
			continue
		}
		last = p.pos
		if p.check(TokenComma) && cfg.allowHoles {
			p.addToken(list)
			continue
		}
		if !cfg.isStart() {
			p.errorExpected(cfg.expected)
			if p.atClosingBracket() {
				return
			}
			if p.check(TokenComma) {
				p.addToken(list)
				continue
			}
			p.bogusUntil(list, func() bool {
				return p.check(TokenComma) || p.check(cfg.close) || p.atClosingBracket()
			})
			if p.check(TokenComma) {
				p.addToken(list)
				continue
			}
			if !p.check(cfg.close) {
				return
			}
			continue
		}

		p.addChild(list, cfg.parse())

		if p.check(TokenComma) {
			p.addToken(list)
			if p.atEOF() || (p.check(cfg.close) && !cfg.allowTrailing) {
				p.errorExpected(cfg.expected)
			}
			continue
		}
		if p.check(cfg.close) || p.atEOF() {
			return
		}
		p.errorExpected(quote(","))
		if cfg.isStart() {
			continue
		}
		if p.atClosingBracket() {
			return
		}
		p.bogusUntil(list, func() bool {
			return p.check(TokenComma) || p.check(cfg.close) || p.atClosingBracket()
		})
		if p.check(TokenComma) {
			p.addToken(list)
		}
	}
}
