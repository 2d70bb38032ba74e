package syntax

import (
	"fmt"
	"strings"

	"github.com/dhamidi/scry/source"
)

type NodeID int32

type TokenID int32

// NoNode marks the absence of a node, for example the parent of the root.
const NoNode NodeID = -1

type ElementKind uint8

const (
	ElementNode ElementKind = iota
	ElementToken
	ElementMissing
)

func (k ElementKind) String() string {
	switch k {
	case ElementNode:
		return "Node"
	case ElementToken:
		return "Token"
	case ElementMissing:
		return "Missing"
	default:
		return "Unknown"
	}
}

type child struct {
	kind     ElementKind
	index    int32
	expected string
}

type nodeData struct {
	kind     NodeKind
	parent   NodeID
	children []child
	firstTok TokenID
	endTok   TokenID
}

// Tree is an immutable concrete syntax tree. Nodes and tokens live in flat
// arenas and refer to each other by index. A Tree is safe for concurrent
// readers.
type Tree struct {
	mode   Mode
	source string
	tokens []Token
	nodes  []nodeData
	root   NodeID
	lines  *source.LineIndex
}

func (t *Tree) Mode() Mode {
	return t.mode
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() string {
	return t.source
}

func (t *Tree) Lines() *source.LineIndex {
	return t.lines
}

func (t *Tree) Root() Node {
	return Node{tree: t, id: t.root}
}

// EOF returns the end-of-file token, which carries the trailing trivia of
// the file.
func (t *Tree) EOF() Token {
	return t.tokens[len(t.tokens)-1]
}

// Tokens returns every token in source order, EOF included. The returned
// slice is a copy; the trivia slices it refers to must not be modified.
func (t *Tree) Tokens() []Token {
	return append([]Token(nil), t.tokens...)
}

func (t *Tree) TokenCount() int {
	return len(t.tokens)
}

func (t *Tree) Token(id TokenID) Token {
	return t.tokens[id]
}

func (t *Tree) TokenSpan(id TokenID) source.Span {
	tok := t.tokens[id]
	return t.lines.Span(tok.Offset, tok.End())
}

func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

func (t *Tree) Node(id NodeID) Node {
	return Node{tree: t, id: id}
}

// Text rebuilds the source from the tokens and their trivia.
func (t *Tree) Text() string {
	var sb strings.Builder
	sb.Grow(len(t.source))
	for _, tok := range t.tokens {
		for _, tr := range tok.Leading {
			sb.WriteString(tr.Text)
		}
		sb.WriteString(tok.Text)
		for _, tr := range tok.Trailing {
			sb.WriteString(tr.Text)
		}
	}
	return sb.String()
}

func (t *Tree) rangeSpan(first, end TokenID) source.Span {
	if end > first {
		return t.lines.Span(t.tokens[first].Offset, t.tokens[end-1].End())
	}
	idx := first
	if int(idx) >= len(t.tokens) {
		idx = TokenID(len(t.tokens) - 1)
	}
	off := t.tokens[idx].Offset
	return t.lines.Span(off, off)
}

// Descendants returns the nodes below n in preorder. When kinds is not empty
// only nodes of those kinds are returned.
func (t *Tree) Descendants(n Node, kinds ...NodeKind) []Node {
	var out []Node
	walk := n.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if !ev.Enter || ev.Node.id == n.id {
			continue
		}
		if len(kinds) == 0 {
			out = append(out, ev.Node)
			continue
		}
		for _, k := range kinds {
			if ev.Node.Kind() == k {
				out = append(out, ev.Node)
				break
			}
		}
	}
	return out
}

// String renders an indented debug dump of the tree.
func (t *Tree) String() string {
	var sb strings.Builder
	depth := 0
	walk := t.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if !ev.Enter {
			depth--
			continue
		}
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&sb, "%s%s %s\n", indent, ev.Node.Kind(), ev.Node.Span())
		for _, el := range ev.Node.Children() {
			switch el.Kind() {
			case ElementToken:
				tok, _ := el.Token()
				fmt.Fprintf(&sb, "%s  %s %q\n", indent, tok.Kind, tok.Text)
			case ElementMissing:
				fmt.Fprintf(&sb, "%s  Missing %s\n", indent, el.Expected())
			}
		}
		depth++
	}
	return sb.String()
}

// Node is a handle to a node stored in a Tree.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) IsZero() bool {
	return n.tree == nil
}

func (n Node) ID() NodeID {
	return n.id
}

func (n Node) Tree() *Tree {
	return n.tree
}

func (n Node) Kind() NodeKind {
	return n.tree.nodes[n.id].kind
}

func (n Node) Parent() (Node, bool) {
	parent := n.tree.nodes[n.id].parent
	if parent == NoNode {
		return Node{}, false
	}
	return Node{tree: n.tree, id: parent}, true
}

func (n Node) Children() []Element {
	data := n.tree.nodes[n.id].children
	out := make([]Element, len(data))
	for i, c := range data {
		out[i] = Element{tree: n.tree, c: c}
	}
	return out
}

// ChildNodes returns the node children of n, skipping tokens and Missing
// markers.
func (n Node) ChildNodes() []Node {
	var out []Node
	for _, c := range n.tree.nodes[n.id].children {
		if c.kind == ElementNode {
			out = append(out, Node{tree: n.tree, id: NodeID(c.index)})
		}
	}
	return out
}

// Child returns the first child node of the given kind.
func (n Node) Child(kind NodeKind) (Node, bool) {
	for _, c := range n.tree.nodes[n.id].children {
		if c.kind == ElementNode && n.tree.nodes[c.index].kind == kind {
			return Node{tree: n.tree, id: NodeID(c.index)}, true
		}
	}
	return Node{}, false
}

// ChildToken returns the first token child of the given kind.
func (n Node) ChildToken(kind TokenKind) (Token, TokenID, bool) {
	for _, c := range n.tree.nodes[n.id].children {
		if c.kind == ElementToken && n.tree.tokens[c.index].Kind == kind {
			return n.tree.tokens[c.index], TokenID(c.index), true
		}
	}
	return Token{}, 0, false
}

// TokenRange returns the half-open range of token ids covered by n.
func (n Node) TokenRange() (TokenID, TokenID) {
	data := n.tree.nodes[n.id]
	return data.firstTok, data.endTok
}

func (n Node) FirstToken() (Token, TokenID, bool) {
	data := n.tree.nodes[n.id]
	if data.endTok <= data.firstTok {
		return Token{}, 0, false
	}
	return n.tree.tokens[data.firstTok], data.firstTok, true
}

// Span covers the node's tokens without their trivia. A node without tokens
// has an empty span at the next token.
func (n Node) Span() source.Span {
	data := n.tree.nodes[n.id]
	return n.tree.rangeSpan(data.firstTok, data.endTok)
}

func (n Node) Text() string {
	span := n.Span()
	return n.tree.source[span.Start.Offset:span.End.Offset]
}

// IsAncestorOf reports whether other lies in the subtree rooted at n.
func (n Node) IsAncestorOf(other Node) bool {
	for id := other.id; id != NoNode; id = n.tree.nodes[id].parent {
		if id == n.id {
			return true
		}
	}
	return false
}

func (n Node) Preorder() *Preorder {
	return &Preorder{tree: n.tree, root: n.id}
}

// Element is a child slot of a node: a node, a token, or a Missing marker
// for a required child that was absent from the input.
type Element struct {
	tree *Tree
	c    child
}

func (e Element) Kind() ElementKind {
	return e.c.kind
}

func (e Element) IsMissing() bool {
	return e.c.kind == ElementMissing
}

func (e Element) Node() (Node, bool) {
	if e.c.kind != ElementNode {
		return Node{}, false
	}
	return Node{tree: e.tree, id: NodeID(e.c.index)}, true
}

func (e Element) Token() (Token, bool) {
	if e.c.kind != ElementToken {
		return Token{}, false
	}
	return e.tree.tokens[e.c.index], true
}

func (e Element) TokenID() (TokenID, bool) {
	if e.c.kind != ElementToken {
		return 0, false
	}
	return TokenID(e.c.index), true
}

// Expected describes what a Missing element stands for.
func (e Element) Expected() string {
	return e.c.expected
}

type WalkEvent struct {
	Node  Node
	Enter bool
}

type walkFrame struct {
	id   NodeID
	next int
}

// Preorder walks a subtree with an explicit stack, yielding an enter event
// before a node's children and a leave event after them.
type Preorder struct {
	tree    *Tree
	root    NodeID
	stack   []walkFrame
	started bool
}

func (t *Tree) Preorder() *Preorder {
	return t.Root().Preorder()
}

func (w *Preorder) Next() (WalkEvent, bool) {
	if !w.started {
		w.started = true
		w.stack = append(w.stack, walkFrame{id: w.root})
		return WalkEvent{Node: Node{tree: w.tree, id: w.root}, Enter: true}, true
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		children := w.tree.nodes[top.id].children
		for top.next < len(children) {
			c := children[top.next]
			top.next++
			if c.kind == ElementNode {
				id := NodeID(c.index)
				w.stack = append(w.stack, walkFrame{id: id})
				return WalkEvent{Node: Node{tree: w.tree, id: id}, Enter: true}, true
			}
		}
		id := top.id
		w.stack = w.stack[:len(w.stack)-1]
		return WalkEvent{Node: Node{tree: w.tree, id: id}, Enter: false}, true
	}
	return WalkEvent{}, false
}

// SkipSubtree makes the walk leave the node just entered without visiting
// its children.
func (w *Preorder) SkipSubtree() {
	if len(w.stack) == 0 {
		return
	}
	top := &w.stack[len(w.stack)-1]
	top.next = len(w.tree.nodes[top.id].children)
}
