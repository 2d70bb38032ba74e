package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/scry/source"
	"github.com/dhamidi/scry/syntax"
)

// TreeJSONEncoder writes a syntax tree as nested JSON. Nodes list their
// children in order; tokens carry their text and, when enabled, their
// trivia, so the document holds the whole source.
type TreeJSONEncoder struct {
	w      io.Writer
	trivia bool
	indent bool
}

type TreeOption func(*TreeJSONEncoder)

// WithTrivia includes leading and trailing trivia of every token.
func WithTrivia() TreeOption {
	return func(e *TreeJSONEncoder) {
		e.trivia = true
	}
}

func WithIndent() TreeOption {
	return func(e *TreeJSONEncoder) {
		e.indent = true
	}
}

func NewTreeJSONEncoder(w io.Writer, opts ...TreeOption) *TreeJSONEncoder {
	e := &TreeJSONEncoder{w: w}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TreeJSONEncoder) Encode(tree *syntax.Tree) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *TreeJSONEncoder) MarshalText(tree *syntax.Tree) ([]byte, error) {
	doc := treeJSON{
		Mode: tree.Mode().String(),
		Root: e.build(tree),
		EOF:  e.token(tree, syntax.TokenID(tree.TokenCount()-1)),
	}
	if e.indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

type treeJSON struct {
	Mode string           `json:"mode"`
	Root *treeJSONElement `json:"root"`
	EOF  *treeJSONElement `json:"eof"`
}

type treeJSONElement struct {
	Element  string             `json:"element"`
	Kind     string             `json:"kind,omitempty"`
	Span     *treeJSONSpan      `json:"span,omitempty"`
	Text     string             `json:"text,omitempty"`
	Expected string             `json:"expected,omitempty"`
	Leading  []treeJSONTrivia   `json:"leading,omitempty"`
	Trailing []treeJSONTrivia   `json:"trailing,omitempty"`
	Children []*treeJSONElement `json:"children,omitempty"`
}

type treeJSONSpan struct {
	Start treeJSONPosition `json:"start"`
	End   treeJSONPosition `json:"end"`
}

type treeJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type treeJSONTrivia struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// build converts the tree with the preorder walk. Child nodes get their
// element allocated when the parent is entered and filled in when the walk
// reaches them.
func (e *TreeJSONEncoder) build(tree *syntax.Tree) *treeJSONElement {
	root := &treeJSONElement{}
	pending := map[syntax.NodeID]*treeJSONElement{tree.Root().ID(): root}
	walk := tree.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if !ev.Enter {
			continue
		}
		n := ev.Node
		el := pending[n.ID()]
		delete(pending, n.ID())
		el.Element = syntax.ElementNode.String()
		el.Kind = n.Kind().String()
		el.Span = jsonSpan(n.Span())
		for _, child := range n.Children() {
			switch child.Kind() {
			case syntax.ElementNode:
				c, _ := child.Node()
				placeholder := &treeJSONElement{}
				pending[c.ID()] = placeholder
				el.Children = append(el.Children, placeholder)
			case syntax.ElementToken:
				id, _ := child.TokenID()
				el.Children = append(el.Children, e.token(tree, id))
			case syntax.ElementMissing:
				el.Children = append(el.Children, &treeJSONElement{
					Element:  syntax.ElementMissing.String(),
					Expected: child.Expected(),
				})
			}
		}
	}
	return root
}

func (e *TreeJSONEncoder) token(tree *syntax.Tree, id syntax.TokenID) *treeJSONElement {
	tok := tree.Token(id)
	el := &treeJSONElement{
		Element: syntax.ElementToken.String(),
		Kind:    tok.Kind.String(),
		Span:    jsonSpan(tree.TokenSpan(id)),
		Text:    tok.Text,
	}
	if e.trivia {
		el.Leading = jsonTrivia(tok.Leading)
		el.Trailing = jsonTrivia(tok.Trailing)
	}
	return el
}

func jsonSpan(s source.Span) *treeJSONSpan {
	return &treeJSONSpan{
		Start: treeJSONPosition{Offset: s.Start.Offset, Line: s.Start.Line, Column: s.Start.Column},
		End:   treeJSONPosition{Offset: s.End.Offset, Line: s.End.Line, Column: s.End.Column},
	}
}

func jsonTrivia(trivia []syntax.Trivia) []treeJSONTrivia {
	if len(trivia) == 0 {
		return nil
	}
	out := make([]treeJSONTrivia, len(trivia))
	for i, t := range trivia {
		out[i] = treeJSONTrivia{Kind: t.Kind.String(), Text: t.Text}
	}
	return out
}
