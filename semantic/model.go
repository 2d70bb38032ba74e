// Package semantic resolves the names of a syntax tree into scopes, bindings
// and references.
//
// Build walks the tree once with an explicit stack. Scopes are opened by the
// module, by functions (parameters and body share one scope), by blocks, by
// loop heads, switch statements, catch clauses and classes. Every binding is
// visible from its declaration onward; nothing is hoisted. A reference that
// matches no visible binding is recorded as unresolved.
//
// A Model is immutable once Build returns and may be shared between
// goroutines.
package semantic

import (
	"github.com/dhamidi/scry/syntax"
)

type Model struct {
	tree       *syntax.Tree
	events     []Event
	scopes     []Scope
	bindings   []Binding
	references []Reference
	unresolved []int
	exported   []BindingID

	scopeByNode   map[syntax.NodeID]ScopeID
	bindingByNode map[syntax.NodeID]BindingID
	refByNode     map[syntax.NodeID]int
	refsByBinding map[BindingID][]int
	isExported    map[BindingID]bool
}

// Build runs the event extractor over tree and assembles the model from the
// resulting events.
func Build(tree *syntax.Tree) *Model {
	m := &Model{
		tree:          tree,
		scopeByNode:   make(map[syntax.NodeID]ScopeID),
		bindingByNode: make(map[syntax.NodeID]BindingID),
		refByNode:     make(map[syntax.NodeID]int),
		refsByBinding: make(map[BindingID][]int),
		isExported:    make(map[BindingID]bool),
	}
	x := NewEventExtractor()
	walk := tree.Preorder()
	for {
		ev, ok := walk.Next()
		if !ok {
			break
		}
		if ev.Enter {
			if !x.Enter(ev.Node) {
				walk.SkipSubtree()
			}
		} else {
			x.Leave(ev.Node)
		}
		for e, ok := x.Pop(); ok; e, ok = x.Pop() {
			m.apply(e)
		}
	}
	return m
}

func (m *Model) apply(e Event) {
	m.events = append(m.events, e)
	switch e := e.(type) {
	case ScopeStarted:
		m.scopes = append(m.scopes, Scope{
			ID:      e.Scope,
			Kind:    e.Kind,
			Parent:  e.Parent,
			Node:    e.Node,
			Closure: e.Closure,
		})
		if e.Parent != NoScope {
			parent := &m.scopes[e.Parent]
			parent.Children = append(parent.Children, e.Scope)
		}
		m.scopeByNode[e.Node] = e.Scope
	case DeclarationFound:
		m.bindings = append(m.bindings, Binding{
			ID:         e.Binding,
			Name:       e.Name,
			Kind:       e.Kind,
			DeclaredAs: e.DeclaredAs,
			Scope:      e.Scope,
			Node:       e.Node,
			Span:       m.tree.Node(e.Node).Span(),
		})
		scope := &m.scopes[e.Scope]
		scope.Bindings = append(scope.Bindings, e.Binding)
		m.bindingByNode[e.Node] = e.Binding
	case Read:
		m.addReference(e.Node, e.Name, e.Scope, e.Binding, false)
	case Write:
		m.addReference(e.Node, e.Name, e.Scope, e.Binding, true)
	case UnresolvedReference:
		m.unresolved = append(m.unresolved, len(m.references))
		m.addReference(e.Node, e.Name, e.Scope, NoBinding, e.Write)
	case Exported:
		if !m.isExported[e.Binding] {
			m.isExported[e.Binding] = true
			m.exported = append(m.exported, e.Binding)
		}
	}
}

func (m *Model) addReference(node syntax.NodeID, name string, scope ScopeID, binding BindingID, write bool) {
	idx := len(m.references)
	m.references = append(m.references, Reference{
		Node:    node,
		Name:    name,
		Span:    m.tree.Node(node).Span(),
		Scope:   scope,
		Binding: binding,
		Write:   write,
	})
	m.refByNode[node] = idx
	if binding != NoBinding {
		m.refsByBinding[binding] = append(m.refsByBinding[binding], idx)
	}
}

func (m *Model) Tree() *syntax.Tree {
	return m.tree
}

// Events returns the event stream the model was built from.
func (m *Model) Events() []Event {
	return append([]Event(nil), m.events...)
}

func (m *Model) Scopes() []Scope {
	return append([]Scope(nil), m.scopes...)
}

func (m *Model) Scope(id ScopeID) Scope {
	return m.scopes[id]
}

// GlobalScope returns the module scope.
func (m *Model) GlobalScope() Scope {
	return m.scopes[0]
}

func (m *Model) Bindings() []Binding {
	return append([]Binding(nil), m.bindings...)
}

func (m *Model) Binding(id BindingID) Binding {
	return m.bindings[id]
}

// References returns every reference in source order, unresolved ones
// included.
func (m *Model) References() []Reference {
	return append([]Reference(nil), m.references...)
}

func (m *Model) Unresolved() []Reference {
	out := make([]Reference, len(m.unresolved))
	for i, idx := range m.unresolved {
		out[i] = m.references[idx]
	}
	return out
}

// Exported returns the exported bindings in the order their exports were
// found. A binding exported twice is listed once.
func (m *Model) Exported() []BindingID {
	return append([]BindingID(nil), m.exported...)
}

func (m *Model) IsExported(id BindingID) bool {
	return m.isExported[id]
}

// ReferencesTo returns the resolved references of a binding in source order.
func (m *Model) ReferencesTo(id BindingID) []Reference {
	idxs := m.refsByBinding[id]
	out := make([]Reference, len(idxs))
	for i, idx := range idxs {
		out[i] = m.references[idx]
	}
	return out
}

// ScopeOf returns the scope opened by n, if any.
func (m *Model) ScopeOf(n syntax.Node) (ScopeID, bool) {
	id, ok := m.scopeByNode[n.ID()]
	return id, ok
}

// EnclosingScope returns the innermost scope opened by n or one of its
// ancestors.
func (m *Model) EnclosingScope(n syntax.Node) ScopeID {
	for cur, ok := n, true; ok; cur, ok = cur.Parent() {
		if id, found := m.scopeByNode[cur.ID()]; found {
			return id
		}
	}
	return NoScope
}

// BindingOf returns the binding declared by an IdentifierBinding node.
func (m *Model) BindingOf(n syntax.Node) (BindingID, bool) {
	id, ok := m.bindingByNode[n.ID()]
	return id, ok
}

// Resolve returns the binding a reference node refers to. It reports false
// for unresolved references and for nodes that are not references.
func (m *Model) Resolve(n syntax.Node) (BindingID, bool) {
	idx, ok := m.refByNode[n.ID()]
	if !ok || m.references[idx].Binding == NoBinding {
		return NoBinding, false
	}
	return m.references[idx].Binding, true
}

// IsDescendantScope reports whether scope equals ancestor or is nested
// inside it.
func (m *Model) IsDescendantScope(scope, ancestor ScopeID) bool {
	for id := scope; id != NoScope; id = m.scopes[id].Parent {
		if id == ancestor {
			return true
		}
	}
	return false
}

// ReferencesWithin returns the references located in the subtree of n, in
// source order.
func (m *Model) ReferencesWithin(n syntax.Node) []Reference {
	first, end := n.TokenRange()
	var out []Reference
	for _, ref := range m.references {
		tokFirst, _ := m.tree.Node(ref.Node).TokenRange()
		if tokFirst >= first && tokFirst < end {
			out = append(out, ref)
		}
	}
	return out
}
