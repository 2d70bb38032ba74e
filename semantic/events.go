package semantic

import (
	"github.com/dhamidi/scry/syntax"
)

// Event is one step of the semantic event stream produced while walking a
// tree. The concrete types are ScopeStarted, ScopeEnded, DeclarationFound,
// Read, Write, UnresolvedReference and Exported.
type Event interface {
	isEvent()
}

type ScopeStarted struct {
	Scope   ScopeID
	Parent  ScopeID
	Kind    ScopeKind
	Closure bool
	Node    syntax.NodeID
}

type ScopeEnded struct {
	Scope ScopeID
	Node  syntax.NodeID
}

type DeclarationFound struct {
	Binding    BindingID
	Scope      ScopeID
	Name       string
	Kind       BindingKind
	DeclaredAs BindingKind
	Node       syntax.NodeID
}

// Read is a reference that resolved to a visible binding and reads it.
type Read struct {
	Node    syntax.NodeID
	Name    string
	Binding BindingID
	Scope   ScopeID
}

// Write is a reference that resolved to a visible binding and assigns it.
type Write struct {
	Node    syntax.NodeID
	Name    string
	Binding BindingID
	Scope   ScopeID
}

// UnresolvedReference is a reference with no visible binding, typically a
// global.
type UnresolvedReference struct {
	Node  syntax.NodeID
	Name  string
	Scope ScopeID
	Write bool
}

// Exported marks a binding as part of the module's exports. Node is the
// identifier that exports it: the declared name for `export const a` and
// `export function f`, the reference for `export { a }` and `export default a`.
type Exported struct {
	Binding BindingID
	Node    syntax.NodeID
}

func (ScopeStarted) isEvent()        {}
func (ScopeEnded) isEvent()          {}
func (DeclarationFound) isEvent()    {}
func (Read) isEvent()                {}
func (Write) isEvent()               {}
func (UnresolvedReference) isEvent() {}
func (Exported) isEvent()            {}

type shadow struct {
	name    string
	prev    BindingID
	hadPrev bool
}

type frame struct {
	scope    ScopeID
	node     syntax.NodeID
	shadowed []shadow
}

// EventExtractor turns enter and leave notifications of a preorder walk into
// semantic events. Names are resolved at the moment they are encountered
// against a single map of visible bindings; leaving a scope restores the
// entries its declarations shadowed.
type EventExtractor struct {
	frames      []frame
	visible     map[string]BindingID
	queue       []Event
	nextScope   ScopeID
	nextBinding BindingID
}

func NewEventExtractor() *EventExtractor {
	return &EventExtractor{visible: make(map[string]BindingID)}
}

// Enter processes n before its children. It returns false when the subtree
// holds no value-level names and should be skipped.
func (x *EventExtractor) Enter(n syntax.Node) bool {
	kind := n.Kind()
	if kind.IsType() {
		return false
	}
	switch {
	case kind == syntax.KindModule || kind == syntax.KindJsonRoot:
		if len(x.frames) == 0 {
			x.pushScope(n, ScopeModule, false)
		}
	case kind.IsFunction():
		x.pushScope(n, ScopeFunction, true)
	case kind == syntax.KindBlock:
		if !sharesParentScope(n) {
			x.pushScope(n, ScopeBlock, false)
		}
	case kind == syntax.KindFor, kind == syntax.KindForIn, kind == syntax.KindForOf,
		kind == syntax.KindSwitch, kind == syntax.KindCatch,
		kind == syntax.KindClassDecl, kind == syntax.KindClassExpr:
		x.pushScope(n, ScopeBlock, false)
	case kind == syntax.KindIdentifierBinding:
		x.declare(n)
	case kind == syntax.KindReferenceIdentifier:
		x.reference(n, false)
	case kind == syntax.KindIdentifierAssignment:
		x.reference(n, true)
	}
	return true
}

// Leave processes n after its children.
func (x *EventExtractor) Leave(n syntax.Node) {
	if len(x.frames) == 0 {
		return
	}
	top := x.frames[len(x.frames)-1]
	if top.node != n.ID() {
		return
	}
	for i := len(top.shadowed) - 1; i >= 0; i-- {
		s := top.shadowed[i]
		if s.hadPrev {
			x.visible[s.name] = s.prev
		} else {
			delete(x.visible, s.name)
		}
	}
	x.frames = x.frames[:len(x.frames)-1]
	x.queue = append(x.queue, ScopeEnded{Scope: top.scope, Node: top.node})
}

// Pop returns the oldest queued event.
func (x *EventExtractor) Pop() (Event, bool) {
	if len(x.queue) == 0 {
		return nil, false
	}
	ev := x.queue[0]
	x.queue = x.queue[1:]
	return ev, true
}

// sharesParentScope reports whether a block is the body of a function or a
// catch clause, whose scope it joins.
func sharesParentScope(block syntax.Node) bool {
	parent, ok := block.Parent()
	if !ok {
		return false
	}
	return parent.Kind().IsFunction() || parent.Kind() == syntax.KindCatch
}

func (x *EventExtractor) currentScope() ScopeID {
	if len(x.frames) == 0 {
		return NoScope
	}
	return x.frames[len(x.frames)-1].scope
}

func (x *EventExtractor) pushScope(n syntax.Node, kind ScopeKind, closure bool) {
	id := x.nextScope
	x.nextScope++
	x.queue = append(x.queue, ScopeStarted{
		Scope:   id,
		Parent:  x.currentScope(),
		Kind:    kind,
		Closure: closure,
		Node:    n.ID(),
	})
	x.frames = append(x.frames, frame{scope: id, node: n.ID()})
}

func (x *EventExtractor) declare(n syntax.Node) {
	if len(x.frames) == 0 {
		return
	}
	name := n.Text()
	if name == "" {
		return
	}
	kind, declaredAs := classifyBinding(n)

	// Declaration names of functions and classes belong to the enclosing
	// scope; expression names stay inside their own.
	target := len(x.frames) - 1
	if parent, ok := n.Parent(); ok && target > 0 && x.frames[target].node == parent.ID() {
		if pk := parent.Kind(); pk == syntax.KindFunctionDecl || pk == syntax.KindClassDecl {
			target--
		}
	}

	id := x.nextBinding
	x.nextBinding++
	f := &x.frames[target]
	prev, had := x.visible[name]
	f.shadowed = append(f.shadowed, shadow{name: name, prev: prev, hadPrev: had})
	x.visible[name] = id
	x.queue = append(x.queue, DeclarationFound{
		Binding:    id,
		Scope:      f.scope,
		Name:       name,
		Kind:       kind,
		DeclaredAs: declaredAs,
		Node:       n.ID(),
	})
	if exportsDeclaration(n) {
		x.queue = append(x.queue, Exported{Binding: id, Node: n.ID()})
	}
}

func (x *EventExtractor) reference(n syntax.Node, write bool) {
	name := n.Text()
	scope := x.currentScope()
	id, ok := x.visible[name]
	switch {
	case !ok:
		x.queue = append(x.queue, UnresolvedReference{Node: n.ID(), Name: name, Scope: scope, Write: write})
	case write:
		x.queue = append(x.queue, Write{Node: n.ID(), Name: name, Binding: id, Scope: scope})
	default:
		x.queue = append(x.queue, Read{Node: n.ID(), Name: name, Binding: id, Scope: scope})
	}
	if ok && !write && exportsReference(n) {
		x.queue = append(x.queue, Exported{Binding: id, Node: n.ID()})
	}
}

// exportsDeclaration reports whether a binding identifier is declared by a
// statement directly under an export, destructured names included.
func exportsDeclaration(n syntax.Node) bool {
	for cur := n; ; {
		parent, ok := cur.Parent()
		if !ok {
			return false
		}
		switch parent.Kind() {
		case syntax.KindObjectPattern, syntax.KindArrayPattern,
			syntax.KindPatternProperty, syntax.KindRestElement, syntax.KindAssignmentPattern:
		case syntax.KindVarDeclarator:
			decl, ok := parent.Parent()
			if !ok || decl.Kind() != syntax.KindVarDecl {
				return false
			}
			export, ok := decl.Parent()
			return ok && export.Kind() == syntax.KindExport
		case syntax.KindFunctionDecl, syntax.KindClassDecl:
			if cur.Kind() != syntax.KindIdentifierBinding {
				return false
			}
			export, ok := parent.Parent()
			return ok && export.Kind() == syntax.KindExport
		default:
			return false
		}
		cur = parent
	}
}

// exportsReference reports whether a reference is the local name of an
// export specifier or the operand of `export default`.
func exportsReference(n syntax.Node) bool {
	parent, ok := n.Parent()
	if !ok {
		return false
	}
	k := parent.Kind()
	return k == syntax.KindExportSpecifier || k == syntax.KindExport
}

// classifyBinding derives the binding kind from the declaration that owns
// the identifier. Identifiers nested in object or array patterns become
// destructured elements that remember the owning declaration's kind.
func classifyBinding(n syntax.Node) (kind, declaredAs BindingKind) {
	destructured := false
	result := func(k BindingKind) (BindingKind, BindingKind) {
		if destructured {
			return BindingDestructuredElement, k
		}
		return k, k
	}
	for cur := n; ; {
		parent, ok := cur.Parent()
		if !ok {
			return result(BindingLet)
		}
		switch parent.Kind() {
		case syntax.KindObjectPattern, syntax.KindArrayPattern:
			destructured = true
		case syntax.KindVarDeclarator:
			decl, ok := parent.Parent()
			if !ok {
				return result(BindingLet)
			}
			return result(declarationKind(decl))
		case syntax.KindParameter, syntax.KindParameters:
			return result(BindingParameter)
		case syntax.KindCatch:
			return result(BindingCatchParameter)
		case syntax.KindFunctionDecl, syntax.KindFunctionExpr:
			return BindingFunctionName, BindingFunctionName
		case syntax.KindClassDecl, syntax.KindClassExpr:
			return BindingClassName, BindingClassName
		case syntax.KindImportSpecifier, syntax.KindImport:
			return BindingImport, BindingImport
		}
		cur = parent
	}
}

func declarationKind(decl syntax.Node) BindingKind {
	tok, _, ok := decl.FirstToken()
	if !ok {
		return BindingLet
	}
	switch tok.Text {
	case "var":
		return BindingVar
	case "const":
		return BindingConst
	default:
		return BindingLet
	}
}
