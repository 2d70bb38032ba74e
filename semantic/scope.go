package semantic

import (
	"github.com/dhamidi/scry/source"
	"github.com/dhamidi/scry/syntax"
)

type ScopeID int32

type BindingID int32

// NoScope is the parent of the module scope. NoBinding marks an unresolved
// reference.
const (
	NoScope   ScopeID   = -1
	NoBinding BindingID = -1
)

type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is a lexical scope. Parent and child links are indices into the
// model's scope arena.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	// Node is the node that opened the scope.
	Node syntax.NodeID
	// Closure is set for function scopes, whose body may outlive the
	// enclosing scope.
	Closure  bool
	Children []ScopeID
	Bindings []BindingID
}

type BindingKind uint8

const (
	BindingLet BindingKind = iota
	BindingConst
	BindingVar
	BindingParameter
	BindingFunctionName
	BindingDestructuredElement
	BindingClassName
	BindingImport
	BindingCatchParameter
)

var bindingKindNames = [...]string{
	BindingLet:                 "let",
	BindingConst:               "const",
	BindingVar:                 "var",
	BindingParameter:           "parameter",
	BindingFunctionName:        "function",
	BindingDestructuredElement: "destructured",
	BindingClassName:           "class",
	BindingImport:              "import",
	BindingCatchParameter:      "catch",
}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "invalid"
}

// Binding is a name declared in a scope.
type Binding struct {
	ID   BindingID
	Name string
	Kind BindingKind
	// DeclaredAs is the kind of the declaration a destructured element
	// belongs to. It equals Kind for all other bindings.
	DeclaredAs BindingKind
	Scope      ScopeID
	Node       syntax.NodeID
	Span       source.Span
}

// Reference is one occurrence of an identifier that reads or writes a
// value. Binding is NoBinding when no declaration was visible.
type Reference struct {
	Node    syntax.NodeID
	Name    string
	Span    source.Span
	Scope   ScopeID
	Binding BindingID
	Write   bool
}

func (r Reference) Resolved() bool {
	return r.Binding != NoBinding
}
