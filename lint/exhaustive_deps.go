package lint

import (
	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/source"
	"github.com/dhamidi/scry/syntax"
)

const ExhaustiveDependenciesName = "lint/correctness/useExhaustiveDependencies"

const (
	missingDependenciesMessage = "This hook does not specify all of its dependencies."
	missingDependencyLabel     = "this dependency is not specified in the hook dependency list"
)

type ExhaustiveDependenciesOptions struct {
	// Hooks lists the recognized hooks. A zero table selects DefaultHooks.
	Hooks    HookTable
	Severity diagnostic.Severity
	// IgnoreModuleBindings drops captures of bindings declared at the top
	// level of the module.
	IgnoreModuleBindings bool
}

func DefaultExhaustiveDependenciesOptions() ExhaustiveDependenciesOptions {
	return ExhaustiveDependenciesOptions{
		Hooks:    DefaultHooks(),
		Severity: diagnostic.Error,
	}
}

// ExhaustiveDependencies reports hook callbacks that capture outer bindings
// missing from the hook's dependency list. Every missing occurrence gets its
// own secondary label.
type ExhaustiveDependencies struct {
	opts ExhaustiveDependenciesOptions
}

func NewExhaustiveDependencies(opts ExhaustiveDependenciesOptions) *ExhaustiveDependencies {
	if opts.Hooks.shapes == nil {
		opts.Hooks = DefaultHooks()
	}
	return &ExhaustiveDependencies{opts: opts}
}

func (r *ExhaustiveDependencies) Name() string {
	return ExhaustiveDependenciesName
}

func (r *ExhaustiveDependencies) Options() ExhaustiveDependenciesOptions {
	return r.opts
}

func (r *ExhaustiveDependencies) Run(c *Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, call := range c.Tree.Descendants(c.Tree.Root(), syntax.KindCall) {
		if d, ok := r.checkCall(c, call); ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *ExhaustiveDependencies) checkCall(c *Context, call syntax.Node) (diagnostic.Diagnostic, bool) {
	name, ok := hookName(call)
	if !ok {
		return diagnostic.Diagnostic{}, false
	}
	shape, ok := r.opts.Hooks.Lookup(name.Text())
	if !ok {
		return diagnostic.Diagnostic{}, false
	}
	args := arguments(call)
	callback, ok := argumentAt(args, shape.CallbackIndex)
	if !ok || (callback.Kind() != syntax.KindArrowFunction && callback.Kind() != syntax.KindFunctionExpr) {
		return diagnostic.Diagnostic{}, false
	}
	scope, ok := c.Model.ScopeOf(callback)
	if !ok {
		return diagnostic.Diagnostic{}, false
	}

	var declared map[string]bool
	if shape.HasDependencies {
		if deps, ok := argumentAt(args, shape.DependenciesIndex); ok {
			if deps.Kind() != syntax.KindArray {
				return diagnostic.Diagnostic{}, false
			}
			declared = dependencyNames(deps)
		}
	}

	module := c.Model.GlobalScope().ID
	var labels []diagnostic.Label
	for _, ref := range c.Model.ReferencesWithin(callback) {
		if !ref.Resolved() {
			continue
		}
		binding := c.Model.Binding(ref.Binding)
		if c.Model.IsDescendantScope(binding.Scope, scope) {
			continue
		}
		if r.opts.IgnoreModuleBindings && binding.Scope == module {
			continue
		}
		if declared[ref.Name] {
			continue
		}
		labels = append(labels, diagnostic.Label{
			Span:    captureSpan(c.Tree.Node(ref.Node)),
			Message: missingDependencyLabel,
		})
	}
	if len(labels) == 0 {
		return diagnostic.Diagnostic{}, false
	}
	d := diagnostic.New(r.Name(), r.opts.Severity, name.Span(), missingDependenciesMessage)
	d.Secondary = labels
	return d, true
}

// hookName returns the node naming the called function: the callee itself
// when it is a plain identifier, or the property of a static member access.
func hookName(call syntax.Node) (syntax.Node, bool) {
	children := call.ChildNodes()
	if len(children) == 0 {
		return syntax.Node{}, false
	}
	callee := children[0]
	switch callee.Kind() {
	case syntax.KindReferenceIdentifier:
		return callee, true
	case syntax.KindMember:
		return callee.Child(syntax.KindMemberName)
	}
	return syntax.Node{}, false
}

func arguments(call syntax.Node) []syntax.Node {
	list, ok := call.Child(syntax.KindArguments)
	if !ok {
		return nil
	}
	var args []syntax.Node
	for _, n := range list.ChildNodes() {
		if n.Kind() != syntax.KindBogus {
			args = append(args, n)
		}
	}
	return args
}

func argumentAt(args []syntax.Node, i int) (syntax.Node, bool) {
	if i < 0 || i >= len(args) {
		return syntax.Node{}, false
	}
	return args[i], true
}

// dependencyNames collects the identifiers listed in a dependency array.
// A member chain contributes its root identifier.
func dependencyNames(deps syntax.Node) map[string]bool {
	names := make(map[string]bool)
	for _, el := range deps.ChildNodes() {
		if root, ok := chainRoot(el); ok {
			names[root.Text()] = true
		}
	}
	return names
}

func chainRoot(n syntax.Node) (syntax.Node, bool) {
	for n.Kind() == syntax.KindMember {
		children := n.ChildNodes()
		if len(children) == 0 {
			return syntax.Node{}, false
		}
		n = children[0]
	}
	return n, n.Kind() == syntax.KindReferenceIdentifier
}

// captureSpan extends a reference to the static member chain it starts, so
// `a.b.c` is reported as a whole.
func captureSpan(ref syntax.Node) source.Span {
	cur := ref
	for {
		parent, ok := cur.Parent()
		if !ok || parent.Kind() != syntax.KindMember {
			break
		}
		if first := parent.ChildNodes(); len(first) == 0 || first[0].ID() != cur.ID() {
			break
		}
		cur = parent
	}
	return cur.Span()
}
