package lint

import (
	"sort"
)

// HookShape describes where a hook takes its callback and its dependency
// list. Indices are zero-based argument positions.
type HookShape struct {
	CallbackIndex     int
	DependenciesIndex int
	// HasDependencies is false for hooks that take no dependency list;
	// every capture of their callback is then reported.
	HasDependencies bool
}

// HookTable maps hook names to their shapes. The zero value is an empty
// table; a table is never modified after construction.
type HookTable struct {
	shapes map[string]HookShape
}

func NewHookTable(shapes map[string]HookShape) HookTable {
	t := HookTable{shapes: make(map[string]HookShape, len(shapes))}
	for name, shape := range shapes {
		t.shapes[name] = shape
	}
	return t
}

// DefaultHooks returns the React hooks recognized out of the box.
func DefaultHooks() HookTable {
	effect := HookShape{CallbackIndex: 0, DependenciesIndex: 1, HasDependencies: true}
	return NewHookTable(map[string]HookShape{
		"useEffect":           effect,
		"useLayoutEffect":     effect,
		"useInsertionEffect":  effect,
		"useCallback":         effect,
		"useMemo":             effect,
		"useImperativeHandle": {CallbackIndex: 1, DependenciesIndex: 2, HasDependencies: true},
	})
}

func (t HookTable) Lookup(name string) (HookShape, bool) {
	shape, ok := t.shapes[name]
	return shape, ok
}

// With returns a copy of t with name mapped to shape.
func (t HookTable) With(name string, shape HookShape) HookTable {
	out := NewHookTable(t.shapes)
	out.shapes[name] = shape
	return out
}

func (t HookTable) Len() int {
	return len(t.shapes)
}

// Names returns the hook names in sorted order.
func (t HookTable) Names() []string {
	names := make([]string, 0, len(t.shapes))
	for name := range t.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
