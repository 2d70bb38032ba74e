// Package lint runs semantic rules over parsed trees.
//
// A Rule receives a read-only Context holding the tree and its semantic
// model and returns diagnostics. Rules never mutate the context, so a Runner
// executes them concurrently over one tree and merges their output in
// source order.
package lint

import (
	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/semantic"
	"github.com/dhamidi/scry/syntax"
)

// Context is the input of a single rule invocation.
type Context struct {
	Tree  *syntax.Tree
	Model *semantic.Model
	Path  string
}

type Rule interface {
	// Name returns the rule identifier used as Diagnostic.Rule.
	Name() string
	Run(c *Context) []diagnostic.Diagnostic
}
