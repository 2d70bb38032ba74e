package lint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/semantic"
	"github.com/dhamidi/scry/syntax"
)

// ErrRuleFailed wraps a panic raised by a rule. The rest of the run is
// discarded.
var ErrRuleFailed = errors.New("lint rule failed")

var log = commonlog.GetLogger("scry.lint")

// Runner executes a fixed set of rules over one tree at a time. It holds no
// per-run state and is safe for concurrent use.
type Runner struct {
	rules       []Rule
	maxDepth    int
	concurrency int
}

type Option func(*Runner)

// WithMaxDepth sets the nesting limit used when Lint parses source text.
func WithMaxDepth(depth int) Option {
	return func(r *Runner) {
		r.maxDepth = depth
	}
}

// WithConcurrency bounds how many rules run at once. Zero or less means
// unbounded.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

func NewRunner(rules []Rule, opts ...Option) *Runner {
	r := &Runner{
		rules:    append([]Rule(nil), rules...),
		maxDepth: syntax.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Result is the outcome of linting one source text.
type Result struct {
	Path        string
	Tree        *syntax.Tree
	Diagnostics []diagnostic.Diagnostic
	Duration    time.Duration
}

// Lint parses src in mode and runs every rule over the tree. The returned
// diagnostics hold parse and rule diagnostics in source order.
func (r *Runner) Lint(ctx context.Context, path string, src []byte, mode syntax.Mode) (*Result, error) {
	start := time.Now()
	tree, parseDiags := syntax.Parse(src, syntax.WithMode(mode), syntax.WithMaxDepth(r.maxDepth))
	ruleDiags, err := r.Run(ctx, path, tree)
	if err != nil {
		return nil, err
	}
	diags := append(parseDiags, ruleDiags...)
	diagnostic.Sort(diags)
	return &Result{
		Path:        path,
		Tree:        tree,
		Diagnostics: diags,
		Duration:    time.Since(start),
	}, nil
}

// Run builds the semantic model of tree once and runs all rules over it
// concurrently. Diagnostics are merged and sorted by position.
func (r *Runner) Run(ctx context.Context, path string, tree *syntax.Tree) ([]diagnostic.Diagnostic, error) {
	mode := tree.Mode().String()
	ctx, span := startRunSpan(ctx, path, mode, len(r.rules))
	defer span.End()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordRunMetrics(ctx, mode, time.Since(start), nil, false)
		return nil, err
	}

	c := &Context{Tree: tree, Model: semantic.Build(tree), Path: path}
	results := make([][]diagnostic.Diagnostic, len(r.rules))

	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, rule := range r.rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			diags, err := runRule(gctx, rule, c)
			results[i] = diags
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordRunMetrics(ctx, mode, time.Since(start), nil, false)
		log.Errorf("lint %s: %s", path, err)
		return nil, err
	}

	var out []diagnostic.Diagnostic
	for _, diags := range results {
		out = append(out, diags...)
	}
	diagnostic.Sort(out)

	span.SetAttributes(attribute.Int("lint.diagnostics", len(out)))
	recordRunMetrics(ctx, mode, time.Since(start), out, true)
	log.Debugf("lint %s: %d rules, %d diagnostics in %s", path, len(r.rules), len(out), time.Since(start))
	return out, nil
}

func runRule(ctx context.Context, rule Rule, c *Context) (diags []diagnostic.Diagnostic, err error) {
	_, span := startRuleSpan(ctx, rule.Name())
	defer span.End()
	defer func() {
		if p := recover(); p != nil {
			diags = nil
			err = fmt.Errorf("%w: %s: %v", ErrRuleFailed, rule.Name(), p)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	diags = rule.Run(c)
	span.SetAttributes(attribute.Int("lint.diagnostics", len(diags)))
	return diags, nil
}
