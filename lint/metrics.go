package lint

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhamidi/scry/diagnostic"
)

var (
	tracer = otel.Tracer("scry.lint")
	meter  = otel.Meter("scry.lint")
)

var (
	runDuration      metric.Float64Histogram
	runsTotal        metric.Int64Counter
	diagnosticsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call from every run.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runDuration, err = meter.Float64Histogram(
			"scry_lint_duration_seconds",
			metric.WithDescription("Duration of lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runsTotal, err = meter.Int64Counter(
			"scry_lint_runs_total",
			metric.WithDescription("Total number of lint runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"scry_lint_diagnostics_total",
			metric.WithDescription("Total number of diagnostics reported, by severity"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func startRunSpan(ctx context.Context, path, mode string, rules int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Runner.Run",
		trace.WithAttributes(
			attribute.String("lint.path", path),
			attribute.String("lint.mode", mode),
			attribute.Int("lint.rules", rules),
		),
	)
}

func startRuleSpan(ctx context.Context, rule string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Rule.Run",
		trace.WithAttributes(attribute.String("lint.rule", rule)),
	)
}

func recordRunMetrics(ctx context.Context, mode string, duration time.Duration, diags []diagnostic.Diagnostic, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("success", success),
	)
	runDuration.Record(ctx, duration.Seconds(), attrs)
	runsTotal.Add(ctx, 1, attrs)

	for _, severity := range []diagnostic.Severity{diagnostic.Error, diagnostic.Warning, diagnostic.Information, diagnostic.Hint} {
		if n := diagnostic.Count(diags, severity); n > 0 {
			diagnosticsTotal.Add(ctx, int64(n), metric.WithAttributes(
				attribute.String("mode", mode),
				attribute.String("severity", severity.String()),
			))
		}
	}
}
