// Package observability sets up logging, metrics, tracing and error
// monitoring (the go-belt "tool belt") of gwcloud applications.
package observability

import (
	"context"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/experimental/tracer"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// WithBelt returns a context derivative with the observability tool belt.
// Logs are written to stderr.
//
// traceIDPrefix (if not empty) is prepended to the random trace ID of the
// process. If setAsDefault is true, the tools are also installed as the
// go-belt defaults (used by code which has no context at hand).
func WithBelt(
	ctx context.Context,
	logLevel logger.Level,
	traceIDPrefix string,
	setAsDefault bool,
) context.Context {
	ctx = logger.CtxWithLogger(ctx, NewLogger(os.Stderr).WithLevel(logLevel))
	ctx = metrics.CtxWithMetrics(ctx, NewMetrics())
	ctx = errmon.CtxWithErrorMonitor(ctx, NewErrorMonitor(logger.FromCtx(ctx)))
	ctx = tracer.CtxWithTracer(ctx, NewTracer(ctx))
	ctx = beltctx.WithFields(ctx, DefaultFields())

	traceID := belt.RandomTraceID()
	if traceIDPrefix != "" {
		traceID = belt.TraceID(traceIDPrefix+":") + traceID
	}
	ctx = beltctx.WithTraceID(ctx, traceID)

	if setAsDefault {
		setToolsAsDefault(beltctx.Belt(ctx))
	}
	return ctx
}

func setToolsAsDefault(b *belt.Belt) {
	belt.Default = func() *belt.Belt {
		return b
	}
	l := logger.FromBelt(b)
	logger.Default = func() logger.Logger {
		return l
	}
	m := metrics.FromBelt(b)
	metrics.Default = func() metrics.Metrics {
		return m
	}
	t := tracer.FromBelt(b)
	tracer.Default = func() tracer.Tracer {
		return t
	}
	e := errmon.FromBelt(b)
	errmon.Default = func(*belt.Belt) errmon.ErrorMonitor {
		return e
	}
}
