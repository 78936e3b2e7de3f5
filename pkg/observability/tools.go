package observability

import (
	"context"
	"io"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	errmonlogger "github.com/facebookincubator/go-belt/tool/experimental/errmon/implementation/logger"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/experimental/tracer"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"

	"github.com/immune-gmbh/gwcloud/pkg/observability/tool/logger/logrus/formatter"
)

// NewLogger returns the default Logger of gwcloud applications, it
// writes compact text lines to out.
func NewLogger(out io.Writer) logger.Logger {
	l := logrus.DefaultLogrusLogger()
	l.SetOutput(out)
	l.Formatter = &formatter.CompactText{}
	return logrus.New(l).WithLevel(logger.LevelTrace)
}

// NewErrorMonitor returns the default ErrorMonitor, it reports errors
// and panics through the logger.
func NewErrorMonitor(l logger.Logger) errmon.ErrorMonitor {
	return errmonlogger.New(l)
}

// NewMetrics returns the default Metrics handler.
func NewMetrics() metrics.Metrics {
	return metrics.Default()
}

// NewTracer returns the default Tracer.
func NewTracer(ctx context.Context) tracer.Tracer {
	return tracer.Default()
}
