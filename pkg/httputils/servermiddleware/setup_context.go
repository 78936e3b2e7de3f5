package servermiddleware

import (
	"net/http"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"
)

const (
	// HTTPHeaderNameLogLevel is the name of a HTTP header used to
	// raise the logging level of a request on the server side.
	HTTPHeaderNameLogLevel = `X-Log-Level`

	// HTTPHeaderTraceID is the name of a HTTP header used to override
	// trace IDs.
	HTTPHeaderTraceID = `X-Trace-Id`
)

// SetupContext returns a middleware which sets up an extended context
// of a request by cloning extensions (logger, metrics, ...) from obsBelt
// and setting the logging level to defaultLogLevel.
//
// The logging level could be raised (but never lowered) using the HTTP
// header "X-Log-Level" if overridableLogLevel is true.
func SetupContext(
	obsBelt *belt.Belt,
	overridableLogLevel bool,
	defaultLogLevel logger.Level,
) func(http.Handler) http.Handler {
	obsBelt = obsBelt.WithField("apiInterface", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			logLevel := defaultLogLevel

			var traceIDs belt.TraceIDs
			for _, xTraceID := range request.Header.Values(HTTPHeaderTraceID) {
				traceIDs = append(traceIDs, belt.TraceID(xTraceID))
			}
			if len(traceIDs) == 0 {
				traceIDs = belt.TraceIDs{belt.RandomTraceID()}
			}

			var (
				xLogLevel   string
				logLevelErr error
			)
			if overridableLogLevel {
				xLogLevel = request.Header.Get(HTTPHeaderNameLogLevel)
				if xLogLevel != "" {
					var newLogLevel logger.Level
					logLevelErr = newLogLevel.Set(xLogLevel)
					if logLevelErr == nil && newLogLevel > logLevel {
						logLevel = newLogLevel
					}
				}
			}

			ctx := beltctx.WithBelt(request.Context(), obsBelt)
			ctx = logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithLevel(logLevel))
			ctx = beltctx.WithTraceID(ctx, traceIDs...)

			if logLevelErr != nil {
				logger.FromCtx(ctx).Warnf("unable to parse log level '%s': %v", xLogLevel, logLevelErr)
			}

			next.ServeHTTP(response, request.WithContext(ctx))
		})
	}
}
