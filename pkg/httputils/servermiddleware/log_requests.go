package servermiddleware

import (
	"net/http"
	"time"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/pkg/field"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/experimental/tracer"
	"github.com/facebookincubator/go-belt/tool/logger"
)

type loggingResponseWriter struct {
	Backend http.ResponseWriter

	WriteLength int
	StatusCode  int
}

var _ http.ResponseWriter = (*loggingResponseWriter)(nil)

func (w *loggingResponseWriter) Header() http.Header {
	return w.Backend.Header()
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.StatusCode == 0 {
		w.StatusCode = http.StatusOK
	}
	n, err := w.Backend.Write(b)
	w.WriteLength += n
	return n, err
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	if w.StatusCode == 0 {
		w.StatusCode = statusCode
	}
	w.Backend.WriteHeader(statusCode)
}

// LogRequests logs and traces requests, and counts the total amount of
// requests and the amount of concurrent requests.
//
// The request parameters (query and form) are parsed and logged at the
// Debug level; handlers may use request.Form afterwards.
//
// Should be executed only after SetupContext.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(_response http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		metrics.FromCtx(ctx).Count("requests").Add(1)

		concurrentRequests := metrics.FromCtx(ctx).Gauge("concurrentRequests")
		concurrentRequests.Add(1)
		defer concurrentRequests.Add(-1)

		log := logger.FromCtx(ctx)
		if err := request.ParseForm(); err != nil {
			log.Warnf("unable to parse the request parameters: %v", err)
		}
		log.WithFields(
			field.Prefix("param_", field.Map[[]string](request.Form)),
		).Debugf("%s %s", request.Method, request.URL.Path)

		startTime := time.Now()
		response := &loggingResponseWriter{Backend: _response}
		defer func() {
			ctx := beltctx.WithFields(ctx, field.Map[any]{
				"totalNs":              time.Since(startTime).Nanoseconds(),
				"response_status_code": response.StatusCode,
				"response_length":      response.WriteLength,
			})
			logger.FromCtx(ctx).Debug("request result")
		}()

		span, ctx := tracer.StartChildSpanFromCtx(ctx, "requestTotal")
		defer span.Finish()

		next.ServeHTTP(response, request.WithContext(ctx))
	})
}
