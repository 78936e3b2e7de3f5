// Package clienthelpers contains helpers for HTTP clients of gwcloud
// servers (and of servers which accept the same headers).
package clienthelpers

import (
	"net/http"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/gwcloud/pkg/httputils/servermiddleware"
)

// HTTPHeaders returns the headers which pass the trace IDs of the belt and
// (unless it is logger.LevelUndefined) the log level to be used by the
// server for the request.
func HTTPHeaders(b *belt.Belt, remoteLogLevel logger.Level) http.Header {
	result := http.Header{}
	for _, traceID := range b.TraceIDs() {
		result.Add(servermiddleware.HTTPHeaderTraceID, string(traceID))
	}
	if remoteLogLevel != logger.LevelUndefined {
		result.Set(servermiddleware.HTTPHeaderNameLogLevel, remoteLogLevel.String())
	}
	return result
}

// SetHeaders adds HTTPHeaders of the belt of the request context to the request.
func SetHeaders(req *http.Request, remoteLogLevel logger.Level) {
	for key, values := range HTTPHeaders(beltctx.Belt(req.Context()), remoteLogLevel) {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
}
