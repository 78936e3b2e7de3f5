package servermiddleware

import (
	"net/http"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/pkg/field"
)

// LogRemoteAddr adds the client address and the requested host to the
// logging fields of the request. Gateways resolve several vendor host
// names to this server, the host tells which one was used.
//
// Should be executed only after SetupContext.
func LogRemoteAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		host := request.Host
		if host == "" {
			host = "<notset>"
		}
		ctx := beltctx.WithFields(request.Context(), field.Map[string]{
			"remote_addr": request.RemoteAddr,
			"http_host":   host,
		})
		next.ServeHTTP(response, request.WithContext(ctx))
	})
}
