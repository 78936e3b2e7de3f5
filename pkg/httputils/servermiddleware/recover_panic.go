package servermiddleware

import (
	"net/http"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
)

// RecoverPanic recovers panics, reports them through the error monitor
// of the request context and replies with 500.
//
// Should be executed only after SetupContext.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		defer func() {
			if event := errmon.ObserveRecoverCtx(request.Context(), recover()); event != nil {
				http.Error(response, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(response, request)
	})
}
