package servermiddleware

import (
	"net/http"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// Default returns the recommended middleware chain for a server (to be
// passed to chi.Router.Use): it sets up a logger and an extended context,
// reads TraceID if it was passed, recovers panics and logs requests.
//
// For description of arguments see SetupContext.
func Default(
	belt *belt.Belt,
	overridableLogLevel bool,
	defaultLogLevel logger.Level,
) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SetupContext(belt, overridableLogLevel, defaultLogLevel),
		RecoverPanic,
		LogRemoteAddr,
		LogRequests,
	}
}
