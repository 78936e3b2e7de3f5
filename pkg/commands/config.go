package commands

import (
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Config is the configuration common for all commands.
type Config struct {
	// IsQuiet suppresses the non-essential output.
	IsQuiet bool

	// Output is where the results are printed to.
	Output io.Writer

	// EnableColors enables coloured output.
	EnableColors bool

	// RemoteLogLevel is the log level requested from servers for
	// requests made by the command (logger.LevelUndefined to use the
	// server's default).
	RemoteLogLevel logger.Level
}
