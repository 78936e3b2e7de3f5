// Package commands contains the plumbing shared by subcommands of gwcloudctl.
package commands

import (
	"context"

	"github.com/spf13/pflag"
)

// Command is a subcommand of a CLI tool.
type Command interface {
	// Usage returns the syntax of the positional arguments.
	Usage() string

	// Description explains what the command does (a single line).
	Description() string

	// SetupFlagSet registers the options of the command.
	SetupFlagSet(flagSet *pflag.FlagSet)

	// Execute runs the command. args are the positional arguments left
	// after parsing the options.
	Execute(ctx context.Context, cfg Config, args []string) error
}
