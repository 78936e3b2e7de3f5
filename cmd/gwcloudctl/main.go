// gwcloudctl is the command line tool to maintain firmware catalogs and to
// query gwcloudd servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/facebookincubator/go-belt/tool/experimental/tracer"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/commands/check"
	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/commands/device"
	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/commands/query"
	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/commands/resolve"
	"github.com/immune-gmbh/gwcloud/pkg/commands"
	"github.com/immune-gmbh/gwcloud/pkg/observability"
)

const toolName = "gwcloudctl"

var (
	knownCommands = map[string]commands.Command{
		"check":   &check.Command{},
		"device":  &device.Command{},
		"query":   &query.Command{},
		"resolve": &resolve.Command{},
	}
	exitCode = 0
)

type flags struct {
	isQuiet            *bool
	noColor            *bool
	loggingLevel       logger.Level
	remoteLoggingLevel logger.Level
	tracePrefix        *string
}

func setupFlag(stderr io.Writer) (*pflag.FlagSet, *flags) {
	var f flags

	flagSet := pflag.NewFlagSet(toolName, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "syntax: %s [options] <command> [command options] {arguments}\n", toolName)
		fmt.Fprintf(stderr, "\nPossible commands:\n")

		var commandList []string
		for commandName := range knownCommands {
			commandList = append(commandList, commandName)
		}
		sort.Strings(commandList)

		for _, commandName := range commandList {
			command := knownCommands[commandName]
			fmt.Fprintf(stderr, "    %s %-36s %s\n", toolName,
				fmt.Sprintf("%s %s", commandName, command.Usage()), command.Description())
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		flagSet.PrintDefaults()
	}

	f.loggingLevel = logger.LevelWarning
	commands.LogLevelVar(flagSet, &f.loggingLevel, "log-level", "logging level")
	f.remoteLoggingLevel = logger.LevelUndefined
	commands.LogLevelVar(flagSet, &f.remoteLoggingLevel, "remote-log-level", "logging level used by the server to process the request")
	f.isQuiet = flagSet.Bool("quiet", false, "print only the essential output")
	f.noColor = flagSet.Bool("no-color", false, "disable coloured output")
	f.tracePrefix = flagSet.String("trace-prefix", "", "prepend traceID with this value")
	return flagSet, &f
}

func main() {
	ctx, endFunc := context.WithCancel(context.Background())
	defer func() {
		// os.Exit skips deferred calls, so it has to be the last one.
		if event := errmon.ObserveRecoverCtx(ctx, recover()); event != nil {
			endFunc()
			beltctx.Flush(ctx)
			panic(event.PanicValue)
		}

		logger.FromCtx(ctx).Debugf("exitcode is %d", exitCode)
		endFunc()
		beltctx.Flush(ctx)
		os.Exit(exitCode)
	}()

	exitCode = run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flagSet, flags := setupFlag(stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2 // the standard Go's exit-code on invalid flags
	}

	if flagSet.NArg() < 1 {
		fmt.Fprintf(stderr, "error: no command specified\n\n")
		flagSet.Usage()
		return 2
	}

	ctx = observability.WithBelt(ctx, flags.loggingLevel, *flags.tracePrefix, true)

	commandName := flagSet.Arg(0)
	command := knownCommands[commandName]
	if command == nil {
		fmt.Fprintf(stderr, "error: unknown command '%s'\n\n", commandName)
		flagSet.Usage()
		return 2
	}

	span, ctx := tracer.StartChildSpanFromCtx(ctx, commandName)
	defer span.Finish()

	cmdFlagSet := pflag.NewFlagSet(commandName, pflag.ContinueOnError)
	cmdFlagSet.SetOutput(stderr)
	cmdFlagSet.Usage = func() {
		fmt.Fprintf(stderr, "syntax: %s %s [options] %s\n\nOptions:\n", toolName, commandName, command.Usage())
		cmdFlagSet.PrintDefaults()
	}
	command.SetupFlagSet(cmdFlagSet)
	if err := cmdFlagSet.Parse(flagSet.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := commands.Config{
		IsQuiet:        *flags.isQuiet,
		Output:         stdout,
		EnableColors:   !*flags.noColor && !color.NoColor,
		RemoteLogLevel: flags.remoteLoggingLevel,
	}
	logger.FromCtx(ctx).Debugf("cmd: '%s'; args: %v", commandName, cmdFlagSet.Args())

	err := command.Execute(ctx, cfg, cmdFlagSet.Args())
	if err == nil {
		return 0
	}

	return handleError(stderr, cmdFlagSet, err)
}

func handleError(stderr io.Writer, flagSet *pflag.FlagSet, err error) int {
	code := 3
	isSilentError := false
	nestedErr := err
loop:
	for nestedErr != nil {
		switch nestedErr := nestedErr.(type) {
		case commands.ErrArgs:
			fmt.Fprintf(stderr, "error: %v\n\n", nestedErr)
			flagSet.Usage()
			return 2
		case commands.SilentError:
			isSilentError = true
		case commands.ExitCoder:
			code = nestedErr.ExitCode()
			break loop
		}
		nestedErr = errors.Unwrap(nestedErr)
	}
	if !isSilentError {
		fmt.Fprintf(stderr, "%v\n", err)
	}
	return code
}
