package check

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/helpers"
	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/commands"
	"github.com/immune-gmbh/gwcloud/pkg/resolver"
)

// ExitCodeProblems is the exit code used when the catalog is syntactically
// valid, but some models could never be served.
const ExitCodeProblems = 1

// Command is the implementation of `commands.Command`.
type Command struct{}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<catalog URL or path>"
}

// Description explains what this command does
func (cmd Command) Description() string {
	return "parse a firmware catalog and report problems"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flagSet *pflag.FlagSet) {}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one argument, but got %d", len(args))}
	}

	src, err := helpers.CatalogSource(args[0])
	if err != nil {
		return commands.ErrArgs{Err: err}
	}
	defer src.Close()

	c, err := src.Load(ctx)
	if err != nil {
		return err
	}

	problems := 0
	w := cfg.Output
	fmt.Fprintf(w, "urlbase %s\n", c.URLBase)
	for _, modelName := range c.ModelNames() {
		problems += printModel(cfg, c, c.Models[modelName])
	}
	if problems > 0 {
		return commands.ErrExitCode{
			Err:  fmt.Errorf("the catalog has %d problem(s)", problems),
			Code: ExitCodeProblems,
		}
	}
	if !cfg.IsQuiet {
		helpers.Fprintf(w, cfg.EnableColors, color.FgGreen, "OK\n")
	}
	return nil
}

func printModel(cfg commands.Config, c *catalog.Catalog, entry *catalog.ModelEntry) int {
	w := cfg.Output
	fmt.Fprintf(w, "model %s\n", entry.Name)

	problems := 0
	latest, ok := resolver.Latest(entry)
	if !ok {
		helpers.Fprintf(w, cfg.EnableColors, color.FgRed, "    no firmware\n")
		problems++
	}
	for _, version := range entry.Versions() {
		record := entry.Firmware[version]
		mark := ""
		if ok && version == latest.Version {
			mark = " (latest)"
		}
		fmt.Fprintf(w, "    firmware %s%s\n", version, mark)
		if !cfg.IsQuiet {
			fmt.Fprintf(w, "        %s\n", c.FileURL(record.File1))
			if record.HasFile2() {
				fmt.Fprintf(w, "        %s\n", c.FileURL(record.File2))
			}
		}
	}

	for _, key := range sortedOverrideKeys(entry) {
		version := entry.Overrides[key]
		target := "for " + key
		if key == catalog.DefaultOverrideKey {
			target = "(default)"
		}
		if _, exists := entry.Firmware[version]; !exists {
			helpers.Fprintf(w, cfg.EnableColors, color.FgRed, "    want %s %s: no such firmware\n", version, target)
			problems++
			continue
		}
		helpers.Fprintf(w, cfg.EnableColors, color.FgYellow, "    want %s %s\n", version, target)
	}
	return problems
}
