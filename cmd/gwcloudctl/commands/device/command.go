package device

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/helpers"
	"github.com/immune-gmbh/gwcloud/pkg/catalog"
	"github.com/immune-gmbh/gwcloud/pkg/commands"
	"github.com/immune-gmbh/gwcloud/pkg/fwversion"
	"github.com/immune-gmbh/gwcloud/pkg/lanapi"
	"github.com/immune-gmbh/gwcloud/pkg/resolver"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	host       *string
	port       *uint16
	timeout    *time.Duration
	catalogURL *string
	model      *string
	update     *bool
	force      *bool
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "[file1 [file2]]"
}

// Description explains what this command does
func (cmd Command) Description() string {
	return "read the MAC address and the firmware version of a gateway in the LAN, optionally update it"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flagSet *pflag.FlagSet) {
	cmd.host = flagSet.String("host", "", "the IPv4 address or the host name of the gateway")
	cmd.port = flagSet.Uint16("port", lanapi.DefaultPort, "the LAN API port of the gateway")
	cmd.timeout = flagSet.Duration("timeout", 5*time.Second, "the timeout of a single request to the gateway")
	cmd.catalogURL = flagSet.String("catalog", "", "the catalog URL or path to resolve the firmware the gateway should run")
	cmd.model = flagSet.String("model", "", "the model to use instead of the one from the firmware version string, e.g. 'GW1100A'")
	cmd.update = flagSet.Bool("update", false, "push the given files (or the firmware resolved with --catalog) to the gateway")
	cmd.force = flagSet.Bool("force", false, "with --update: push the resolved firmware even if the gateway already runs it")
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if *cmd.host == "" {
		return commands.ErrArgs{Err: fmt.Errorf("--host is required")}
	}
	if len(args) > 2 {
		return commands.ErrArgs{Err: fmt.Errorf("expected at most two arguments, but got %d", len(args))}
	}
	if len(args) > 0 && !*cmd.update {
		return commands.ErrArgs{Err: fmt.Errorf("firmware files are accepted only with --update")}
	}
	if *cmd.update && len(args) == 0 && *cmd.catalogURL == "" {
		return commands.ErrArgs{Err: fmt.Errorf("--update requires firmware files or --catalog")}
	}

	address := net.JoinHostPort(*cmd.host, strconv.Itoa(int(*cmd.port)))
	dialCtx, cancelFn := context.WithTimeout(ctx, *cmd.timeout)
	client, err := lanapi.Dial(dialCtx, address)
	cancelFn()
	if err != nil {
		return err
	}
	defer client.Close()
	client.Timeout = *cmd.timeout

	mac, err := client.ReadStationMAC(ctx)
	if err != nil {
		return fmt.Errorf("unable to read the MAC address: %w", err)
	}
	rawVersion, err := client.ReadFirmwareVersion(ctx)
	if err != nil {
		return fmt.Errorf("unable to read the firmware version: %w", err)
	}
	model, version := lanapi.ParseFirmwareVersion(rawVersion)
	if *cmd.model != "" {
		model = *cmd.model
	}
	logger.FromCtx(ctx).Debugf("gateway '%s': MAC %s, firmware '%s'", address, mac, rawVersion)

	w := cfg.Output
	if cfg.IsQuiet {
		// ready to be passed to "resolve" or "query"
		fmt.Fprintf(w, "--model %s --id %s --version %s\n", model, mac, version)
	} else {
		fmt.Fprintf(w, "MAC address:      %s\n", mac)
		fmt.Fprintf(w, "firmware version: %s\n", rawVersion)
		fmt.Fprintf(w, "model:            %s\n", model)
	}

	var (
		c      *catalog.Catalog
		target *resolver.Result
	)
	if *cmd.catalogURL != "" {
		c, target, err = cmd.resolve(ctx, cfg, model, mac, version)
		if err != nil {
			return err
		}
	}

	if !*cmd.update {
		return nil
	}

	var files []string
	switch {
	case len(args) > 0:
		files = args
	case target != nil:
		if fwversion.IsEqual(version, target.Record.Version) && !*cmd.force {
			if !cfg.IsQuiet {
				fmt.Fprintf(w, "nothing to update\n")
			}
			return nil
		}
		files = []string{c.FileURL(target.Record.File1)}
		if target.Record.HasFile2() {
			files = append(files, c.FileURL(target.Record.File2))
		}
	}
	return cmd.push(ctx, cfg, client, files)
}

func (cmd Command) resolve(
	ctx context.Context,
	cfg commands.Config,
	model string,
	mac net.HardwareAddr,
	version string,
) (*catalog.Catalog, *resolver.Result, error) {
	src, err := helpers.CatalogSource(*cmd.catalogURL)
	if err != nil {
		return nil, nil, commands.ErrArgs{Err: err}
	}
	defer src.Close()

	c, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	w := cfg.Output
	result, err := resolver.Resolve(c, model, mac.String())
	if err != nil {
		helpers.Fprintf(w, cfg.EnableColors, color.FgRed, "%v\n", err)
		return nil, nil, commands.SilentError{Err: err}
	}

	target := result.Record.Version
	switch {
	case fwversion.IsEqual(version, target):
		helpers.Fprintf(w, cfg.EnableColors, color.FgYellow, "up to date: %s (%s)\n", target, result.Source)
	case fwversion.IsLess(version, target):
		helpers.Fprintf(w, cfg.EnableColors, color.FgGreen, "update available: %s (%s)\n", target, result.Source)
	default:
		helpers.Fprintf(w, cfg.EnableColors, color.FgYellow, "downgrade available: %s (%s)\n", target, result.Source)
	}
	return c, &result, nil
}

func (cmd Command) push(
	ctx context.Context,
	cfg commands.Config,
	client *lanapi.Client,
	files []string,
) error {
	var srv lanapi.FirmwareServer
	for idx, file := range files {
		data, err := helpers.ReadFirmwareFile(ctx, file)
		if err != nil {
			return err
		}
		if idx == 0 {
			srv.User1 = data
		} else {
			srv.User2 = data
		}
	}

	stats, err := client.Update(ctx, &srv)
	if err != nil {
		return fmt.Errorf("unable to update the gateway: %w", err)
	}
	helpers.Fprintf(cfg.Output, cfg.EnableColors, color.FgGreen,
		"sent %s: %d bytes in %d chunks\n", stats.Image, stats.Bytes, stats.Chunks)
	return nil
}
