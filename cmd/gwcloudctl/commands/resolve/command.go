package resolve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/helpers"
	"github.com/immune-gmbh/gwcloud/pkg/astro"
	"github.com/immune-gmbh/gwcloud/pkg/commands"
	"github.com/immune-gmbh/gwcloud/pkg/otarequest"
	"github.com/immune-gmbh/gwcloud/pkg/server/controller"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	model     *string
	deviceID  *string
	version   *string
	unixTime  *int64
	extraArgs *[]string
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<catalog URL or path>"
}

// Description explains what this command does
func (cmd Command) Description() string {
	return "print the response a device would get from the version check endpoint"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flagSet *pflag.FlagSet) {
	cmd.model = flagSet.String("model", "", "the model as reported by the device, e.g. 'GW1100A_V2.3.2'")
	cmd.deviceID = flagSet.String("id", "", "the device ID (MAC address)")
	cmd.version = flagSet.String("version", "", "the firmware version currently installed on the device")
	cmd.unixTime = flagSet.Int64("time", 0, "the unix time to put into the response; zero means now")
	cmd.extraArgs = flagSet.StringArray("param", nil, "additional request parameter in form 'key=value'")
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) != 1 {
		return commands.ErrArgs{Err: fmt.Errorf("expected exactly one argument, but got %d", len(args))}
	}

	params, err := cmd.params()
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	src, err := helpers.CatalogSource(args[0])
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	ctrl, err := controller.New(ctx, src, astro.Site{})
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("unable to initialize the controller: %w", err)
	}
	defer ctrl.Close()

	now := time.Now()
	if *cmd.unixTime != 0 {
		now = time.Unix(*cmd.unixTime, 0)
	}
	ctrl.Now = func() time.Time { return now }
	if _, ok := params[otarequest.ParamTime]; !ok {
		params[otarequest.ParamTime] = strconv.FormatInt(now.Unix(), 10)
	}

	response := ctrl.CheckFirmwareVersion(ctx, params)
	if err := response.Encode(cfg.Output); err != nil {
		return fmt.Errorf("unable to write the response: %w", err)
	}
	if response.IsError() {
		return commands.SilentError{Err: fmt.Errorf("the device would get error %d: %s", response.Code, response.Msg)}
	}
	return nil
}

func (cmd Command) params() (map[string]string, error) {
	params := map[string]string{}
	for _, kv := range *cmd.extraArgs {
		key, value, ok := splitParam(kv)
		if !ok {
			return nil, fmt.Errorf("invalid parameter '%s', expected 'key=value'", kv)
		}
		params[key] = value
	}
	for key, value := range map[string]string{
		otarequest.ParamModel:    *cmd.model,
		otarequest.ParamID:      *cmd.deviceID,
		otarequest.ParamVersion:  *cmd.version,
	} {
		if value != "" {
			params[key] = value
		}
	}
	return params, nil
}

func splitParam(kv string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(kv, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return key, value, true
}
