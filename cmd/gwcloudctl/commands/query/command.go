package query

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/immune-gmbh/gwcloud/cmd/gwcloudctl/helpers"
	"github.com/immune-gmbh/gwcloud/pkg/commands"
	"github.com/immune-gmbh/gwcloud/pkg/envelope"
	"github.com/immune-gmbh/gwcloud/pkg/httputils/clienthelpers"
	"github.com/immune-gmbh/gwcloud/pkg/otarequest"
	"github.com/immune-gmbh/gwcloud/pkg/server/httpapi"
)

const maxResponseSize = 1 << 20

// Command is the implementation of `commands.Command`.
type Command struct {
	server   *string
	model    *string
	deviceID *string
	version  *string
	timeout  *time.Duration
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return ""
}

// Description explains what this command does
func (cmd Command) Description() string {
	return "ask a running gwcloudd server for a firmware update"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flagSet *pflag.FlagSet) {
	cmd.server = flagSet.String("server", "http://localhost", "the base URL of the server")
	cmd.model = flagSet.String("model", "", "the model as reported by the device")
	cmd.deviceID = flagSet.String("id", "", "the device ID (MAC address)")
	cmd.version = flagSet.String("version", "", "the firmware version currently installed on the device")
	cmd.timeout = flagSet.Duration("timeout", 10*time.Second, "the timeout of the request")
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("expected no arguments, but got %d", len(args))}
	}

	reqURL, err := cmd.requestURL()
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	ctx, cancelFn := context.WithTimeout(ctx, *cmd.timeout)
	defer cancelFn()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("unable to create a request to '%s': %w", reqURL, err)
	}
	clienthelpers.SetHeaders(req, cfg.RemoteLogLevel)
	logger.FromCtx(ctx).Debugf("requesting '%s'", reqURL)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("unable to query '%s': %w", reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("unable to read the response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return printResponse(cfg, body)
}

func (cmd Command) requestURL() (string, error) {
	base, err := url.Parse(*cmd.server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL '%s': %w", *cmd.server, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid server URL '%s': scheme and host are required", *cmd.server)
	}

	query := url.Values{}
	query.Set(otarequest.ParamID, *cmd.deviceID)
	query.Set(otarequest.ParamModel, *cmd.model)
	query.Set(otarequest.ParamVersion, *cmd.version)
	// sent by real devices, ignored by the server
	query.Set(otarequest.ParamTime, strconv.FormatInt(time.Now().Unix(), 10))
	query.Set(otarequest.ParamUser, "1")

	base.Path = strings.TrimSuffix(base.Path, "/") + httpapi.PathVersionInfo
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func printResponse(cfg commands.Config, body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("the response is not a valid JSON: %s", body)
	}
	w := cfg.Output
	if !cfg.IsQuiet {
		fmt.Fprintf(w, "%s\n", strings.TrimSpace(string(body)))
	}

	resp := gjson.ParseBytes(body)
	code := resp.Get("code").Int()
	msg := resp.Get("msg").String()
	switch {
	case code == envelope.CodeSuccess:
		helpers.Fprintf(w, cfg.EnableColors, color.FgGreen, "update available: %s\n", resp.Get("data.name").String())
		fmt.Fprintf(w, "    %s\n", resp.Get("data.attach1file").String())
		if file2 := resp.Get("data.attach2file").String(); file2 != "" {
			fmt.Fprintf(w, "    %s\n", file2)
		}
	case code == envelope.CodeFailure && msg == envelope.MsgUpToDate:
		helpers.Fprintf(w, cfg.EnableColors, color.FgYellow, "%s (%s)\n", msg, resp.Get("data.name").String())
	default:
		helpers.Fprintf(w, cfg.EnableColors, color.FgRed, "error %d: %s\n", code, msg)
		return commands.SilentError{Err: fmt.Errorf("the server replied with code %d: %s", code, msg)}
	}
	return nil
}
