// Package otarequest validates the parameters of a firmware version check
// request sent by a weather gateway, like:
//
//	GET /api/ota/v1/version/info?id=30%3A83%3A98%3AA7%3A2E%3AD9&model=GW1100C&time=1715698261&user=1&version=V2.3.2&sign=0004C297194E4ACD3E2D67469442BA5F
//
// Fields "time", "user" and "sign" are accepted, but ignored.
package otarequest

import (
	"fmt"
	"net/url"
	"strings"
)

// Names of request parameters.
const (
	ParamID      = "id"
	ParamModel   = "model"
	ParamVersion = "version"
	ParamTime    = "time"
	ParamUser    = "user"
)

// requiredParams is the order in which missing parameters are reported.
var requiredParams = []string{ParamID, ParamModel, ParamVersion}

// Request is a validated firmware version check request.
type Request struct {
	// DeviceID is the lower-cased device identifier (the MAC address).
	DeviceID string

	// Model is the raw model name, including the hardware revision
	// suffix (e.g. "GW2000B").
	Model string

	// CurrentVersion is the version the device currently runs.
	CurrentVersion string
}

// ErrMissingField is returned when a required parameter is absent or empty.
type ErrMissingField struct {
	Name string
}

func (err ErrMissingField) Error() string {
	return fmt.Sprintf("missing required parameter '%s'", err.Name)
}

// Validate checks that all required parameters are present.
//
// Parameters are checked in the order "id", "model", "version", only the
// first missing one is reported (as ErrMissingField).
func Validate(params map[string]string) (Request, error) {
	for _, name := range requiredParams {
		if params[name] == "" {
			return Request{}, ErrMissingField{Name: name}
		}
	}

	return Request{
		DeviceID:       strings.ToLower(params[ParamID]),
		Model:          params[ParamModel],
		CurrentVersion: params[ParamVersion],
	}, nil
}

// ParamsFromValues flattens URL values (query or form) taking the first
// value of every key.
func ParamsFromValues(values url.Values) map[string]string {
	result := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) == 0 {
			continue
		}
		result[key] = v[0]
	}
	return result
}
