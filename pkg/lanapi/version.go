package lanapi

import (
	"strings"
)

// ParseFirmwareVersion splits the firmware version reported by a gateway
// into the model (with its hardware revision suffix) and the version, as
// they are sent to the firmware update endpoint:
//
//	"GW1100A_V2.3.2"    -> "GW1100A", "V2.3.2"
//	"EasyWeatherV1.2.0" -> "", "V1.2.0"
//
// The model is empty if it is not a part of the string.
func ParseFirmwareVersion(s string) (model, version string) {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '_'); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	for idx := len(s) - 2; idx >= 0; idx-- {
		if (s[idx] == 'V' || s[idx] == 'v') && s[idx+1] >= '0' && s[idx+1] <= '9' {
			return "", s[idx:]
		}
	}
	return "", s
}
