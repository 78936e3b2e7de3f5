package lanapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFirmwareVersion(t *testing.T) {
	for _, tc := range []struct {
		in      string
		model   string
		version string
	}{
		{in: "GW1100A_V2.3.2", model: "GW1100A", version: "V2.3.2"},
		{in: "GW2000B_V3.1.2\n", model: "GW2000B", version: "V3.1.2"},
		{in: "WS_3900_V1.0.0", model: "WS_3900", version: "V1.0.0"},
		{in: "EasyWeatherV1.2.0", model: "", version: "V1.2.0"},
		{in: "v1.0", model: "", version: "v1.0"},
		{in: "unknown", model: "", version: "unknown"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			model, version := ParseFirmwareVersion(tc.in)
			require.Equal(t, tc.model, model)
			require.Equal(t, tc.version, version)
		})
	}
}
