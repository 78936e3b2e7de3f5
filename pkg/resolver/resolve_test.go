package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/gwcloud/pkg/catalog"
)

func mustParse(t *testing.T, lines ...string) *catalog.Catalog {
	c, err := catalog.ParseLines(lines)
	require.NoError(t, err)
	return c
}

func TestResolveLatest(t *testing.T) {
	c := mustParse(t,
		"urlbase http://fw",
		"model GW1100",
		"firmware V1.0.0", "file1 a.bin",
		"firmware V2.3.2", "file1 b.bin",
		"firmware V2.1.8", "file1 c.bin",
	)

	result, err := Resolve(c, "GW1100C", "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.Equal(t, "GW1100", result.Model)
	require.Equal(t, "V2.3.2", result.Record.Version)
	require.Equal(t, SourceLatest, result.Source)
}

func TestResolveLatestTie(t *testing.T) {
	c := mustParse(t,
		"model GW1100",
		"firmware V2.3", "file1 first.bin",
		"firmware V1", "file1 old.bin",
		"firmware v2.3.0", "file1 second.bin",
	)

	result, err := Resolve(c, "GW1100B", "x")
	require.NoError(t, err)
	require.Equal(t, "first.bin", result.Record.File1)
}

func TestResolveOverrides(t *testing.T) {
	c := mustParse(t,
		"model X",
		"firmware V1.0.0", "file1 a.bin",
		"firmware V2.0.0", "file1 b.bin",
		"firmware V3.0.0", "file1 c.bin",
		"want V1.0.0 for AA:BB:CC:DD:EE:FF",
		"want V2.0.0",
	)

	result, err := Resolve(c, "XA", "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.Equal(t, "V1.0.0", result.Record.Version)
	require.Equal(t, SourceDeviceOverride, result.Source)

	result, err = Resolve(c, "XA", "11:22:33:44:55:66")
	require.NoError(t, err)
	require.Equal(t, "V2.0.0", result.Record.Version)
	require.Equal(t, SourceDefaultOverride, result.Source)
}

func TestResolveErrors(t *testing.T) {
	c := mustParse(t,
		"model GW2000",
		"firmware V1", "file1 a.bin",
		"want V9 for aa:bb",
		"model EMPTY",
	)

	for _, testCase := range []struct {
		Name     string
		Model    string
		DeviceID string
		Expected Error
	}{
		{"suffix_stripped_unknown", "GW2000", "x", Error{Kind: ErrorKindUnknownModel, Model: "GW200"}},
		{"unknown", "GW1100C", "x", Error{Kind: ErrorKindUnknownModel, Model: "GW1100"}},
		{"single_letter", "G", "x", Error{Kind: ErrorKindUnknownModel, Model: "G"}},
		{"empty", "", "x", Error{Kind: ErrorKindUnknownModel, Model: ""}},
		{"dangling", "GW2000B", "aa:bb", Error{
			Kind: ErrorKindDanglingOverride, Model: "GW2000", Version: "V9", OverrideKey: "aa:bb",
		}},
		{"no_firmware", "EMPTYA", "x", Error{Kind: ErrorKindNoFirmwareAvailable, Model: "EMPTY"}},
	} {
		t.Run(testCase.Name, func(t *testing.T) {
			_, err := Resolve(c, testCase.Model, testCase.DeviceID)
			require.Equal(t, testCase.Expected, err)
			require.NotEmpty(t, err.Error())
		})
	}
}

func TestNormalizeModel(t *testing.T) {
	model, ok := NormalizeModel("GW2000B")
	require.True(t, ok)
	require.Equal(t, "GW2000", model)

	model, ok = NormalizeModel("WSé")
	require.True(t, ok)
	require.Equal(t, "WS", model)

	_, ok = NormalizeModel("B")
	require.False(t, ok)
}
