package catalog

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
# firmware catalog used by tests
urlbase https://ota.example.net/fw

model GW1100
	firmware V1.0.0
		file1 gw1100/V1.0.0/user1.bin
		file2 gw1100/V1.0.0/user2.bin
		log   initial release
	firmware V2.3.2
		file1 gw1100/V2.3.2/user1.bin     # single binary
		log   Fixed a bug\r\nFixed another
	firmware V2.1.8
		FILE  gw1100/V2.1.8/user1.bin
	want V2.1.8 for DC:DA:0C:FA:C5:E0
	want V2.3.2

Model GW2000
	Firmware V3.1.2
		File1 gw2000/V3.1.2.bin
		Log   issue \#42 fixed
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	require.Equal(t, "https://ota.example.net/fw", c.URLBase)
	require.Equal(t, []string{"GW1100", "GW2000"}, c.ModelNames())

	gw1100 := c.Models["GW1100"]
	require.NotNil(t, gw1100)
	require.Equal(t, []string{"V1.0.0", "V2.3.2", "V2.1.8"}, gw1100.Versions())
	require.Equal(t, FirmwareRecord{
		Version:   "V1.0.0",
		File1:     "gw1100/V1.0.0/user1.bin",
		File2:     "gw1100/V1.0.0/user2.bin",
		Changelog: "initial release",
	}, gw1100.Firmware["V1.0.0"])
	require.Equal(t, `Fixed a bug\r\nFixed another`, gw1100.Firmware["V2.3.2"].Changelog)
	require.False(t, gw1100.Firmware["V2.3.2"].HasFile2())
	require.Equal(t, "gw1100/V2.1.8/user1.bin", gw1100.Firmware["V2.1.8"].File1)
	require.Equal(t, map[string]string{
		"dc:da:0c:fa:c5:e0": "V2.1.8",
		DefaultOverrideKey:  "V2.3.2",
	}, gw1100.Overrides)

	gw2000 := c.Models["GW2000"]
	require.NotNil(t, gw2000)
	require.Equal(t, "issue #42 fixed", gw2000.Firmware["V3.1.2"].Changelog)
	require.Empty(t, gw2000.Overrides)

	require.Equal(t, "https://ota.example.net/fw/gw2000/V3.1.2.bin", c.FileURL(gw2000.Firmware["V3.1.2"].File1))
}

func TestParseErrors(t *testing.T) {
	for _, testCase := range []struct {
		Name     string
		Lines    []string
		Expected ParseError
	}{
		{
			Name:     "no_value",
			Lines:    []string{"model GW1100", "  firmware   # nothing here"},
			Expected: ParseError{Kind: ParseErrorKindMalformedLine, Line: 2, Keyword: "firmware"},
		},
		{
			Name:  "file1_without_firmware",
			Lines: []string{"model GW1100", "file1 a.bin"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 2, Keyword: "file1",
				ExpectedPredecessors: []string{"firmware"},
			},
		},
		{
			Name:  "file2_after_log",
			Lines: []string{"model GW1100", "firmware V1", "file1 a.bin", "log x", "file2 b.bin"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 5, Keyword: "file2",
				ExpectedPredecessors: []string{"file1"},
			},
		},
		{
			Name:  "file2_after_file",
			Lines: []string{"model X", "firmware V1", "file a", "file2 b"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 4, Keyword: "file2",
				ExpectedPredecessors: []string{"file1"},
			},
		},
		{
			Name:  "log_after_firmware",
			Lines: []string{"model GW1100", "firmware V1", "log x"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 3, Keyword: "log",
				ExpectedPredecessors: []string{"file1", "file2", "file"},
			},
		},
		{
			Name:  "log_after_want",
			Lines: []string{"model GW1100", "firmware V1", "file1 a.bin", "want V1", "log x"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 5, Keyword: "log",
				ExpectedPredecessors: []string{"file1", "file2", "file"},
			},
		},
		{
			Name:  "firmware_without_model",
			Lines: []string{"urlbase http://x", "firmware V1"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 2, Keyword: "firmware",
				ExpectedPredecessors: []string{"model"},
			},
		},
		{
			Name:  "want_without_model",
			Lines: []string{"want V1"},
			Expected: ParseError{
				Kind: ParseErrorKindOutOfSequence, Line: 1, Keyword: "want",
				ExpectedPredecessors: []string{"model"},
			},
		},
		{
			Name:     "unknown_keyword",
			Lines:    []string{"model GW1100", "checksum abcdef"},
			Expected: ParseError{Kind: ParseErrorKindUnknownKeyword, Line: 2, Keyword: "checksum"},
		},
		{
			Name:     "firmware_without_file1_at_eof",
			Lines:    []string{"model GW1100", "firmware V1", "want V1"},
			Expected: ParseError{Kind: ParseErrorKindMissingFile1, Line: 2, Keyword: "firmware"},
		},
		{
			Name:     "firmware_without_file1_before_next",
			Lines:    []string{"model GW1100", "firmware V1", "firmware V2", "file1 a.bin"},
			Expected: ParseError{Kind: ParseErrorKindMissingFile1, Line: 2, Keyword: "firmware"},
		},
	} {
		t.Run(testCase.Name, func(t *testing.T) {
			c, err := ParseLines(testCase.Lines)
			require.Nil(t, c)
			require.Error(t, err)

			var parseErr ParseError
			require.True(t, errors.As(err, &parseErr))
			require.Equal(t, testCase.Expected, parseErr)
			require.NotEmpty(t, parseErr.Error())
		})
	}
}

func TestParseFileAlias(t *testing.T) {
	c, err := ParseLines([]string{"model X", "firmware V1", "file a.bin", "log single binary"})
	require.NoError(t, err)
	require.Equal(t, FirmwareRecord{
		Version:   "V1",
		File1:     "a.bin",
		Changelog: "single binary",
	}, c.Models["X"].Firmware["V1"])
}

func TestParseWantForIsCaseSensitive(t *testing.T) {
	c, err := ParseLines([]string{
		"model X",
		"firmware V1.0.0",
		"file1 a.bin",
		"want V1.0.0 FOR aa:bb:cc:dd:ee:ff",
		"WANT V1.0.0 for 11:22:33:44:55:66",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		DefaultOverrideKey:  "V1.0.0 FOR aa:bb:cc:dd:ee:ff",
		"11:22:33:44:55:66": "V1.0.0",
	}, c.Models["X"].Overrides)
}

func TestParseURLBaseInsideModel(t *testing.T) {
	c, err := ParseLines([]string{
		"model GW1100",
		"urlbase http://a",
		"firmware V1",
		"file1 a.bin",
		"urlbase http://b",
	})
	require.NoError(t, err)
	require.Equal(t, "http://b", c.URLBase)
	require.Contains(t, c.Models["GW1100"].Firmware, "V1")
}

func TestParseRedeclaration(t *testing.T) {
	c, err := ParseLines([]string{
		"model GW1100",
		"firmware V1",
		"file1 old.bin",
		"firmware V2",
		"file1 v2.bin",
		"firmware V1",
		"file1 new.bin",
		"model GW2000",
		"firmware V9",
		"file1 x.bin",
		"model GW1100",
		"firmware V3",
		"file1 v3.bin",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"GW1100", "GW2000"}, c.ModelNames())
	require.Equal(t, []string{"V3"}, c.Models["GW1100"].Versions())

	c, err = ParseLines([]string{
		"model GW1100",
		"firmware V1",
		"file1 old.bin",
		"firmware V2",
		"file1 v2.bin",
		"firmware V1",
		"file1 new.bin",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"V1", "V2"}, c.Models["GW1100"].Versions())
	require.Equal(t, "new.bin", c.Models["GW1100"].Firmware["V1"].File1)
}

func TestParseReadError(t *testing.T) {
	readErr := errors.New("disk is on fire")
	_, err := Parse(iotest.ErrReader(readErr))
	require.ErrorIs(t, err, readErr)

	var parseErr ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, ParseErrorKindRead, parseErr.Kind)
}

func TestStripComment(t *testing.T) {
	require.Equal(t, "log a ", stripComment("log a # b"))
	require.Equal(t, `log a #1 `, stripComment(`log a \#1 # comment`))
	require.Equal(t, `log a\r\n`, stripComment(`log a\r\n`))
	require.Equal(t, "", stripComment("# only comment"))
}
