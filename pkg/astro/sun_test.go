package astro

import (
	"bytes"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestSunTimes(t *testing.T) {
	for _, testCase := range []struct {
		Name      string
		Zone      string
		Date      time.Time
		Latitude  float64
		Longitude float64
		Sunrise   string
		Sunset    string
	}{
		{"london_solstice", "Europe/London", time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), 51.5074, -0.1278, "04:42", "21:21"},
		{"long_beach", "America/Los_Angeles", time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC), 33.76266954460827, -118.12121280197603, "05:43", "20:06"},
		{"sydney_winter", "Australia/Sydney", time.Date(2024, 6, 21, 2, 0, 0, 0, time.UTC), -33.8688, 151.2093, "06:59", "16:53"},
	} {
		t.Run(testCase.Name, func(t *testing.T) {
			loc := mustLoadLocation(t, testCase.Zone)
			sunrise, sunset, kind := SunTimes(testCase.Date.In(loc), testCase.Latitude, testCase.Longitude)
			require.Equal(t, DayKindNormal, kind)
			require.Equal(t, testCase.Sunrise, sunrise.In(loc).Format("15:04"))
			require.Equal(t, testCase.Sunset, sunset.In(loc).Format("15:04"))
			require.True(t, sunrise.Before(sunset))
		})
	}

	t.Run("polar", func(t *testing.T) {
		loc := mustLoadLocation(t, "Europe/Oslo")

		_, _, kind := SunTimes(time.Date(2024, 6, 21, 12, 0, 0, 0, loc), 69.65, 18.96)
		require.Equal(t, DayKindMidnightSun, kind)

		sunrise, sunset, kind := SunTimes(time.Date(2024, 12, 21, 12, 0, 0, 0, loc), 69.65, 18.96)
		require.Equal(t, DayKindPolarNight, kind)
		require.Equal(t, sunrise, sunset)
	})
}

func TestReport(t *testing.T) {
	site := Site{
		Latitude:  51.5074,
		Longitude: -0.1278,
		Location:  mustLoadLocation(t, "Europe/London"),
	}

	t.Run("summer", func(t *testing.T) {
		r := site.ReportAt(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
		require.Equal(t, "Europe/London", r.TimeZone)
		require.Equal(t, 3600, r.UTCOffset)
		require.True(t, r.DST)

		var buf bytes.Buffer
		require.NoError(t, r.Encode(&buf))
		require.Equal(t,
			`{"timezone":"Europe\/London","utc_offset":"3600","dst":"1","date_sunrise":"04:42","date_sunset":"21:21"}`+"\n",
			buf.String())
	})

	t.Run("winter", func(t *testing.T) {
		r := site.ReportAt(time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC))
		require.Equal(t, 0, r.UTCOffset)
		require.False(t, r.DST)
	})

	t.Run("negative_offset", func(t *testing.T) {
		site := Site{Location: mustLoadLocation(t, "America/Los_Angeles")}
		r := site.ReportAt(time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC))
		require.Equal(t, -25200, r.UTCOffset)
		require.Equal(t, "-25200", string(r.wire().UTCOffset))
	})
}

func TestZoneName(t *testing.T) {
	require.Equal(t, "XYZ", ZoneName(time.FixedZone("XYZ", 3600), time.Now()))
	require.NotEmpty(t, ZoneName(time.Local, time.Now()))
}
