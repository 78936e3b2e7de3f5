package astro

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/immune-gmbh/gwcloud/pkg/xjson"
)

// Site is the geographic location of the installation.
type Site struct {
	Latitude  float64
	Longitude float64

	// Location is the time zone of the site.
	Location *time.Location
}

// Report is the time and sun information of a site at a moment.
type Report struct {
	TimeZone  string
	UTCOffset int
	DST       bool
	Sunrise   time.Time
	Sunset    time.Time
	DayKind   DayKind
}

// ReportAt returns the Report of the site at the moment now.
func (s Site) ReportAt(now time.Time) Report {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	_, offset := now.Zone()
	sunrise, sunset, kind := SunTimes(now, s.Latitude, s.Longitude)
	return Report{
		TimeZone:  ZoneName(loc, now),
		UTCOffset: offset,
		DST:       now.IsDST(),
		Sunrise:   sunrise.In(loc),
		Sunset:    sunset.In(loc),
		DayKind:   kind,
	}
}

type wireReport struct {
	TimeZone    xjson.String `json:"timezone"`
	UTCOffset   xjson.String `json:"utc_offset"`
	DST         xjson.String `json:"dst"`
	DateSunrise xjson.String `json:"date_sunrise"`
	DateSunset  xjson.String `json:"date_sunset"`
}

func (r Report) wire() wireReport {
	dst := "0"
	if r.DST {
		dst = "1"
	}
	return wireReport{
		TimeZone:    xjson.String(r.TimeZone),
		UTCOffset:   xjson.String(strconv.Itoa(r.UTCOffset)),
		DST:         xjson.String(dst),
		DateSunrise: xjson.String(r.Sunrise.Format("15:04")),
		DateSunset:  xjson.String(r.Sunset.Format("15:04")),
	}
}

// Encode writes the report in the format expected by gateways, for example:
//
//	{"timezone":"America\/Los_Angeles","utc_offset":"-25200","dst":"1","date_sunrise":"06:40","date_sunset":"18:50"}
func (r Report) Encode(w io.Writer) error {
	return xjson.Encode(w, r.wire())
}

// ZoneName returns the IANA name of the time zone. For time.Local it is
// derived from $TZ or /etc/localtime, falling back to the abbreviation
// of the zone at the moment now.
func ZoneName(loc *time.Location, now time.Time) string {
	if name := loc.String(); name != "Local" && name != "" {
		return name
	}
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" && !filepath.IsAbs(tz) {
		return tz
	}
	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
			return target[idx+len("zoneinfo/"):]
		}
	}
	abbr, _ := now.In(loc).Zone()
	return abbr
}
