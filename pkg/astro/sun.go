// Package astro computes the local time and sun information reported to
// weather gateways by the time responder.
package astro

import (
	"math"
	"time"
)

// DayKind describes the course of the sun on a given day.
type DayKind int

const (
	// DayKindNormal means the sun rises and sets.
	DayKindNormal = DayKind(iota)

	// DayKindPolarNight means the sun stays below the horizon all day.
	DayKindPolarNight

	// DayKindMidnightSun means the sun stays above the horizon all day.
	DayKindMidnightSun
)

// String implements fmt.Stringer.
func (k DayKind) String() string {
	switch k {
	case DayKindNormal:
		return "normal"
	case DayKindPolarNight:
		return "polar_night"
	case DayKindMidnightSun:
		return "midnight_sun"
	}
	return "unknown"
}

// zenith of the sun at sunrise/sunset, including the atmospheric refraction
// and the size of the solar disk.
const sunriseZenithDeg = 90.833

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }

// SunTimes returns sunrise and sunset (in UTC) on the calendar day of date
// (in date's location) at the given coordinates (degrees, east and north
// are positive).
//
// It uses the NOAA "General Solar Position" approximation, which is
// accurate to about a minute at non-polar latitudes.
//
// For DayKindPolarNight both values are the solar noon, for
// DayKindMidnightSun they are the start and the end of the day.
func SunTimes(date time.Time, latitude, longitude float64) (sunrise, sunset time.Time, kind DayKind) {
	year, month, day := date.Date()
	midnightUTC := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	daysInYear := 365.0
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		daysInYear = 366
	}

	// fractional year (radians) at noon
	gamma := 2 * math.Pi / daysInYear * float64(date.YearDay()-1)

	eqTime := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) -
		0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) -
		0.040849*math.Sin(2*gamma))

	decl := 0.006918 -
		0.399912*math.Cos(gamma) +
		0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) +
		0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) +
		0.00148*math.Sin(3*gamma)

	lat := deg2rad(latitude)
	cosHA := math.Cos(deg2rad(sunriseZenithDeg))/(math.Cos(lat)*math.Cos(decl)) - math.Tan(lat)*math.Tan(decl)

	minutesToTime := func(minutes float64) time.Time {
		return midnightUTC.Add(time.Duration(minutes * float64(time.Minute))).Truncate(time.Second)
	}
	solarNoon := 720 - 4*longitude - eqTime

	switch {
	case cosHA > 1:
		noon := minutesToTime(solarNoon)
		return noon, noon, DayKindPolarNight
	case cosHA < -1:
		startOfDay := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24*time.Hour - time.Minute)
		return startOfDay.UTC(), endOfDay.UTC(), DayKindMidnightSun
	}

	ha := rad2deg(math.Acos(cosHA))
	sunrise = minutesToTime(solarNoon - 4*ha)
	sunset = minutesToTime(solarNoon + 4*ha)
	return sunrise, sunset, DayKindNormal
}
