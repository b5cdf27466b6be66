// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package schedule implements the per-second schedule executor
// (spec.md §4.8): day-mask/time-window evaluation, union-ON overlap
// semantics across schedules that touch the same circuit, and optional
// sunrise/sunset substitution for schedules configured that way.
package schedule

import (
	"math"
	"time"
)

// SunTimes is today's sunrise and sunset, both expressed as minutes
// since local midnight, matching ScheduleConfig.StartTime/EndTime's
// units so a sun-relative schedule can be normalized the same way a
// fixed-clock one is.
type SunTimes struct {
	SunriseMin int
	SunsetMin  int
}

// SunPosition computes sunrise/sunset for the given date and
// coordinates using the NOAA solar position algorithm (Meeus' reduced
// form). This is hand-rolled against math+time rather than grounded in
// a pack dependency: nothing in the retrieved corpus ships an
// astronomical/solar-ephemeris library, and pulling one in for two
// numbers a day would be a dependency with no other use in this
// module.
func SunPosition(date time.Time, latitudeDeg, longitudeDeg float64) SunTimes {
	year, month, day := date.Date()
	jd := julianDay(year, int(month), day)
	n := jd - 2451545.0 + 0.0008

	meanSolarNoon := n - longitudeDeg/360.0
	solarMeanAnomaly := math.Mod(357.5291+0.98560028*meanSolarNoon, 360)
	smaRad := solarMeanAnomaly * math.Pi / 180

	center := 1.9148*math.Sin(smaRad) + 0.0200*math.Sin(2*smaRad) + 0.0003*math.Sin(3*smaRad)
	eclipticLong := math.Mod(solarMeanAnomaly+center+180+102.9372, 360)
	elRad := eclipticLong * math.Pi / 180

	solarTransit := 2451545.0 + meanSolarNoon + 0.0053*math.Sin(smaRad) - 0.0069*math.Sin(2*elRad)

	declination := math.Asin(math.Sin(elRad) * math.Sin(23.44*math.Pi/180))
	latRad := latitudeDeg * math.Pi / 180

	cosHourAngle := (math.Sin(-0.83*math.Pi/180) - math.Sin(latRad)*math.Sin(declination)) /
		(math.Cos(latRad) * math.Cos(declination))
	cosHourAngle = math.Max(-1, math.Min(1, cosHourAngle))
	hourAngle := math.Acos(cosHourAngle) * 180 / math.Pi

	sunsetJD := solarTransit + hourAngle/360.0
	sunriseJD := solarTransit - hourAngle/360.0

	// fractionalDayToMinutes yields minutes since UTC midnight; shift by
	// date's zone offset to get minutes since local midnight.
	_, offsetSec := date.Zone()
	shift := offsetSec / 60
	return SunTimes{
		SunriseMin: ((fractionalDayToMinutes(sunriseJD)+shift)%1440 + 1440) % 1440,
		SunsetMin:  ((fractionalDayToMinutes(sunsetJD)+shift)%1440 + 1440) % 1440,
	}
}

func julianDay(year, month, day int) float64 {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	jdn := day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	return float64(jdn)
}

func fractionalDayToMinutes(jd float64) int {
	frac := jd - math.Floor(jd) + 0.5
	frac = math.Mod(frac, 1.0)
	minutes := int(math.Round(frac * 1440))
	minutes = ((minutes % 1440) + 1440) % 1440
	return minutes
}
