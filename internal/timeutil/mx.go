package timeutil

import (
	"time"
)

// MX is the dealership's local timezone (Central Mexico)
var MX *time.Location

func init() {
	var err error
	MX, err = time.LoadLocation("America/Mexico_City")
	if err != nil {
		// Fallback: fixed zone if the tzdata is unavailable
		MX = time.FixedZone("CST", -6*60*60)
	}
}

// Now returns the current time in the dealership timezone
func Now() time.Time {
	return time.Now().In(MX)
}

// ToLocal converts any time to the dealership timezone
func ToLocal(t time.Time) time.Time {
	return t.In(MX)
}

// ParseLocal parses a time string in the dealership timezone
func ParseLocal(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, MX)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfDay returns 00:00:00 local for the given time
func StartOfDay(t time.Time) time.Time {
	lt := t.In(MX)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, MX)
}

// EndOfDay returns 23:59:59.999999999 local for the given time
func EndOfDay(t time.Time) time.Time {
	lt := t.In(MX)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 23, 59, 59, 999999999, MX)
}

// TomorrowAt returns tomorrow at the given local hour, used for follow-up
// scheduling fallbacks.
func TomorrowAt(t time.Time, hour int) time.Time {
	lt := t.In(MX).AddDate(0, 0, 1)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), hour, 0, 0, 0, MX)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"
)
