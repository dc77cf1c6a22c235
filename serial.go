package cellfmt

import (
	"fmt"
	"math"
	"time"
)

// SerialToTime converts a spreadsheet date serial to a UTC [time.Time] so
// that date patterns such as "yyyy-mm-dd" can render it.
//
// In the 1900 system serial 1 is 1900-01-01 and serial 60 is the phantom
// 1900-02-29 inherited from Lotus 1-2-3, so serials from 61 on are shifted
// back one day.  In the 1904 system serial 0 is 1904-01-01 with no
// correction.  The fraction is the time of day, rounded to the second.
func SerialToTime(serial float64, date1904 bool) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("cellfmt: SerialToTime: invalid serial %v", serial)
	}
	if serial < 0 {
		return time.Time{}, fmt.Errorf("cellfmt: SerialToTime: negative serial %v", serial)
	}
	// 2,958,465 is 9999-12-31 in the 1900 system.
	maxSerial := 2_958_466.0
	if date1904 {
		maxSerial -= 1462
	}
	if serial > maxSerial {
		return time.Time{}, fmt.Errorf("cellfmt: SerialToTime: serial %v beyond 9999-12-31", serial)
	}

	secs, rollover := secondsOfDay(serial)
	days := int(serial) + rollover
	clock := time.Duration(secs) * time.Second

	if date1904 {
		return time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days).Add(clock), nil
	}
	epoch := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	switch {
	case days == 0:
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Add(clock), nil
	case days >= 61:
		days--
	}
	return epoch.AddDate(0, 0, days).Add(clock), nil
}

// secondsOfDay rounds the fractional day of serial to whole seconds.  When
// rounding reaches midnight the day rolls over.
func secondsOfDay(serial float64) (secs int64, rollover int) {
	const epsilon = 1e-9
	frac := serial - math.Trunc(serial) + epsilon
	d := time.Duration(frac * float64(24*time.Hour))
	secs = int64(d / time.Second)
	if d%time.Second > 500*time.Millisecond {
		secs++
	}
	return secs % 86400, int(secs / 86400)
}
