package runtime

import (
	"strconv"
	"strings"
	"time"
)

// The wizard combines separate date ("2025-01-10") and time ("14:00", with
// tolerance for a trailing am/pm marker) sub-fields into one instant. The
// instant is constructed directly in UTC with no local-offset adjustment;
// that fixed-UTC rule is load-bearing for parity with stored events and must
// be the same here and in the composer.

// to24h normalizes a clock string to 24-hour hour/minute values.
func to24h(timeStr string) (hour, minute int, ok bool) {
	fields := strings.Fields(strings.TrimSpace(timeStr))
	if len(fields) == 0 {
		return 0, 0, false
	}

	parts := strings.Split(fields[0], ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}

	if len(fields) > 1 {
		switch strings.ToLower(fields[1]) {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		default:
			return 0, 0, false
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// combineDateTime builds a UTC instant from date and time sub-fields.
// ok is false when either part is absent or malformed.
func combineDateTime(dateStr, timeStr string) (time.Time, bool) {
	if dateStr == "" || timeStr == "" {
		return time.Time{}, false
	}

	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	hour, minute, ok := to24h(timeStr)
	if !ok {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
}

// isoInstant formats an instant the way the backend stores it.
func isoInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// splitInstant breaks a stored instant back into the date and time
// sub-fields the forms edit. Unparseable input yields empty parts.
func splitInstant(iso string) (date, clock string) {
	if iso == "" {
		return "", ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return "", ""
	}
	t = t.UTC()
	return t.Format("2006-01-02"), t.Format("15:04")
}
