package ics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"icsgen/internal/model"
)

const (
	startLayout        = "2006-01-02 15:04"
	startLayoutSeconds = "2006-01-02 15:04:05"
	dateLayout         = "2006-01-02"

	defaultTimedDuration  = time.Hour
	defaultAllDayDuration = 24 * time.Hour

	// maxDurationHours keeps hour values inside time.Duration's range.
	maxDurationHours = float64(math.MaxInt64/int64(time.Second)) / 3600
)

var errEmptyStart = errors.New("empty start time")

// ResolveStart turns a "Start Time" value into a zoned timestamp.
//
// Anything from the first '(' on is dropped. With three or more tokens the
// last one names an IANA zone; an unknown name falls back to def with a
// warning and the wall-clock reading unchanged. With two tokens the value is
// read in def. A lone date is accepted only for all-day events.
func ResolveStart(raw string, allDay bool, def *time.Location) (time.Time, []Warning, error) {
	s := raw
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	parts := strings.Fields(s)

	switch {
	case len(parts) == 0:
		return time.Time{}, nil, errEmptyStart
	case len(parts) == 1:
		if !allDay {
			return time.Time{}, nil, fmt.Errorf("parse %q: expected \"YYYY-MM-DD HH:MM\"", raw)
		}
		t, err := time.ParseInLocation(dateLayout, parts[0], def)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("parse %q: %w", raw, err)
		}
		return t, nil, nil
	case len(parts) == 2:
		t, err := parseWallClock(parts[0]+" "+parts[1], def)
		if err != nil && allDay {
			// "2024-03-17 Europe/Paris": only the date matters for all-day events.
			if d, derr := time.ParseInLocation(dateLayout, parts[0], def); derr == nil {
				return d, nil, nil
			}
		}
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("parse %q: %w", raw, err)
		}
		return t, nil, nil
	}

	var warnings []Warning
	zone := parts[len(parts)-1]
	loc, err := loadZone(zone)
	if err != nil {
		warnings = append(warnings, Warning{
			Field:   model.FieldStartTime,
			Message: fmt.Sprintf("unknown timezone %q, using %s: %v", zone, def, err),
		})
		loc = def
	}

	t, err := parseWallClock(strings.Join(parts[:len(parts)-1], " "), loc)
	if err != nil {
		return time.Time{}, warnings, fmt.Errorf("parse %q: %w", raw, err)
	}
	return t, warnings, nil
}

func loadZone(name string) (*time.Location, error) {
	// "Local" and "" are accepted by time.LoadLocation but are not IANA names
	// a calendar client could resolve.
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("not an IANA zone name")
	}
	return time.LoadLocation(name)
}

func parseWallClock(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(startLayout, s, loc)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.ParseInLocation(startLayoutSeconds, s, loc); err2 == nil {
		return t2, nil
	}
	return time.Time{}, err
}

// ResolveDuration interprets a "Duration" value as hours. The whole value is
// tried first, then its first whitespace-separated token. If neither parses
// the policy default (1h, or 24h for all-day) is used with a warning. An
// absent value takes the default silently. Zero and negative values are kept.
func ResolveDuration(raw string, present, allDay bool) (time.Duration, []Warning) {
	def := defaultTimedDuration
	if allDay {
		def = defaultAllDayDuration
	}
	if !present {
		return def, nil
	}

	if h, ok := parseHours(raw); ok {
		return hoursToDuration(h), nil
	}
	if fields := strings.Fields(raw); len(fields) > 0 {
		if h, ok := parseHours(fields[0]); ok {
			return hoursToDuration(h), nil
		}
	}

	return def, []Warning{{
		Field:   model.FieldDuration,
		Message: fmt.Sprintf("could not parse %q as hours, using %s", raw, FormatDuration(def)),
	}}
}

func parseHours(s string) (float64, bool) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false
	}
	if math.Abs(h) > maxDurationHours {
		return 0, false
	}
	return h, true
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*3600)) * time.Second
}

// RoundToDays rounds d away from zero to a whole number of days. A DATE
// start only admits a dur-day DURATION.
func RoundToDays(d time.Duration) time.Duration {
	const day = 24 * time.Hour
	r := d % day
	switch {
	case r > 0 && d-r <= math.MaxInt64-day:
		return d - r + day
	case r < 0 && d-r >= math.MinInt64+day:
		return d - r - day
	default:
		return d - r
	}
}

// FormatDayDuration renders a whole-day duration as P<n>D, e.g. P0D, P2D,
// -P1D.
func FormatDayDuration(d time.Duration) string {
	days := int64(d / (24 * time.Hour))
	if days < 0 {
		return fmt.Sprintf("-P%dD", -days)
	}
	return fmt.Sprintf("P%dD", days)
}

// FormatDuration renders d as an RFC 5545 DURATION value, e.g. PT1H, P1D,
// PT1H30M, -PT1H. Sub-second parts are rounded away.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d == 0 {
		return "PT0S"
	}

	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	minutes := secs / 60
	secs %= 60

	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours > 0 || minutes > 0 || secs > 0 {
		b.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if minutes > 0 {
			fmt.Fprintf(&b, "%dM", minutes)
		}
		if secs > 0 {
			fmt.Fprintf(&b, "%dS", secs)
		}
	}
	return b.String()
}
