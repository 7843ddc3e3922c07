package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// LocalLayout is the wire format of date-times: ISO-8601 local date-time at
// minute precision, interpreted in the configured zone.
const LocalLayout = "2006-01-02T15:04"

var (
	// zoneRe matches an explicit offset or Z suffix.
	zoneRe  = regexp.MustCompile(`(?i)(z|[+-]\d{2}:?\d{2})$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	LocalLayout,
	"2006-01-02",
}

// DateTime parses raw as a local date-time in loc, or as RFC3339 when it
// carries a zone. Seconds are optional; a bare date means midnight. The
// result is truncated to the minute and returned in UTC.
func DateTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}
	// "2024-01-15 14:00" is accepted as well as the T separator.
	s = spaceRe.ReplaceAllString(s, "T")

	if zoneRe.MatchString(s) && strings.Contains(s, "T") {
		t, err := time.Parse(time.RFC3339Nano, strings.ToUpper(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("unable to parse date-time %q: %w", raw, err)
		}
		return t.Truncate(time.Minute).UTC(), nil
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Truncate(time.Minute).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date-time %q", raw)
}

// FormatDateTime renders t in loc using LocalLayout.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(LocalLayout)
}

// IDList parses a comma separated list of positive ids such as "1,2, 3".
// Empty elements are skipped.
func IDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
