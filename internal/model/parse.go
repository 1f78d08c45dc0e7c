package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseFloat converts a raw cell value to a float, tolerating thousands
// separators, surrounding whitespace, and currency suffixes left behind by
// spreadsheet formatting. Unparsable input yields nil, never an error, so
// one dirty cell does not abort a batch.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses the date formats seen in auction exports. Returns nil for
// anything it cannot parse.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	// Excel serial dates show up when a date cell is read as a number.
	if serial := ParseFloat(s); serial != nil && *serial > 20000 && *serial < 80000 {
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(*serial))
		return &t
	}
	return nil
}

// DaysFromEpoch returns whole days elapsed since 1970-01-01 UTC.
func DaysFromEpoch(t time.Time) int {
	return int(t.UTC().Sub(epoch).Hours() / 24)
}

// DaysFromEpochPtr is DaysFromEpoch lifted over nil.
func DaysFromEpochPtr(t *time.Time) *int {
	if t == nil {
		return nil
	}
	d := DaysFromEpoch(*t)
	return &d
}

var addressRegionRe = regexp.MustCompile(
	`(?:([가-힣]+?(?:특별시|광역시|도))\s*)?` +
		`(?:([가-힣]+?(?:시|군|구))\s*)?` +
		`([가-힣0-9]+?(?:읍|면|동|리))?`)

// ParseRegions splits a Korean address into its administrative parts:
// big = province/metropolitan city, mid = city/county/district,
// small = town/neighborhood. Missing parts come back empty.
func ParseRegions(address string) (big, mid, small string) {
	m := addressRegionRe.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return "", "", ""
	}
	return m[1], m[2], m[3]
}

// Float64 returns a pointer to v. Convenience for literals in builders/tests.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Value dereferences p, returning 0 when nil.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Present reports whether p holds a nonzero value. The engine treats zero
// areas and prices the same as missing ones: both make a ratio undefined.
func Present(p *float64) bool {
	return p != nil && *p != 0
}
