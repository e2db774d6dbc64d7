package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// InvalidDate is what FormatDate renders for input it cannot parse.
const InvalidDate = "Invalid Date"

// Locale fixes how a date is rendered, independent of where it is viewed.
type Locale struct {
	tag    string
	layout string
}

var (
	// EnUS renders "May 14, 2023".
	EnUS = Locale{tag: "en-US", layout: "January 2, 2006"}
	// EnGB renders "14 May 2023".
	EnGB = Locale{tag: "en-GB", layout: "2 January 2006"}
)

var locales = map[string]Locale{
	EnUS.tag: EnUS,
	EnGB.tag: EnGB,
}

// ParseLocale looks a Locale up by its BCP 47 tag. The empty string is en-US.
func ParseLocale(tag string) (Locale, error) {
	if tag == "" {
		return EnUS, nil
	}
	if l, ok := locales[tag]; ok {
		return l, nil
	}
	return Locale{}, fmt.Errorf("unsupported locale: %s", tag)
}

func (l Locale) String() string {
	return l.tag
}

// ISO-8601 shapes the commit API and callers produce, most specific first.
// Inputs without an offset are read in the target location.
var isoLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", false},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
}

// Parse reads an ISO-8601 timestamp. Zone-less input is interpreted in loc.
func Parse(iso string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	iso = strings.TrimSpace(iso)
	for _, candidate := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		if candidate.zoned {
			t, err = time.Parse(candidate.layout, iso)
		} else {
			t, err = time.ParseInLocation(candidate.layout, iso, loc)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders iso as a long-form date in locale, as seen from loc.
// Input that is not a date renders InvalidDate; it is never an error.
func FormatDate(iso string, locale Locale, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t, ok := Parse(iso, loc)
	if !ok {
		return InvalidDate
	}
	return FormatTime(t, locale, loc)
}

// FormatTime renders t the same way FormatDate renders a parsed string.
func FormatTime(t time.Time, locale Locale, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if locale.layout == "" {
		locale = EnUS
	}
	return t.In(loc).Format(locale.layout)
}
