package datefmt_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/last-updated/internal/datefmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		iso  string
		want string
	}{
		{name: "commit api timestamp", iso: "2023-05-14T10:00:00Z", want: "May 14, 2023"},
		{name: "fractional seconds", iso: "2023-05-14T10:00:00.123Z", want: "May 14, 2023"},
		{name: "numeric offset", iso: "2023-05-14T23:30:00-02:00", want: "May 15, 2023"},
		{name: "date only", iso: "2024-02-29", want: "February 29, 2024"},
		{name: "no offset", iso: "2023-12-31T23:59:59", want: "December 31, 2023"},
		{name: "minutes precision", iso: "2023-01-05T08:15", want: "January 5, 2023"},
		{name: "surrounding whitespace", iso: " 2023-05-14T10:00:00Z\n", want: "May 14, 2023"},
		{name: "rfc1123", iso: "Sun, 14 May 2023 10:00:00 GMT", want: "May 14, 2023"},
		{name: "garbage", iso: "yesterday-ish", want: datefmt.InvalidDate},
		{name: "empty", iso: "", want: datefmt.InvalidDate},
		{name: "impossible day", iso: "2023-02-30", want: datefmt.InvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, datefmt.FormatDate(tt.iso, datefmt.EnUS, time.UTC))
		})
	}
}

func TestFormatDate_LocationShiftsCalendarDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	assert.Equal(t, "May 14, 2023", datefmt.FormatDate("2023-05-14T20:00:00Z", datefmt.EnUS, time.UTC))
	assert.Equal(t, "May 15, 2023", datefmt.FormatDate("2023-05-14T20:00:00Z", datefmt.EnUS, tokyo))
}

func TestFormatDate_NilLocationIsUTC(t *testing.T) {
	assert.Equal(t, "May 14, 2023", datefmt.FormatDate("2023-05-14T23:00:00Z", datefmt.EnUS, nil))
}

func TestFormatDate_LocaleIsFixed(t *testing.T) {
	assert.Equal(t, "14 May 2023", datefmt.FormatDate("2023-05-14T10:00:00Z", datefmt.EnGB, time.UTC))
	assert.Equal(t, "May 14, 2023", datefmt.FormatDate("2023-05-14T10:00:00Z", datefmt.Locale{}, time.UTC))
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "October 17, 2026", datefmt.FormatTime(now, datefmt.EnUS, time.UTC))
}

func TestParseLocale(t *testing.T) {
	l, err := datefmt.ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, datefmt.EnUS, l)

	l, err = datefmt.ParseLocale("en-GB")
	require.NoError(t, err)
	assert.Equal(t, "en-GB", l.String())

	_, err = datefmt.ParseLocale("fr-FR")
	assert.Error(t, err)
}
