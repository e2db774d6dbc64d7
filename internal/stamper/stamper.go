package stamper

import (
	"context"
	"time"

	"github.com/rohmanhakim/last-updated/internal/commits"
	"github.com/rohmanhakim/last-updated/internal/datefmt"
	"github.com/rohmanhakim/last-updated/pkg/timeutil"
)

/*
Stamper writes "Last updated: ..." into a page element.

Display rules, in order:
  - the formatted date of the newest commit touching the file
  - the formatted current date, when the lookup yields nothing and
    FallbackToNow is set
  - "Last updated: unknown"

A page without the target element is left alone: no lookup, no write, no
error. Calls are not coordinated; when two calls target the same element
the last one to finish wins.
*/

const (
	DisplayPrefix  = "Last updated: "
	UnknownDisplay = DisplayPrefix + "unknown"
)

// TextTarget is the slice of a DOM the stamper needs.
// *page.Document satisfies it.
type TextTarget interface {
	HasElement(id string) bool
	SetTextByID(id, text string) bool
}

type Options struct {
	ElementID     string
	Owner         string
	Repo          string
	FilePath      string
	FallbackToNow bool
}

// DefaultOptions returns Options with fallback-to-now enabled.
func DefaultOptions() Options {
	return Options{FallbackToNow: true}
}

type Stamper struct {
	fetcher  commits.Fetcher
	clock    timeutil.Clock
	locale   datefmt.Locale
	location *time.Location
}

type Option func(*Stamper)

// WithClock overrides the source of "today" used for the fallback.
func WithClock(clock timeutil.Clock) Option {
	return func(s *Stamper) {
		s.clock = clock
	}
}

func WithLocale(locale datefmt.Locale) Option {
	return func(s *Stamper) {
		s.locale = locale
	}
}

// WithLocation sets the time zone in which calendar days are counted.
func WithLocation(location *time.Location) Option {
	return func(s *Stamper) {
		s.location = location
	}
}

func New(fetcher commits.Fetcher, opts ...Option) *Stamper {
	s := &Stamper{
		fetcher:  fetcher,
		clock:    timeutil.SystemClock,
		locale:   datefmt.EnUS,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateLastUpdated resolves the display string for opts and writes it into
// the element opts.ElementID of target. It reports whether a write happened.
func (s *Stamper) UpdateLastUpdated(ctx context.Context, target TextTarget, opts Options) bool {
	if target == nil || !target.HasElement(opts.ElementID) {
		return false
	}

	display := s.Display(ctx, opts)
	return target.SetTextByID(opts.ElementID, display)
}

// Display derives the string UpdateLastUpdated would write.
func (s *Stamper) Display(ctx context.Context, opts Options) string {
	if iso, ok := s.fetcher.FetchLastCommitDate(ctx, opts.Owner, opts.Repo, opts.FilePath); ok {
		return DisplayPrefix + datefmt.FormatDate(iso, s.locale, s.location)
	}
	if opts.FallbackToNow {
		return DisplayPrefix + datefmt.FormatTime(s.clock(), s.locale, s.location)
	}
	return UnknownDisplay
}
