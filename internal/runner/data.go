package runner

import (
	"time"

	"github.com/rohmanhakim/last-updated/internal/config"
	"github.com/rohmanhakim/last-updated/internal/storage"
	"github.com/rohmanhakim/last-updated/pkg/failure"
)

type Status int

const (
	// text written and file updated (or would be, in a dry run)
	StatusStamped Status = iota
	// text written, file already held identical bytes
	StatusUnchanged
	// page has no element with the target id
	StatusSkipped
	StatusFailed
	// run cancelled before the page was written
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusStamped:
		return "stamped"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of stamping one target.
type Outcome struct {
	Target  config.Target
	Status  Status
	Display string
	Write   storage.WriteResult
	Err     failure.ClassifiedError
}

type Summary struct {
	Outcomes  []Outcome
	Stamped   int
	Unchanged int
	Skipped   int
	Failed    int
	Cancelled int
	Duration  time.Duration
}

func newSummary(outcomes []Outcome, duration time.Duration) Summary {
	summary := Summary{
		Outcomes: outcomes,
		Duration: duration,
	}
	for _, o := range outcomes {
		switch o.Status {
		case StatusStamped:
			summary.Stamped++
		case StatusUnchanged:
			summary.Unchanged++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		case StatusCancelled:
			summary.Cancelled++
		}
	}
	return summary
}

func (s Summary) HasFailures() bool {
	return s.Failed > 0
}
