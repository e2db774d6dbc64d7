package metadata

import (
	"time"

	"github.com/apex/log"
)

/*
Metadata Collected
- Commit lookups (URL, status, duration, cache hit)
- Lookup failures (cause, path, error)
- Written pages (path, content hash)

Structured logging is preferred. Attributes are primitive values only.

Metadata is write-only.
No component may read metadata to influence stamping decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(event FetchEvent)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordFinalRunStats(
		totalTargets int,
		stamped int,
		skipped int,
		failed int,
		duration time.Duration,
	)
}

/*
Recorder writes metadata events through apex/log.
Errors are emitted at warn level: every failure this program records is
absorbed by the caller, so none of them is an error from the user's point
of view. Fetches are debug, artifacts and run stats are info.
*/
type Recorder struct {
	logger log.Interface
}

func NewRecorder(logger log.Interface) *Recorder {
	if logger == nil {
		logger = log.Log
	}
	return &Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	fields := toFields(attrs)
	fields["package"] = packageName
	fields["action"] = action
	fields["cause"] = cause.String()
	fields["observed_at"] = observedAt.Format(time.RFC3339)
	r.logger.WithFields(fields).Warn(details)
}

func (r *Recorder) RecordFetch(event FetchEvent) {
	r.logger.WithFields(log.Fields{
		"url":         event.FetchURL,
		"http_status": event.HTTPStatus,
		"duration_ms": event.Duration.Milliseconds(),
		"cache_hit":   event.CacheHit,
	}).Debug("fetch")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := toFields(attrs)
	fields["kind"] = string(kind)
	r.logger.WithFields(fields).Infof("wrote %s", path)
}

/*
RecordFinalRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run, after every target has finished.
  - The provided counts MUST be derived from runner state.
*/
func (r *Recorder) RecordFinalRunStats(
	totalTargets int,
	stamped int,
	skipped int,
	failed int,
	duration time.Duration,
) {
	stats := runStats{
		totalTargets: totalTargets,
		stamped:      stamped,
		skipped:      skipped,
		failed:       failed,
		durationMs:   duration.Milliseconds(),
	}
	r.logger.WithFields(log.Fields{
		"targets":     stats.totalTargets,
		"stamped":     stats.stamped,
		"skipped":     stats.skipped,
		"failed":      stats.failed,
		"duration_ms": stats.durationMs,
	}).Info("run finished")
}

func toFields(attrs []Attribute) log.Fields {
	fields := log.Fields{}
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	return fields
}

// NoopSink, struct that implements MetadataSink and RunFinalizer but does nothing.
// Tests inject it when they do not care about observability.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(event FetchEvent) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalRunStats(
	totalTargets int,
	stamped int,
	skipped int,
	failed int,
	duration time.Duration,
) {
}
