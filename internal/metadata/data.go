package metadata

import (
	"time"
)

/*
runStats
  - Represents a terminal, derived summary of a completed stamping run
  - Contains only aggregate counts and durations
  - Is computed by the runner after every target has finished
  - Is recorded exactly once
*/
type runStats struct {
	totalTargets int
	stamped      int
	skipped      int
	failed       int
	durationMs   int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Transport failures: DNS, connection resets, cancelled requests.

# CausePolicyDisallow

  - The hosting API refused the request (403, 429, rate limit exhausted).

# CauseContentInvalid

  - A response or page was received but could not be used
    (non-2xx body, empty commit list, malformed JSON, unparseable HTML).

# CauseStorageFailure

  - Failure while reading or writing a page on disk.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactPage ArtifactKind = "page"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrOwner      AttributeKey = "owner"
	AttrRepo       AttributeKey = "repo"
	AttrPath       AttributeKey = "path"
	AttrElementID  AttributeKey = "element_id"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrFile       AttributeKey = "file"
	AttrHash       AttributeKey = "hash"
	AttrMessage    AttributeKey = "message"
)

// FetchEvent is the observable outcome of one commit lookup. A lookup
// served from the cache has CacheHit set and no status or duration.
type FetchEvent struct {
	FetchURL   string
	HTTPStatus int
	Duration   time.Duration
	CacheHit   bool
}
