package commits

import (
	"fmt"

	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/pkg/failure"
)

type CommitErrorCause string

const (
	ErrCauseNetworkFailure CommitErrorCause = "network failure"
	ErrCauseHttpStatus     CommitErrorCause = "http status"
	ErrCauseRateLimited    CommitErrorCause = "rate limited"
	ErrCauseEmptyResult    CommitErrorCause = "no commits found"
	ErrCauseParseFailure   CommitErrorCause = "parse failure"
)

// CommitError never leaves this package: FetchLastCommitDate records it
// and reports absence.
type CommitError struct {
	Message    string
	Cause      CommitErrorCause
	StatusCode int
}

func (e *CommitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("commits error: %s", e.Cause)
	}
	return fmt.Sprintf("commits error: %s: %s", e.Cause, e.Message)
}

// Severity is always recoverable: a missing commit date degrades the
// display string, it never stops a run.
func (e *CommitError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapCommitErrorToMetadataCause maps commits-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCommitErrorToMetadataCause(err *CommitError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseRateLimited:
		return metadata.CausePolicyDisallow
	case ErrCauseHttpStatus, ErrCauseEmptyResult, ErrCauseParseFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
