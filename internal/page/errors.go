package page

import (
	"fmt"

	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/pkg/failure"
)

type PageErrorCause string

const (
	ErrCauseReadFailure   PageErrorCause = "failed to read page"
	ErrCauseParseFailure  PageErrorCause = "failed to parse page"
	ErrCauseRenderFailure PageErrorCause = "failed to render page"
)

type PageError struct {
	Message string
	Cause   PageErrorCause
	Path    string
}

func (e *PageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("page error: %s: %s: %s", e.Cause, e.Path, e.Message)
	}
	return fmt.Sprintf("page error: %s: %s", e.Cause, e.Message)
}

// Severity is recoverable: one bad page does not stop the others.
func (e *PageError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// MapPageErrorToMetadataCause maps page-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func MapPageErrorToMetadataCause(err *PageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseReadFailure:
		return metadata.CauseStorageFailure
	case ErrCauseParseFailure, ErrCauseRenderFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
