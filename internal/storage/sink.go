package storage

import (
	"errors"
	"os"
	"time"

	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/pkg/failure"
	"github.com/rohmanhakim/last-updated/pkg/fileutil"
	"github.com/rohmanhakim/last-updated/pkg/hashutil"
)

/*
Responsibilities
- Persist stamped pages back to their files

Output Characteristics
- Idempotent writes: a page whose bytes did not change is not rewritten
- Overwrite-safe reruns
- Dry runs render and hash but never touch the disk
*/

// Renderer is anything that serializes to HTML; *page.Document is one.
type Renderer interface {
	HTML() ([]byte, error)
}

type Sink interface {
	Write(path string, doc Renderer) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	hashAlgo     hashutil.HashAlgo
	dryRun       bool
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	hashAlgo hashutil.HashAlgo,
	dryRun bool,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
		hashAlgo:     hashAlgo,
		dryRun:       dryRun,
	}
}

func (s *LocalSink) Write(path string, doc Renderer) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(path, doc)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
		return WriteResult{}, storageError
	}

	if !writeResult.Unchanged() && !writeResult.DryRun() {
		s.metadataSink.RecordArtifact(
			metadata.ArtifactPage,
			writeResult.Path(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
				metadata.NewAttr(metadata.AttrHash, writeResult.ContentHash()),
			},
		)
	}
	return writeResult, nil
}

func (s *LocalSink) write(path string, doc Renderer) (WriteResult, failure.ClassifiedError) {
	content, err := doc.HTML()
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseRenderFailure,
			Path:      path,
		}
	}

	contentHash, err := hashutil.HashBytes(content, s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      path,
		}
	}

	if existing, readErr := os.ReadFile(path); readErr == nil {
		existingHash, hashErr := hashutil.HashBytes(existing, s.hashAlgo)
		if hashErr == nil && existingHash == contentHash {
			return NewWriteResult(path, contentHash, true, s.dryRun), nil
		}
	}

	if s.dryRun {
		return NewWriteResult(path, contentHash, false, true), nil
	}

	if writeErr := fileutil.WriteFile(path, content); writeErr != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		var fileErr *fileutil.FileError
		if errors.As(writeErr, &fileErr) {
			switch fileErr.Cause {
			case fileutil.ErrCauseDiskFull:
				cause = ErrCauseDiskFull
				retryable = true
			case fileutil.ErrCausePathError:
				cause = ErrCausePathError
			}
		}
		return WriteResult{}, &StorageError{
			Message:   writeErr.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      path,
		}
	}

	return NewWriteResult(path, contentHash, false, false), nil
}
