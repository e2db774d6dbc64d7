package runner

import (
	"context"
	"errors"
	"time"

	"github.com/rohmanhakim/last-updated/internal/config"
	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/internal/page"
	"github.com/rohmanhakim/last-updated/internal/stamper"
	"github.com/rohmanhakim/last-updated/internal/storage"
	"golang.org/x/sync/errgroup"
)

/*
 Runner stamps a batch of pages.

 - Targets run concurrently, at most `concurrency` at a time.
 - All targets share one Stamper, and through it one commit cache, so a
   file referenced by several pages is looked up once per run (modulo
   concurrent misses on the same key).
 - A failing target never stops the others. Its error is kept in the
   summary; the component that failed has already recorded it.
 - Run returns an error only when ctx is cancelled. Targets that had not
   started by then, or whose lookup was cut short, are reported as
   cancelled and their files are left untouched.
 - Final stats are recorded exactly once per run.
*/

type Runner struct {
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	stamper      *stamper.Stamper
	storageSink  storage.Sink
	concurrency  int
}

func NewRunner(
	metadataSink metadata.MetadataSink,
	runFinalizer metadata.RunFinalizer,
	stamper *stamper.Stamper,
	storageSink storage.Sink,
	concurrency int,
) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		metadataSink: metadataSink,
		runFinalizer: runFinalizer,
		stamper:      stamper,
		storageSink:  storageSink,
		concurrency:  concurrency,
	}
}

func (r *Runner) Run(ctx context.Context, targets []config.Target) (Summary, error) {
	start := time.Now()
	outcomes := make([]Outcome, len(targets))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Target: target, Status: StatusCancelled}
				return err
			}
			outcomes[i] = r.stampTarget(ctx, target)
			return nil
		})
	}
	waitErr := g.Wait()

	summary := newSummary(outcomes, time.Since(start))
	r.runFinalizer.RecordFinalRunStats(
		len(targets),
		summary.Stamped+summary.Unchanged,
		summary.Skipped,
		summary.Failed,
		summary.Duration,
	)

	if waitErr != nil {
		return summary, waitErr
	}
	return summary, ctx.Err()
}

func (r *Runner) stampTarget(ctx context.Context, target config.Target) Outcome {
	outcome := Outcome{Target: target}

	doc, err := page.LoadFile(target.File)
	if err != nil {
		var pageErr *page.PageError
		if !errors.As(err, &pageErr) {
			pageErr = &page.PageError{Message: err.Error(), Cause: page.ErrCauseReadFailure, Path: target.File}
		}
		r.metadataSink.RecordError(
			time.Now(),
			"runner",
			"Runner.stampTarget",
			page.MapPageErrorToMetadataCause(pageErr),
			pageErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrFile, target.File),
			},
		)
		outcome.Status = StatusFailed
		outcome.Err = pageErr
		return outcome
	}

	opts := stamper.Options{
		ElementID:     target.ElementID,
		Owner:         target.Owner,
		Repo:          target.Repo,
		FilePath:      target.FilePath,
		FallbackToNow: target.FallbackToNow,
	}
	stamped := r.stamper.UpdateLastUpdated(ctx, doc, opts)
	// a lookup cut short by cancellation reads as "no commit"; the text it
	// produced (today's date or unknown) must not reach the disk
	if ctx.Err() != nil {
		outcome.Status = StatusCancelled
		return outcome
	}
	if !stamped {
		outcome.Status = StatusSkipped
		return outcome
	}
	outcome.Display, _ = doc.TextByID(target.ElementID)

	writeResult, writeErr := r.storageSink.Write(target.File, doc)
	if writeErr != nil {
		outcome.Status = StatusFailed
		outcome.Err = writeErr
		return outcome
	}
	outcome.Write = writeResult
	if writeResult.Unchanged() {
		outcome.Status = StatusUnchanged
	} else {
		outcome.Status = StatusStamped
	}
	return outcome
}
