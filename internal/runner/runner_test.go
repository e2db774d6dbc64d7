package runner_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/last-updated/internal/commits"
	"github.com/rohmanhakim/last-updated/internal/config"
	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/rohmanhakim/last-updated/internal/runner"
	"github.com/rohmanhakim/last-updated/internal/stamper"
	"github.com/rohmanhakim/last-updated/internal/storage"
	"github.com/rohmanhakim/last-updated/pkg/hashutil"
	"github.com/rohmanhakim/last-updated/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type finalizerMock struct {
	mock.Mock
}

func (f *finalizerMock) RecordFinalRunStats(totalTargets, stamped, skipped, failed int, duration time.Duration) {
	f.Called(totalTargets, stamped, skipped, failed, duration)
}

const pageWithStamp = `<html><head></head><body><footer><span id="last-updated">Last updated: loading</span></footer></body></html>`
const pageWithoutStamp = `<html><head></head><body><p>nothing to stamp</p></body></html>`

var today = time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)

// commitAPI answers every path with a fixed commit date, except paths
// containing "missing" which get an empty listing.
func commitAPI(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if strings.Contains(r.URL.Query().Get("path"), "missing") {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"commit":{"author":{"date":"2023-05-14T10:00:00Z"}}}]`))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newRunner(t *testing.T, baseURL string, finalizer metadata.RunFinalizer, dryRun bool) *runner.Runner {
	t.Helper()
	sink := &metadata.NoopSink{}
	fetcher := commits.NewCommitFetcher(sink, nil, commits.NewClientParam(baseURL, "", 0))
	s := stamper.New(fetcher, stamper.WithClock(timeutil.FixedClock(today)))
	localSink := storage.NewLocalSink(sink, hashutil.HashAlgoBLAKE3, dryRun)
	return runner.NewRunner(sink, finalizer, s, &localSink, 2)
}

func target(file, filePath string, fallback bool) config.Target {
	return config.Target{
		File:          file,
		ElementID:     "last-updated",
		Owner:         "johnson-liu-code",
		Repo:          "johnson-liu-code.github.io",
		FilePath:      filePath,
		FallbackToNow: fallback,
	}
}

func TestRun_StampsSkipsAndFails(t *testing.T) {
	server, _ := commitAPI(t)
	dir := t.TempDir()

	stamped := writePage(t, dir, "index.html", pageWithStamp)
	unknown := writePage(t, dir, "unknown.html", pageWithStamp)
	skipped := writePage(t, dir, "plain.html", pageWithoutStamp)
	absent := filepath.Join(dir, "absent.html")

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", 4, 2, 1, 1, mock.Anything).Once()

	r := newRunner(t, server.URL, finalizer, false)
	summary, err := r.Run(context.Background(), []config.Target{
		target(stamped, "index.html", true),
		target(unknown, "missing.html", false),
		target(skipped, "plain.html", true),
		target(absent, "absent.html", true),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stamped)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())

	require.Len(t, summary.Outcomes, 4)
	assert.Equal(t, "Last updated: May 14, 2023", summary.Outcomes[0].Display)
	assert.Equal(t, "Last updated: unknown", summary.Outcomes[1].Display)
	assert.Equal(t, runner.StatusSkipped, summary.Outcomes[2].Status)
	assert.Equal(t, runner.StatusFailed, summary.Outcomes[3].Status)
	require.NotNil(t, summary.Outcomes[3].Err)

	content, err := os.ReadFile(stamped)
	require.NoError(t, err)
	assert.Contains(t, string(content), `<span id="last-updated">Last updated: May 14, 2023</span>`)

	content, err = os.ReadFile(skipped)
	require.NoError(t, err)
	assert.Equal(t, pageWithoutStamp, string(content), "pages without the element are not rewritten")

	finalizer.AssertExpectations(t)
}

func TestRun_SharedCacheAcrossTargets(t *testing.T) {
	server, hits := commitAPI(t)
	dir := t.TempDir()

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	r := newRunner(t, server.URL, finalizer, false)

	first := writePage(t, dir, "a.html", pageWithStamp)
	_, err := r.Run(context.Background(), []config.Target{target(first, "shared.html", true)})
	require.NoError(t, err)

	second := writePage(t, dir, "b.html", pageWithStamp)
	_, err = r.Run(context.Background(), []config.Target{target(second, "shared.html", true)})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestRun_SecondRunIsUnchanged(t *testing.T) {
	server, _ := commitAPI(t)
	dir := t.TempDir()
	file := writePage(t, dir, "index.html", pageWithStamp)

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	r := newRunner(t, server.URL, finalizer, false)
	targets := []config.Target{target(file, "index.html", true)}

	summary, err := r.Run(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stamped)

	summary, err = r.Run(context.Background(), targets)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stamped)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, runner.StatusUnchanged, summary.Outcomes[0].Status)
}

func TestRun_DryRunLeavesFilesAlone(t *testing.T) {
	server, _ := commitAPI(t)
	dir := t.TempDir()
	file := writePage(t, dir, "index.html", pageWithStamp)

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", 1, 1, 0, 0, mock.Anything).Once()

	r := newRunner(t, server.URL, finalizer, true)
	summary, err := r.Run(context.Background(), []config.Target{target(file, "index.html", true)})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 1)
	outcome := summary.Outcomes[0]
	assert.Equal(t, runner.StatusStamped, outcome.Status)
	assert.True(t, outcome.Write.DryRun())
	assert.Equal(t, "Last updated: May 14, 2023", outcome.Display)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, pageWithStamp, string(content))
	finalizer.AssertExpectations(t)
}

func TestRun_CancelledContext(t *testing.T) {
	server, hits := commitAPI(t)
	dir := t.TempDir()
	file := writePage(t, dir, "index.html", pageWithStamp)

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", 2, 0, 0, 0, mock.Anything).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, server.URL, finalizer, false)
	summary, err := r.Run(ctx, []config.Target{
		target(file, "index.html", true),
		target(file, "index.html", true),
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Cancelled)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))

	content, readErr := os.ReadFile(file)
	require.NoError(t, readErr)
	assert.Equal(t, pageWithStamp, string(content))
	finalizer.AssertExpectations(t)
}

func TestRun_CancelledDuringLookupLeavesFileAlone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	file := writePage(t, dir, "index.html", pageWithStamp)

	finalizer := new(finalizerMock)
	finalizer.On("RecordFinalRunStats", 1, 0, 0, 0, mock.Anything).Once()

	r := newRunner(t, server.URL, finalizer, false)
	summary, err := r.Run(ctx, []config.Target{target(file, "index.html", true)})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, runner.StatusCancelled, summary.Outcomes[0].Status)
	assert.Empty(t, summary.Outcomes[0].Display)
	assert.Equal(t, 1, summary.Cancelled)

	content, readErr := os.ReadFile(file)
	require.NoError(t, readErr)
	assert.Equal(t, pageWithStamp, string(content), "no fallback date is written for a cancelled lookup")
	finalizer.AssertExpectations(t)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "stamped", runner.StatusStamped.String())
	assert.Equal(t, "unchanged", runner.StatusUnchanged.String())
	assert.Equal(t, "skipped", runner.StatusSkipped.String())
	assert.Equal(t, "failed", runner.StatusFailed.String())
	assert.Equal(t, "cancelled", runner.StatusCancelled.String())
}
