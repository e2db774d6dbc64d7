package commits

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/last-updated/internal/cache"
	"github.com/rohmanhakim/last-updated/internal/metadata"
	"github.com/tidwall/gjson"
)

/*
CommitFetcher

Responsibilities:
- Resolve the newest commit timestamp touching one path of one repository
- Serve repeated lookups from the owned cache without I/O
- Classify every failure and record it as a warning

Lookup Semantics:
- One GET per cache miss, per_page=1, newest first
- Only a 2xx JSON array whose first element carries commit.author.date
  counts as success; only successes are cached
- Failures collapse to absence; callers see (date, true) or ("", false)
- No retries. No credential unless one was configured explicitly
*/

type Fetcher interface {
	FetchLastCommitDate(ctx context.Context, owner, repo, path string) (string, bool)
}

type CommitFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	cache        cache.Cache
	param        ClientParam
}

// NewCommitFetcher creates a CommitFetcher. A nil commitCache gives the
// fetcher its own MemoryCache.
func NewCommitFetcher(
	metadataSink metadata.MetadataSink,
	commitCache cache.Cache,
	param ClientParam,
) *CommitFetcher {
	return NewCommitFetcherWithClient(
		metadataSink,
		commitCache,
		param,
		&http.Client{Timeout: param.timeout},
	)
}

// NewCommitFetcherWithClient creates a CommitFetcher with a custom HTTP client.
// This is useful for testing.
func NewCommitFetcherWithClient(
	metadataSink metadata.MetadataSink,
	commitCache cache.Cache,
	param ClientParam,
	httpClient *http.Client,
) *CommitFetcher {
	if commitCache == nil {
		commitCache = cache.NewMemoryCache()
	}
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &CommitFetcher{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		cache:        commitCache,
		param:        param,
	}
}

// FetchLastCommitDate returns the ISO-8601 date of the newest commit that
// touched path, or ("", false) when it cannot be determined.
func (f *CommitFetcher) FetchLastCommitDate(ctx context.Context, owner, repo, path string) (string, bool) {
	key := cache.Key(owner, repo, path)
	endpoint := f.commitsURL(owner, repo, path)
	if date, found := f.cache.Get(ctx, key); found && date != "" {
		f.metadataSink.RecordFetch(metadata.FetchEvent{
			FetchURL: endpoint,
			CacheHit: true,
		})
		return date, true
	}

	date, err := f.performFetch(ctx, endpoint)
	if err != nil {
		f.recordLookupError(owner, repo, path, endpoint, err)
		return "", false
	}

	f.cache.Put(ctx, key, date)
	return date, true
}

func (f *CommitFetcher) commitsURL(owner, repo, path string) string {
	query := url.Values{}
	query.Set("path", path)
	query.Set("per_page", "1")
	return fmt.Sprintf(
		"%s/repos/%s/%s/commits?%s",
		strings.TrimRight(f.param.baseURL, "/"),
		owner,
		repo,
		query.Encode(),
	)
}

func (f *CommitFetcher) performFetch(ctx context.Context, endpoint string) (string, *CommitError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &CommitError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", f.param.userAgent)
	if f.param.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.param.token)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metadataSink.RecordFetch(metadata.FetchEvent{
			FetchURL: endpoint,
			Duration: time.Since(start),
		})
		return "", &CommitError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	f.metadataSink.RecordFetch(metadata.FetchEvent{
		FetchURL:   endpoint,
		HTTPStatus: resp.StatusCode,
		Duration:   time.Since(start),
	})

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return "", &CommitError{
			Message:    fmt.Sprintf("GitHub API %d", resp.StatusCode),
			Cause:      ErrCauseRateLimited,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &CommitError{
			Message:    fmt.Sprintf("GitHub API %d", resp.StatusCode),
			Cause:      ErrCauseHttpStatus,
			StatusCode: resp.StatusCode,
		}
	}

	if readErr != nil {
		return "", &CommitError{
			Message:    fmt.Sprintf("failed to read response body: %v", readErr),
			Cause:      ErrCauseNetworkFailure,
			StatusCode: resp.StatusCode,
		}
	}

	date, parseErr := parseCommitDate(body)
	if parseErr != nil {
		parseErr.StatusCode = resp.StatusCode
		return "", parseErr
	}
	return date, nil
}

// parseCommitDate extracts commit.author.date from the first element of a
// commit listing.
func parseCommitDate(body []byte) (string, *CommitError) {
	if !gjson.ValidBytes(body) {
		return "", &CommitError{
			Message: "response is not valid JSON",
			Cause:   ErrCauseParseFailure,
		}
	}

	listing := gjson.ParseBytes(body)
	if !listing.IsArray() {
		return "", &CommitError{
			Message: "expected a JSON array of commits",
			Cause:   ErrCauseParseFailure,
		}
	}

	commitsFound := listing.Array()
	if len(commitsFound) == 0 {
		return "", &CommitError{
			Cause: ErrCauseEmptyResult,
		}
	}

	date := commitsFound[0].Get("commit.author.date")
	if date.Type != gjson.String || date.String() == "" {
		return "", &CommitError{
			Message: "first commit has no commit.author.date",
			Cause:   ErrCauseParseFailure,
		}
	}
	return date.String(), nil
}

func (f *CommitFetcher) recordLookupError(owner, repo, path, endpoint string, err *CommitError) {
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrOwner, owner),
		metadata.NewAttr(metadata.AttrRepo, repo),
		metadata.NewAttr(metadata.AttrPath, path),
		metadata.NewAttr(metadata.AttrURL, endpoint),
	}
	if err.StatusCode != 0 {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrHTTPStatus, strconv.Itoa(err.StatusCode)))
	}

	f.metadataSink.RecordError(
		time.Now(),
		"commits",
		"CommitFetcher.FetchLastCommitDate",
		mapCommitErrorToMetadataCause(err),
		fmt.Sprintf("failed fetching commit date for %s: %v", path, err),
		attrs,
	)
}

func (f *CommitFetcher) Param() ClientParam {
	return f.param
}

func (f *CommitFetcher) HttpClient() *http.Client {
	return f.httpClient
}

func (f *CommitFetcher) Cache() cache.Cache {
	return f.cache
}
