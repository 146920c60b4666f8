package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marco/cinelog/internal/pagecache"
	"github.com/marco/cinelog/internal/retry"
)

// userAgent identifies the client to source sites. A plain browser UA: some
// poster catalogs refuse the default Go one outright.
const userAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Mobile Safari/537.36"

// maxBodySize bounds how much of any response is read. Posters and search
// pages are small; anything larger is not what we asked for.
const maxBodySize = 16 << 20

// fetcher wraps an http.Client with the shared request discipline: UA
// header, hard per-request timeout, bounded retry for transient failures,
// and an optional page cache for search-style GETs.
type fetcher struct {
	client         *http.Client
	pages          pagecache.Cache
	maxAttempts    int
	initialBackoff time.Duration
}

func newFetcher(timeout time.Duration, pages pagecache.Cache, maxAttempts int, initialBackoff time.Duration) *fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	if initialBackoff <= 0 {
		initialBackoff = time.Second
	}
	if pages == nil {
		pages = pagecache.Disabled{}
	}
	return &fetcher{
		client:         &http.Client{Timeout: timeout},
		pages:          pages,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
	}
}

// get performs a single GET. A non-200 response is returned as a
// *retry.StatusError so callers can tell "candidate missing" from
// "transport failed".
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}
	return body, nil
}

// getRetry performs a GET with bounded backoff for transient failures.
func (f *fetcher) getRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, func() error {
		var ferr error
		body, ferr = f.get(ctx, rawURL)
		return ferr
	}, f.maxAttempts, f.initialBackoff)
	return body, err
}

// getPage is getRetry with write-through page caching. Only used for
// search and summary pages whose URL is a stable query; poster candidate
// URLs bypass the cache because their bodies are the product itself.
func (f *fetcher) getPage(ctx context.Context, rawURL string) ([]byte, error) {
	if body, ok := f.pages.Get(rawURL); ok {
		return body, nil
	}
	body, err := f.getRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	f.pages.Set(rawURL, body)
	return body, nil
}
