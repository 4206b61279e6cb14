package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/guarzo/resalepricer/internal/ratelimit"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultDelay     = 2 * time.Second
	DefaultTimeout   = 30 * time.Second

	// maxBodyBytes caps how much of a results page is read.
	maxBodyBytes = 8 << 20
)

// NetworkError reports a transport failure or a non-success HTTP status.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Config holds fetcher settings.
type Config struct {
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client // optional, overrides Timeout
}

// Fetcher issues paced HTTP GETs. Each marketplace adapter owns one, so the
// delay applies per adapter rather than globally.
type Fetcher struct {
	client    *http.Client
	pacer     *ratelimit.Pacer
	userAgent string
}

// New creates a Fetcher from cfg, filling in defaults for zero values.
func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Fetcher{
		client:    client,
		pacer:     ratelimit.NewPacer(cfg.Delay),
		userAgent: userAgent,
	}
}

// Fetch waits for the pacing delay and returns the decoded response body.
// Any failure is returned as a *NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("pacing: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	reader, err := bodyReader(resp)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("decoding body: %w", err)}
	}
	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	return body, nil
}

// LastRequest returns when this fetcher last let a request through.
func (f *Fetcher) LastRequest() time.Time {
	return f.pacer.LastRequest()
}

func (f *Fetcher) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("Cache-Control", "max-age=0")
}

// bodyReader unwraps the content encodings we advertise. Setting
// Accept-Encoding ourselves disables net/http's transparent gzip handling.
// Closing the returned reader leaves resp.Body open.
func bodyReader(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
