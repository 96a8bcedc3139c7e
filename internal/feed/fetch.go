package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL       = "https://www.national-lottery.co.uk/results/lotto/draw-history/csv"
	DefaultUserAgent = "Mozilla/5.0 (+bonus-ball lambda; draw history)"
	DefaultTimeout   = 15 * time.Second

	maxBodyBytes = 8 << 20
)

// Format is how a deployment's feed body is laid out. It is configuration,
// never sniffed from the response.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatHTML:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown feed format %q (want csv, json or html)", s)
	}
}

// Accept is the Accept header sent for the format.
func (f Format) Accept() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html"
	default:
		return "text/csv"
	}
}

// StatusError is a non-2xx answer from the feed host.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string // first KiB, for logs
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed %s: status %d", e.URL, e.StatusCode)
}

// ErrBodyTooLarge means the feed body exceeded the fetcher's size cap. The
// body is rejected whole rather than parsed from a cut-off prefix.
var ErrBodyTooLarge = errors.New("feed body too large")

// Fetcher downloads feed bodies. One request per call; no retries.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64 // 8 MiB when zero
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch GETs url and returns the body. Transport failures and timeouts come
// back wrapped; non-2xx statuses come back as *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, url string, format Format) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", format.Accept())
	req.Header.Set("User-Agent", f.UserAgent)

	cli := f.Client
	if cli == nil {
		cli = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := cli.Do(req)
	if err != nil {
		return "", fmt.Errorf("get feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(b)}
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = maxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(b)) > limit {
		return "", fmt.Errorf("get feed %s: %w (over %d bytes)", url, ErrBodyTooLarge, limit)
	}
	return string(b), nil
}
