// Package fetch downloads roster files over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrDownloadFailed wraps every failure to obtain the remote file
	ErrDownloadFailed = errors.New("download failed")
	// ErrTooLarge means the body exceeded the configured limit
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Config holds the download limits
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Client downloads files with an instrumented transport
type Client struct {
	http     *http.Client
	maxBytes int64
}

// Download is a fetched file
type Download struct {
	Data []byte
	// Filename is taken from the URL path; it selects the workbook format
	Filename    string
	ContentType string
}

// NewClient creates a client. base may be nil, in which case the default
// transport is used.
func NewClient(cfg Config, base http.RoundTripper) *Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		maxBytes: cfg.MaxBytes,
	}
}

// Download fetches rawURL. Only http and https URLs are accepted.
func (c *Client) Download(ctx context.Context, rawURL string) (*Download, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrDownloadFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrDownloadFailed, ErrTooLarge, c.maxBytes)
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = ""
	}
	return &Download{Data: data, Filename: name, ContentType: resp.Header.Get("Content-Type")}, nil
}
