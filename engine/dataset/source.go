package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/WessleyAI/mpg-dashboard/pkg/fn"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultURL is the UCI Machine Learning Repository export of the Auto MPG
// dataset (id 9).
const DefaultURL = "https://archive.ics.uci.edu/static/public/9/data.csv"

// Source supplies the raw record-oriented input for the loader.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// HTTPSource fetches a CSV document over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Retry  fn.RetryOpts
}

// NewHTTPSource creates an HTTPSource with a bounded client timeout.
// attempts <= 1 disables retries.
func NewHTTPSource(url string, timeout time.Duration, attempts int) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := fn.DefaultRetry
	retry.MaxAttempts = attempts
	retry.Retryable = func(err error) bool {
		var se *StatusError
		if errors.As(err, &se) {
			return se.Code >= 500 || se.Code == http.StatusTooManyRequests
		}
		return true
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Retry:  retry,
	}
}

// StatusError reports a non-200 response from the data source.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

func (s *HTTPSource) Name() string { return s.URL }

// Open downloads the whole document so that retries cover the body read.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	result := fn.Retry(ctx, s.Retry, func(ctx context.Context) fn.Result[[]byte] {
		return fn.FromPair(s.get(ctx))
	})
	body, err := result.Unwrap()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "mpg-dashboard/1.0 (dataset loader)")
	req.Header.Set("Accept", "text/csv, */*")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: s.URL, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// FileSource reads a CSV file from disk. Files ending in .gz or .zst are
// decompressed on the fly.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", s.Path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", s.Path, err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
	default:
		return f, nil
	}
}

// stackedCloser closes a decompressor before the file underneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (c *stackedCloser) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
