// Package fetch downloads license texts into local files.
// Transports are pluggable through the Source interface,
// Downloader is the capability used by the cache controller.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDownloadFailed matches every error returned by FileDownloader
	ErrDownloadFailed = errors.New("download failed")

	// ErrUnsupportedURL returned by Source if it can't handle provided url
	ErrUnsupportedURL = errors.New("unsupported url")
)

// UnexpectedStatusError returned when server responds with non-success status code
type UnexpectedStatusError struct {
	URL  string
	Code int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected response code %d from %s", e.Code, e.URL)
}

type Source interface {
	// Open returns a reader of content located at url. Caller must close it.
	// It should return ErrUnsupportedURL if url can't be handled by this source.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

type Downloader interface {
	// Download saves content located at url to file at path creating parent directories.
	// File at path is either absent or complete after return.
	Download(ctx context.Context, url, path string) error
}

type downloadError struct {
	url string
	err error
}

func (e *downloadError) Error() string {
	return fmt.Sprintf("download %s failed: %s", e.url, e.err)
}

func (e *downloadError) Unwrap() error { return e.err }

func (e *downloadError) Is(target error) bool { return target == ErrDownloadFailed }
