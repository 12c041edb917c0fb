// Package observ contains helpers to observe outgoing requests
package observ

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReadCounter counts bytes read from wrapped reader and reports total on Close
type ReadCounter struct {
	io.ReadCloser

	Size    int
	OnClose func(size int)
}

func (r *ReadCounter) Read(b []byte) (int, error) {
	n, err := r.ReadCloser.Read(b)
	r.Size += n
	return n, err
}

func (r *ReadCounter) Close() error {
	err := r.ReadCloser.Close()
	if r.OnClose != nil {
		r.OnClose(r.Size)
		r.OnClose = nil
	}
	return err
}

// LogTransport is a wrapper of http.RoundTripper logging requests through zap
type LogTransport struct {
	http.RoundTripper

	ServiceName string
	Log         *zap.Logger
}

func (t *LogTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	transport := http.DefaultTransport
	if t.RoundTripper != nil {
		transport = t.RoundTripper
	}

	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}

	l := log.With(
		zap.String("service", t.ServiceName),
		zap.String("method", request.Method),
		zap.Stringer("url", request.URL),
	)

	start := time.Now()
	response, err := transport.RoundTrip(request)
	latency := time.Since(start)
	if err != nil {
		l.Warn("HTTP request failed", zap.Duration("latency", latency), zap.Error(err))
		return nil, err
	}

	l = l.With(zap.Int("response_code", response.StatusCode))
	l.Info("HTTP request",
		zap.Duration("latency", latency),
		zap.Int64("content_length", response.ContentLength),
	)

	response.Body = &ReadCounter{
		ReadCloser: response.Body,
		OnClose: func(size int) {
			l.Debug("HTTP response body closed",
				zap.Int("response_size", size),
				zap.Duration("total_latency", time.Since(start)),
			)
		},
	}

	return response, nil
}
