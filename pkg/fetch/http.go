package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is a default limit for whole request including body read
const DefaultTimeout = 5 * time.Second

type HTTPSourceParams struct {
	// Client is a base http client, http.DefaultClient settings used if nil.
	// It's copied so Timeout of provided client is not modified.
	Client *http.Client

	// Timeout limits whole request time. DefaultTimeout used if zero, negative value disables timeout.
	Timeout time.Duration

	// UserAgent is an optional User-Agent header value
	UserAgent string
}

// HTTPSource fetches content with plain http GET requests.
type HTTPSource struct {
	userAgent string
	client    *http.Client
	log       *zap.Logger
}

func NewHTTPSource(logger *zap.Logger, params HTTPSourceParams) *HTTPSource {
	var client http.Client
	if params.Client != nil {
		client = *params.Client
	}

	switch {
	case params.Timeout == 0:
		client.Timeout = DefaultTimeout
	case params.Timeout > 0:
		client.Timeout = params.Timeout
	default:
		client.Timeout = 0
	}

	return &HTTPSource{
		userAgent: params.UserAgent,
		client:    &client,
		log:       logger.With(zap.String("component", "http_source")),
	}
}

func (s *HTTPSource) Timeout() time.Duration { return s.client.Timeout }

func (s *HTTPSource) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url failed: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("construct request failed: %w", err)
	}

	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		s.log.Debug("unexpected status code", zap.String("url", rawURL), zap.Int("code", resp.StatusCode))
		return nil, &UnexpectedStatusError{URL: rawURL, Code: resp.StatusCode}
	}

	return resp.Body, nil
}
