package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/xakep666/license/pkg/fetch"

	"github.com/google/go-github/v18/github"
	"go.uber.org/zap"
)

var licenseRe = regexp.MustCompile(`^licenses/([^/]+)$`)

// URLTemplate returns a license.Resolver url template pointing to licenses API of client.
func URLTemplate(client *github.Client) string {
	return client.BaseURL.String() + "licenses/{id}"
}

type SourceParams struct {
	Client *github.Client
}

// Source fetches license texts from GitHub licenses API (i.e. https://api.github.com/licenses/mit).
// Urls not pointing to this API are not supported.
type Source struct {
	SourceParams

	log *zap.Logger
}

func NewSource(logger *zap.Logger, params SourceParams) *Source {
	return &Source{
		SourceParams: params,
		log:          logger.With(zap.String("component", "github_source")),
	}
}

func (s *Source) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	key, ok := s.licenseKey(rawURL)
	if !ok {
		return nil, fetch.ErrUnsupportedURL
	}

	l := s.log.With(zap.String("key", key))

	lic, _, err := s.Client.Licenses.Get(ctx, key)
	var (
		rateLimitErr *github.RateLimitError
		responseErr  *github.ErrorResponse
	)
	switch {
	case errors.Is(err, nil):
		// pass
	case errors.As(err, &rateLimitErr):
		l.Warn("rate limit reached", zap.Time("reset", rateLimitErr.Rate.Reset.Time))
		return nil, &apiError{
			message: fmt.Sprintf("github rate limit reached, resets at %s: %s", rateLimitErr.Rate.Reset.Time, rateLimitErr.Message),
			err:     err,
		}
	case errors.As(err, &responseErr) && responseErr.Response != nil:
		return nil, &fetch.UnexpectedStatusError{URL: rawURL, Code: responseErr.Response.StatusCode}
	case errors.As(err, &responseErr):
		// Error() of go-github errors dereferences Response
		return nil, &apiError{message: "github failed: " + responseErr.Message, err: err}
	default:
		return nil, fmt.Errorf("github failed: %w", err)
	}

	body := lic.GetBody()
	if body == "" {
		return nil, fmt.Errorf("github returned empty license body for %s", key)
	}

	l.Debug("license fetched", zap.String("name", lic.GetName()), zap.String("spdx_id", lic.GetSPDXID()))

	return ioutil.NopCloser(strings.NewReader(body)), nil
}

// apiError keeps go-github error for errors.As but formats only its message
type apiError struct {
	message string
	err     error
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) Unwrap() error { return e.err }

// licenseKey extracts github license key from api url. Keys are lowercase SPDX identifiers.
func (s *Source) licenseKey(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	base := s.Client.BaseURL
	if u.Scheme != base.Scheme || u.Host != base.Host || !strings.HasPrefix(u.Path, base.Path) {
		return "", false
	}

	matches := licenseRe.FindStringSubmatch(strings.TrimPrefix(u.Path, base.Path))
	if len(matches) == 0 {
		return "", false
	}

	return strings.ToLower(matches[1]), true
}
