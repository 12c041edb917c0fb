package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ChainedSource calls all sources until one supports provided url
// If no source supports it ErrUnsupportedURL returned
type ChainedSource struct {
	Sources []Source
}

func (cs *ChainedSource) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	for _, source := range cs.Sources {
		rc, err := source.Open(ctx, url)
		switch {
		case errors.Is(err, nil):
			return rc, nil
		case errors.Is(err, ErrUnsupportedURL):
			continue
		default:
			return nil, fmt.Errorf("%w", err)
		}
	}

	return nil, ErrUnsupportedURL
}
