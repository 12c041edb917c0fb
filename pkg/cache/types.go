// Package cache contains fetch.Source decorators caching fetched license texts.
package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/xakep666/license/pkg/fetch"
)

// Cacher covers all interfaces which calls should be cached
type Cacher interface {
	fetch.Source
}

type Direct struct {
	fetch.Source
}

// readBacked fully reads content from backed source so it can be stored.
func readBacked(ctx context.Context, backed Cacher, url string) ([]byte, error) {
	rc, err := backed.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	defer rc.Close()

	content, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read content failed: %w", err)
	}

	return content, nil
}

func reader(content []byte) io.ReadCloser {
	return ioutil.NopCloser(bytes.NewReader(content))
}
