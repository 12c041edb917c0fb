package fetch

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type SourceMock struct {
	mock.Mock
}

func (m *SourceMock) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

type DownloaderMock struct {
	mock.Mock
}

func (m *DownloaderMock) Download(ctx context.Context, url, path string) error {
	return m.Called(ctx, url, path).Error(0)
}
