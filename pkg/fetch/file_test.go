package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xakep666/license/pkg/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileDownloader_Download(t *testing.T) {
	t.Parallel()
	mockedServerMux := http.NewServeMux()
	mockedServerMux.HandleFunc("/text/MIT.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, mitText)
	})
	mockedServerMux.HandleFunc("/text/broken.txt", func(w http.ResponseWriter, r *http.Request) {
		// promise more than sent so client gets unexpected EOF
		w.Header().Set("Content-Length", "100000")
		_, _ = fmt.Fprint(w, "MIT License")
	})

	server := httptest.NewServer(mockedServerMux)
	t.Cleanup(server.Close)

	newDownloader := func(t *testing.T) *fetch.FileDownloader {
		return fetch.NewFileDownloader(zaptest.NewLogger(t),
			fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Client: server.Client()}))
	}

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "MIT.txt")

		err := newDownloader(t).Download(context.Background(), server.URL+"/text/MIT.txt", path)
		if assert.NoError(t, err) {
			content, err := ioutil.ReadFile(path)
			if assert.NoError(t, err) {
				assert.Equal(t, mitText, string(content))
			}
		}
	})

	t.Run("bad status leaves no file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "NOPE.txt")

		err := newDownloader(t).Download(context.Background(), server.URL+"/text/NOPE.txt", path)
		assert.True(t, errors.Is(err, fetch.ErrDownloadFailed), "Expected ErrDownloadFailed, got", err)

		var statusErr *fetch.UnexpectedStatusError
		if assert.True(t, errors.As(err, &statusErr), "Expected UnexpectedStatusError, got", err) {
			assert.Equal(t, http.StatusNotFound, statusErr.Code)
		}

		assert.NoFileExists(t, path)
	})

	t.Run("truncated body leaves no file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.txt")

		err := newDownloader(t).Download(context.Background(), server.URL+"/text/broken.txt", path)
		assert.True(t, errors.Is(err, fetch.ErrDownloadFailed), "Expected ErrDownloadFailed, got", err)
		assert.NoFileExists(t, path)

		entries, err := ioutil.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "temporary file must be removed")
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "MIT.txt")
		require.NoError(t, ioutil.WriteFile(path, []byte("old"), 0o644))

		err := newDownloader(t).Download(context.Background(), server.URL+"/text/MIT.txt", path)
		if assert.NoError(t, err) {
			content, err := ioutil.ReadFile(path)
			if assert.NoError(t, err) {
				assert.Equal(t, mitText, string(content))
			}
		}
	})
}

func TestFileDownloader_Download_sourceError(t *testing.T) {
	t.Parallel()
	var sourceMock fetch.SourceMock
	defer sourceMock.AssertExpectations(t)

	expectedErr := fmt.Errorf("test-err")
	sourceMock.On("Open", mock.Anything, "https://example.com/MIT.txt").Return(nil, expectedErr).Once()

	path := filepath.Join(t.TempDir(), "MIT.txt")
	err := fetch.NewFileDownloader(zaptest.NewLogger(t), &sourceMock).
		Download(context.Background(), "https://example.com/MIT.txt", path)

	assert.True(t, errors.Is(err, expectedErr), "unexpected error", err)
	assert.True(t, errors.Is(err, fetch.ErrDownloadFailed), "unexpected error", err)
	assert.Contains(t, err.Error(), "download https://example.com/MIT.txt failed")
	assert.NoFileExists(t, path)
}

type failingReader struct {
	io.Reader
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if errors.Is(err, io.EOF) {
		return n, r.err
	}
	return n, err
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "MIT.txt")

		if assert.NoError(t, fetch.WriteFile(path, strings.NewReader(mitText))) {
			info, err := os.Stat(path)
			if assert.NoError(t, err) {
				assert.Equal(t, int64(len(mitText)), info.Size())
			}
		}
	})

	t.Run("reader error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "MIT.txt")
		expectedErr := fmt.Errorf("connection reset")

		err := fetch.WriteFile(path, &failingReader{Reader: strings.NewReader("partial"), err: expectedErr})
		assert.True(t, errors.Is(err, expectedErr), "unexpected error", err)
		assert.NoFileExists(t, path)

		entries, err := ioutil.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("temp file is distinguishable from hidden target", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".hidden.txt")

		var inFlight []string
		require.NoError(t, fetch.WriteFile(path, &dirSnapshotReader{dir: dir, names: &inFlight}))

		if assert.Len(t, inFlight, 1) {
			assert.True(t, fetch.IsTempFile(inFlight[0]), inFlight[0])
		}
		assert.False(t, fetch.IsTempFile(filepath.Base(path)))
		assert.FileExists(t, path)
	})
}

// dirSnapshotReader records directory content on first read and returns EOF
type dirSnapshotReader struct {
	dir   string
	names *[]string
}

func (r *dirSnapshotReader) Read([]byte) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		*r.names = append(*r.names, entry.Name())
	}

	return 0, io.EOF
}
