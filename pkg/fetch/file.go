package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileDownloader streams content from Source into a file.
type FileDownloader struct {
	source Source
	log    *zap.Logger
}

func NewFileDownloader(logger *zap.Logger, source Source) *FileDownloader {
	return &FileDownloader{
		source: source,
		log:    logger.With(zap.String("component", "file_downloader")),
	}
}

func (d *FileDownloader) Download(ctx context.Context, url, path string) error {
	l := d.log.With(zap.String("url", url), zap.String("path", path))
	l.Debug("Starting download")

	if err := d.download(ctx, url, path); err != nil {
		l.Debug("Download failed", zap.Error(err))
		return &downloadError{url: url, err: err}
	}

	l.Debug("Download finished")
	return nil
}

func (d *FileDownloader) download(ctx context.Context, url, path string) error {
	body, err := d.source.Open(ctx, url)
	if err != nil {
		return err
	}

	defer body.Close()

	return WriteFile(path, body)
}

const tmpExt = ".tmp"

// IsTempFile reports whether file name belongs to an unfinished WriteFile call.
func IsTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tmpExt)
}

// WriteFile writes everything from r to path creating parent directories.
// Data goes to a temporary file in the same directory which is renamed to path on success,
// so a partially written file never appears at path.
func WriteFile(path string, r io.Reader) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory failed: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*"+tmpExt)
	if err != nil {
		return fmt.Errorf("create temp file failed: %w", err)
	}

	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	_, err = io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if err != nil {
		return fmt.Errorf("write to temp file failed: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close temp file failed: %w", closeErr)
	}

	// CreateTemp makes owner-only files
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file failed: %w", err)
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file failed: %w", err)
	}

	return nil
}
