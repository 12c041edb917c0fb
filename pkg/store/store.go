// Package store keeps license texts in a flat directory of <identifier>.txt files
// downloading missing ones on demand.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xakep666/license/pkg/fetch"
	"github.com/xakep666/license/pkg/license"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	lockDir = ".locks"

	defaultLockRetryDelay = 100 * time.Millisecond
)

type StoreParams struct {
	// Dir is a directory with cached license texts
	Dir string

	Downloader fetch.Downloader

	// LockRetryDelay is a delay between attempts to take download lock. Default is 100ms.
	LockRetryDelay time.Duration
}

type Store struct {
	StoreParams

	log *zap.Logger
}

func NewStore(logger *zap.Logger, params StoreParams) *Store {
	return &Store{
		StoreParams: params,
		log:         logger.With(zap.String("component", "store")),
	}
}

// Ensure makes sure that license text exists at license path downloading it if needed.
// Downloader is not called if file already exists.
func (s *Store) Ensure(ctx context.Context, lic license.License) error {
	l := s.log.With(zap.Stringer("license", &lic))

	exists, err := fileExists(lic.Path)
	if err != nil {
		return err
	}

	if exists {
		l.Debug("License text found in cache", zap.String("path", lic.Path))
		return nil
	}

	unlock, err := s.lock(ctx, lic)
	if err != nil {
		return fmt.Errorf("acquire download lock failed: %w", err)
	}

	defer unlock()

	// other process could download it while we were waiting for lock
	exists, err = fileExists(lic.Path)
	if err != nil {
		return err
	}

	if exists {
		l.Debug("License text downloaded by other process", zap.String("path", lic.Path))
		return nil
	}

	l.Info("Downloading license text", zap.String("url", lic.URL))

	if err := s.Downloader.Download(ctx, lic.URL, lic.Path); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Open opens cached license text. Ensure should be called before.
func (s *Store) Open(lic license.License) (io.ReadCloser, error) {
	f, err := os.Open(lic.Path)
	if err != nil {
		return nil, fmt.Errorf("open license text failed: %w", err)
	}

	return f, nil
}

// List returns identifiers of cached licenses.
// Subdirectories and unfinished downloads are skipped.
// Missing directory means empty cache.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	switch {
	case errors.Is(err, nil):
		// pass
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug("Data directory not exists", zap.String("dir", s.Dir))
		return nil, nil
	default:
		return nil, fmt.Errorf("read data directory failed: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if fetch.IsTempFile(name) {
			continue
		}

		regular, err := s.isRegular(entry)
		if err != nil {
			return nil, err
		}

		if !regular {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, filepath.Ext(name)))
	}

	return ids, nil
}

func (s *Store) isRegular(entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}

	info, err := os.Stat(filepath.Join(s.Dir, entry.Name()))
	switch {
	case errors.Is(err, nil):
		return info.Mode().IsRegular(), nil
	case errors.Is(err, fs.ErrNotExist):
		// dangling symlink
		return false, nil
	default:
		return false, fmt.Errorf("stat %s failed: %w", entry.Name(), err)
	}
}

func (s *Store) lock(ctx context.Context, lic license.License) (func(), error) {
	dir := filepath.Join(filepath.Dir(lic.Path), lockDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory failed: %w", err)
	}

	retryDelay := s.LockRetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultLockRetryDelay
	}

	fl := flock.New(filepath.Join(dir, lic.Short+".lock"))

	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, err
	}

	if !locked {
		return nil, fmt.Errorf("lock %s not acquired", fl.Path())
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.log.Warn("Unlock failed", zap.String("lock", fl.Path()), zap.Error(err))
		}
	}, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, nil):
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s failed: %w", path, err)
	}
}
