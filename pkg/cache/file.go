package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore implements Store on the local filesystem, one file per key.
// Key segments separated by "/" map to sub-directories of the root.
type FileStore struct {
	root     string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// NewFileStore creates a filesystem store rooted at the configured directory.
func NewFileStore(opts ...FileOption) (*FileStore, error) {
	cfg := &FileConfig{
		Root:     "data/cache",
		DirMode:  0o755,
		FileMode: 0o644,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(cfg.Root, os.FileMode(cfg.DirMode)); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}

	return &FileStore{
		root:     cfg.Root,
		dirMode:  os.FileMode(cfg.DirMode),
		fileMode: os.FileMode(cfg.FileMode),
	}, nil
}

// Root returns the base directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

// Set writes through a temp file and rename so readers never observe a
// partially written entry.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), s.dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		path, err := s.path(key)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("cache: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
