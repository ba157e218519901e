// Package media stores uploaded posters and videos on the local filesystem
// and serves them back by id.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("media not found")

type FilesystemStore struct {
	baseDir string
}

func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

func (s *FilesystemStore) path(name string) (string, error) {
	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" || clean == "" || clean != name {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// Save streams r into name. The file only appears once fully written.
func (s *FilesystemStore) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	full, err := s.path(name)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write media: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return 0, fmt.Errorf("store media: %w", err)
	}
	return n, nil
}

// Open returns ErrNotFound when name has no blob.
func (s *FilesystemStore) Open(name string) (*os.File, error) {
	full, err := s.path(name)
	if err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	return f, nil
}

func (s *FilesystemStore) Remove(name string) error {
	full, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
