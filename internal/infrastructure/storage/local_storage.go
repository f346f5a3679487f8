package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var _ DocumentStorage = (*LocalDocumentStorage)(nil)

// LocalDocumentStorage stores documents on the local filesystem. It is meant
// for development and single-instance deployments; downloads are streamed by
// the handler because there are no presigned URLs.
type LocalDocumentStorage struct {
	root string
}

// NewLocalDocumentStorage creates a store rooted at the given directory.
func NewLocalDocumentStorage(root string) (*LocalDocumentStorage, error) {
	if root == "" {
		return nil, errors.New("storage root directory is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &LocalDocumentStorage{root: abs}, nil
}

func (s *LocalDocumentStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so readers never see partial content
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store object: %w", err)
	}

	return nil
}

func (s *LocalDocumentStorage) Download(ctx context.Context, storageKey string) ([]byte, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return data, nil
}

func (s *LocalDocumentStorage) Delete(ctx context.Context, storageKey string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

func (s *LocalDocumentStorage) Exists(ctx context.Context, storageKey string) (bool, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}

	return true, nil
}

// PresignDownloadURL is not supported by the local driver.
func (s *LocalDocumentStorage) PresignDownloadURL(ctx context.Context, storageKey, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrPresignUnsupported
}

// Root returns the storage root directory.
func (s *LocalDocumentStorage) Root() string {
	return s.root
}

// resolve maps a storage key onto a path under the root. Keys that escape
// the root are rejected.
func (s *LocalDocumentStorage) resolve(storageKey string) (string, error) {
	if storageKey == "" {
		return "", ErrEmptyStorageKey
	}

	path := filepath.Join(s.root, filepath.FromSlash(storageKey))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", storageKey)
	}

	return path, nil
}

