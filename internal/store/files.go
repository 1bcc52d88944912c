package store

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Key prefixes of the object store.
const (
	OriginalPrefix = "uploads/original"
	CroppedPrefix  = "uploads/cropped"
)

// ErrInvalidName is returned for object names that are empty or would
// escape their prefix.
var ErrInvalidName = errors.New("invalid object name")

// FileStore is an object store backed by a directory.
type FileStore struct {
	root string
}

// NewFileStore creates the store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the directory the store writes to.
func (s *FileStore) Root() string { return s.root }

// OriginalKey returns the key an original upload is stored under.
func OriginalKey(name string) (string, error) {
	return objectKey(OriginalPrefix, name)
}

// CroppedKey returns the key a cropped output is stored under.
func CroppedKey(name string) (string, error) {
	return objectKey(CroppedPrefix, name)
}

func objectKey(prefix, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path.Join(prefix, name), nil
}

// Put writes data under key atomically: readers see either the previous
// object or the complete new one.
func (s *FileStore) Put(key string, data []byte) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Get reads the object stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target) //nolint:gosec // key is checked by resolve
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object under key. Deleting a missing object is not an
// error.
func (s *FileStore) Delete(key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Path returns the filesystem path of key.
func (s *FileStore) Path(key string) (string, error) {
	return s.resolve(key)
}

// resolve maps a key to a path below the root, rejecting keys that are
// absolute or climb out of it.
func (s *FileStore) resolve(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || path.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, "../") || strings.ContainsRune(key, '\\') {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
