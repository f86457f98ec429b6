package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("storage: invalid name")
)

// Dir is a flat directory of blobs addressed by name.
type Dir struct {
	base string
	perm fs.FileMode
}

// NewDir creates a Dir rooted at base. The directory is created on first write.
func NewDir(base string) (*Dir, error) {
	if base == "" {
		return nil, fmt.Errorf("storage: base path is required")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	return &Dir{base: abs, perm: 0o600}, nil
}

// CachesDir returns name joined to the user's cache directory.
func CachesDir(name string) (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("storage: locate caches directory: %w", err)
	}
	return filepath.Join(root, name), nil
}

// Path returns the absolute directory path.
func (d *Dir) Path() string { return d.base }

// Write stores data under name, replacing any previous blob atomically.
func (d *Dir) Write(name string, data []byte) (err error) {
	full, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.base, 0o700); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.base, ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	if err = tmp.Chmod(d.perm); err != nil {
		return fmt.Errorf("storage: chmod file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close file: %w", err)
	}
	if err = os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("storage: rename file: %w", err)
	}
	return nil
}

// Read returns the blob stored under name.
func (d *Dir) Read(name string) ([]byte, error) {
	full, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// Delete removes the blob stored under name. Missing blobs are not an error.
func (d *Dir) Delete(name string) error {
	full, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// RemoveAll deletes the directory and everything in it. A missing
// directory is not an error.
func (d *Dir) RemoveAll() error {
	if err := os.RemoveAll(d.base); err != nil {
		return fmt.Errorf("storage: remove directory: %w", err)
	}
	return nil
}

func (d *Dir) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.base, name), nil
}
