package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileSlot stores each key as <dir>/<key>.json. Writes and removals hold an
// exclusive flock on <dir>/.<key>.lock so concurrent tb processes do not
// interleave, and writes land through a temp file renamed into place.
type fileSlot struct {
	dir string
}

// NewFileSlot creates a Slot backed by files in dir. The directory is created
// on first write.
func NewFileSlot(dir string) (Slot, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("opening file slot: directory must not be empty")
	}
	return &fileSlot{dir: dir}, nil
}

func (s *fileSlot) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *fileSlot) lockPath(key string) string {
	return filepath.Join(s.dir, "."+key+".lock")
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid slot key %q", key)
	}
	return nil
}

func (s *fileSlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return data, true, nil
}

func (s *fileSlot) Put(_ context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("writing slot %s: creating directory: %w", key, err)
	}

	unlock, err := lockFile(s.lockPath(key))
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	defer func() { _ = unlock() }()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("writing slot %s: creating temp file: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing slot %s: closing temp file: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing slot %s: renaming temp file: %w", key, err)
	}
	return nil
}

func (s *fileSlot) Remove(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}

	unlock, err := lockFile(s.lockPath(key))
	if err != nil {
		return fmt.Errorf("removing slot %s: %w", key, err)
	}
	defer func() { _ = unlock() }()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing slot %s: %w", key, err)
	}
	return nil
}

func (s *fileSlot) Close() error { return nil }
