package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File stores each blob as a pretty-printed JSON document in dir.
//
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the target, so a crash mid-write leaves either the old
// document or the new one, never a truncated mix.
type File struct {
	dir string
}

// NewFile returns a File rooted at dir, creating the directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(name string) string {
	return filepath.Join(f.dir, filepath.Base(name))
}

func (f *File) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return writeAtomic(f.path(name), data)
}

func (f *File) Load(name string, v any) error {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrAbsent, name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrAbsent, name, err)
	}
	return nil
}

// Exists reports whether a blob named name is present on disk.
func (f *File) Exists(name string) bool {
	_, err := os.Stat(f.path(name))
	return err == nil
}

// Delete removes the blob. Deleting a missing blob is not an error.
func (f *File) Delete(name string) error {
	if err := os.Remove(f.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
