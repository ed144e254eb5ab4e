package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

var _ Backend = (*File)(nil)

// File is a Backend storing each key as a JSON file inside a directory.
// Writes go through a temp file and rename, so a crash mid-write leaves the
// previous value intact.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a file backend over it.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &File{dir: dir}, nil
}

// path maps a key to a file name. Path separators in keys are flattened so a
// key can never escape the storage directory.
func (b *File) path(key string) string {
	key = strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key)
	return filepath.Join(b.dir, key+".json")
}

func (b *File) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "read value")
	}
	return data, nil
}

func (b *File) Set(_ context.Context, key string, value []byte) error {
	dst := b.path(key)
	tmp, err := os.CreateTemp(b.dir, filepath.Base(dst)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write value")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return errors.Wrap(err, "replace value")
	}
	return nil
}

func (b *File) Delete(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete value")
	}
	return nil
}

// Ping verifies the storage directory is still writable.
func (b *File) Ping(_ context.Context) error {
	f, err := os.CreateTemp(b.dir, ".ping*")
	if err != nil {
		return errors.Wrap(err, "storage dir not writable")
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
