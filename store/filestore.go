package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const defaultDirName = "soundboard"

// FileStore keeps each key in its own file under a private directory. Writes
// go through a rename so a reader never observes a partially written value.
type FileStore struct {
	dir string
}

var _ KV = (*FileStore)(nil)

// DefaultFileStore returns a FileStore rooted at the user config directory
// (e.g. ~/.config/soundboard).
func DefaultFileStore() (*FileStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, errors.Wrap(err, "[DefaultFileStore] user config dir")
	}
	return NewFileStore(filepath.Join(configDir, defaultDirName))
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] mkdir")
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "[FileStore.Get] read")
	}
	return string(data), nil
}

func (fs *FileStore) Set(key, value string) error {
	path := fs.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Set] write")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "[FileStore.Set] rename")
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	if err := os.Remove(fs.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "[FileStore.Remove] remove")
	}
	return nil
}

func (fs *FileStore) path(key string) string {
	// Keys are internal constants, but keep path separators out regardless.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(fs.dir, safe)
}
