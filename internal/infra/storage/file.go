package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"agency/internal/domain/service"

	"github.com/pkg/errors"
)

// File persists values as a small JSON object on disk, for command-line
// clients that keep a session between invocations.
type File struct {
	path string
	mu   sync.Mutex
}

var _ service.Storage = (*File)(nil)

// NewFile returns a storage backed by path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath returns <user config dir>/agency/storage.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "get user config dir")
	}

	return filepath.Join(dir, "agency", "storage.json"), nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]

	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value

	return f.save(values)
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)

	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read storage file")
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "decode storage file")
	}

	return values, nil
}

func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "create storage dir")
	}

	data, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "encode storage file")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write storage file")
	}

	return errors.Wrap(os.Rename(tmp, f.path), "replace storage file")
}
