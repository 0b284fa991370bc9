// tokencache/file.go
package tokencache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore persists the token entry as a JSON file, so short-lived processes sharing a
// home directory can reuse a token instead of re-authenticating on every run. The file is
// written with 0600 permissions since it holds a live credential.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a file-backed token store at path on the given filesystem.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) Save(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return afero.WriteFile(s.fs, s.path, data, 0o600)
}

func (s *FileStore) Load() (Entry, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt cache file is a miss, the caller re-authenticates and overwrites it.
		return Entry{}, false, nil
	}
	if entry.Token == "" {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
