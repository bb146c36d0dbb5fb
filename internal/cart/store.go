package cart

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// Store persists client-held state between sessions.
type Store interface {
	Load(v any) error
	Save(v any) error
}

// FileStore keeps a JSON snapshot on disk. Writes go through a temp file and
// a rename so a crash mid-write never leaves a torn snapshot.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(v any) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	return json.Unmarshal(data, v)
}

func (s *FileStore) Save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)

		return err
	}

	return nil
}

// MemoryStore holds the snapshot in memory. Used by tests and as the default
// when no persistence path is configured.
type MemoryStore struct {
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(v any) error {
	if s.data == nil {
		return nil
	}

	return json.Unmarshal(s.data, v)
}

func (s *MemoryStore) Save(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.data = data

	return nil
}
