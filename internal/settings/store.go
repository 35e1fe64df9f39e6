package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultPath returns ~/.config/coverdock/settings.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "coverdock", "settings.json"), nil
}

// Store reads and writes settings to a JSON file. It is safe for concurrent
// use.
type Store struct {
	path string

	mu        sync.Mutex
	current   Settings
	lastWrite []byte
}

// Open loads settings from path. Missing files, unparsable files and files
// written by a different version all yield defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: Default()}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the settings and writes them to disk.
func (s *Store) Set(next Settings) error {
	next.Version = Version

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	s.current = next
	s.lastWrite = data
	return nil
}

// writeFileAtomic replaces path with data through a temp file in the same
// directory, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Update applies fn to the current settings and saves the result.
func (s *Store) Update(fn func(Settings) Settings) (Settings, error) {
	next := fn(s.Get())
	if err := s.Set(next); err != nil {
		return Settings{}, err
	}
	return next, nil
}

func (s *Store) reload() error {
	_, err := s.reloadChanged(true)
	return err
}

// reloadChanged rereads the file. It reports false when the file is missing
// or its content is exactly what this store last wrote. Unusable content
// resets to defaults only when resetInvalid is set; otherwise it is ignored,
// since a watcher may observe another writer's file mid-write.
//
// The file is read under the lock so a Set cannot land between the read and
// the comparison with lastWrite.
func (s *Store) reloadChanged(resetInvalid bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read settings: %w", err)
	}

	if s.lastWrite != nil && bytes.Equal(data, s.lastWrite) {
		return false, nil
	}

	loaded, ok := decode(data)
	if !ok {
		if !resetInvalid {
			return false, nil
		}
		s.current = Default()
		return true, nil
	}
	s.current = loaded
	return true, nil
}

// decode merges stored values over defaults. It reports false when the data
// is unusable or was written by another version.
func decode(data []byte) (Settings, bool) {
	var probe struct {
		Version *string `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Settings{}, false
	}
	if probe.Version == nil || *probe.Version != Version {
		return Settings{}, false
	}

	out := Default()
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, false
	}
	return out, true
}
