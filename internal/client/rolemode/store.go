package rolemode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StateKey is the key under which the role mode is kept in the state file.
const StateKey = "marketplace_role_mode"

// Store persists the role mode in a JSON state file shared with other
// client-local preferences. Keys it does not own are preserved.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the file at path. The file is created on first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	state := map[string]json.RawMessage{}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return state, nil
}

func (s *Store) write(state map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load returns the persisted mode. A missing file or an unrecognized value is None.
func (s *Store) Load() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return None, err
	}
	raw, ok := state[StateKey]
	if !ok {
		return None, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return None, nil
	}
	m, err := ParseMode(text)
	if err != nil {
		return None, nil
	}
	return m, nil
}

// Save persists m. Saving None removes the key.
func (s *Store) Save(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return err
	}
	if m == None {
		delete(state, StateKey)
	} else {
		raw, err := json.Marshal(string(m))
		if err != nil {
			return err
		}
		state[StateKey] = raw
	}
	return s.write(state)
}

// Clear forgets the persisted mode.
func (s *Store) Clear() error {
	return s.Save(None)
}
