/*
Package statestore persists a flat key→value map to a single JSON file.

Each named domain (main, producer, enricher, merger) owns its own file.
Every [Store.Set] loads the whole file, mutates one key, and writes the
whole file back — there is no partial-write path, matching the
single-process assumption enforced by the orchestrator's run interlock.

A missing or unparsable file is treated as an empty map on read, so a
fresh deployment and a corrupted cache behave identically: the pipeline
starts from scratch rather than failing to boot.
*/
package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a JSON-file-backed key→value map.
type Store struct {
	path string
}

// New returns a [Store] backed by the file at path. The file is not
// touched until the first [Store.Get] or [Store.Set] call.
func New(path string) *Store {
	return &Store{path: path}
}

// Get loads the store's file and looks up key, decoding the raw JSON
// value into out. It reports false if the key is absent.
func (s *Store) Get(key string, out any) (bool, error) {
	data, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("statestore: decode key %q: %w", key, err)
	}
	return true, nil
}

// GetString is a convenience wrapper around [Store.Get] for plain string values.
func (s *Store) GetString(key string) (string, bool, error) {
	var v string
	ok, err := s.Get(key, &v)
	return v, ok, err
}

// Set loads the store's file, mutates key, and writes the whole file back.
func (s *Store) Set(key string, value any) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("statestore: encode key %q: %w", key, err)
	}
	data[key] = encoded

	return s.save(data)
}

// load reads and parses the store's file. A missing file or a file that
// fails to parse as a JSON object is treated as an empty map.
func (s *Store) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("statestore: read %s: %w", s.path, err)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]json.RawMessage{}, nil
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return data, nil
}

// save writes data to the store's file, sorted keys, indent 1 — matching
// the external state-file format contract.
func (s *Store) save(data map[string]json.RawMessage) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("statestore: create dir %s: %w", dir, err)
		}
	}

	// encoding/json sorts map keys on marshal, satisfying "sorted keys".
	encoded, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return fmt.Errorf("statestore: encode: %w", err)
	}

	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("statestore: write %s: %w", s.path, err)
	}
	return nil
}
