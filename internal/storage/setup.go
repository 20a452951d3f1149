package storage

import (
	"fmt"

	"gtr/internal/domain"
)

// SetupStore reads and writes test setup files: the executables of a
// session together with the tests the user unchecked.
type SetupStore struct {
	path string
}

// NewSetupStore returns a store for the setup file at path
func NewSetupStore(path string) *SetupStore {
	return &SetupStore{path: path}
}

// Path returns the setup file location
func (s *SetupStore) Path() string {
	return s.path
}

// Save writes setup, replacing any previous file
func (s *SetupStore) Save(setup *domain.TestSetup) error {
	if err := writeJSON(s.path, setup); err != nil {
		return fmt.Errorf("save test setup: %w", err)
	}
	return nil
}

// Load reads the setup file. Duplicate executable paths keep their first entry.
func (s *SetupStore) Load() (*domain.TestSetup, error) {
	var setup domain.TestSetup
	if err := readJSON(s.path, &setup); err != nil {
		return nil, fmt.Errorf("load test setup: %w", err)
	}

	seen := make(map[string]bool)
	entries := setup.Executables[:0]
	for _, e := range setup.Executables {
		if e.Path == "" || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		entries = append(entries, e)
	}
	setup.Executables = entries
	return &setup, nil
}
