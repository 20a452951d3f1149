package tree

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"gtr/internal/domain"
)

// SetExecutablePath validates path and records the resulting state:
// FileNotFound if it does not resolve to an existing file,
// InsufficientPrivileges if the current user may not execute it, Valid otherwise.
// The state is reported, never retried; the caller decides what to do next.
func (e *Executable) SetExecutablePath(path string) domain.ValidationState {
	e.path = path
	e.name = path
	e.state = validate(path)
	log.Debug("validated executable", "path", path, "state", e.state)
	return e.state
}

// State returns the current validation state
func (e *Executable) State() domain.ValidationState {
	return e.state
}

// Err returns the typed error matching the validation state, or nil when valid
func (e *Executable) Err() error {
	switch e.state {
	case domain.FileNotFound:
		return &domain.PathNotFoundError{Path: e.path}
	case domain.InsufficientPrivileges:
		return &domain.InsufficientPrivilegeError{Path: e.path}
	case domain.Unvalidated:
		return fmt.Errorf("executable path has not been validated")
	}
	return nil
}

// AttemptPermissionRepair tries to make the file executable by its owner.
// It only acts in the InsufficientPrivileges state and leaves the state
// unchanged when the repair fails.
func (e *Executable) AttemptPermissionRepair() (domain.ValidationState, error) {
	if e.state != domain.InsufficientPrivileges {
		return e.state, nil
	}

	info, err := os.Stat(e.path)
	if err != nil {
		return e.state, fmt.Errorf("stat %s: %w", e.path, err)
	}
	if err := os.Chmod(e.path, info.Mode().Perm()|0100); err != nil {
		return e.state, fmt.Errorf("chmod %s: %w", e.path, err)
	}

	if state := validate(e.path); state == domain.Valid {
		e.state = state
	}
	log.Debug("permission repair", "path", e.path, "state", e.state)
	if e.state != domain.Valid {
		return e.state, e.Err()
	}
	return e.state, nil
}

func validate(path string) domain.ValidationState {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return domain.FileNotFound
	}
	if !isExecutable(path, info) {
		return domain.InsufficientPrivileges
	}
	return domain.Valid
}
