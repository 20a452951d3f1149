//go:build !windows

package tree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gtr/internal/config"
	"gtr/internal/domain"
	"gtr/internal/eventloop"
	"gtr/internal/execution"
)

func TestSetExecutablePath(t *testing.T) {
	tmpDir := t.TempDir()

	runnable := filepath.Join(tmpDir, "runnable_test")
	if err := os.WriteFile(runnable, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(tmpDir, "plain_test")
	if err := os.WriteFile(plain, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want domain.ValidationState
	}{
		{"missing file", filepath.Join(tmpDir, "missing"), domain.FileNotFound},
		{"directory", tmpDir, domain.FileNotFound},
		{"not executable", plain, domain.InsufficientPrivileges},
		{"executable", runnable, domain.Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutable(Options{Poster: &eventloop.Manual{}})
			if e.State() != domain.Unvalidated {
				t.Fatalf("expected a new executable to be unvalidated, got %s", e.State())
			}
			if got := e.SetExecutablePath(tt.path); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if e.Name() != tt.path || e.Path() != tt.path {
				t.Errorf("expected name and path %s, got %s / %s", tt.path, e.Name(), e.Path())
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	e := NewExecutable(Options{Poster: &eventloop.Manual{}})
	e.SetExecutablePath(filepath.Join(t.TempDir(), "missing"))

	var pnf *domain.PathNotFoundError
	if !errors.As(e.Err(), &pnf) {
		t.Errorf("expected PathNotFoundError, got %v", e.Err())
	}

	// a missing file is not repairable
	state, err := e.AttemptPermissionRepair()
	if state != domain.FileNotFound || err != nil {
		t.Errorf("expected no-op repair, got %s %v", state, err)
	}
}

func TestAttemptPermissionRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample_test")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewExecutable(Options{Poster: &eventloop.Manual{}})
	if e.SetExecutablePath(path) != domain.InsufficientPrivileges {
		t.Fatalf("expected InsufficientPrivileges, got %s", e.State())
	}
	var ipe *domain.InsufficientPrivilegeError
	if !errors.As(e.Err(), &ipe) {
		t.Errorf("expected InsufficientPrivilegeError, got %v", e.Err())
	}

	state, err := e.AttemptPermissionRepair()
	if err != nil {
		t.Fatalf("expected repair to succeed, got %v", err)
	}
	if state != domain.Valid || e.State() != domain.Valid {
		t.Errorf("expected Valid after repair, got %s", state)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("expected owner execute bit, got %v", info.Mode().Perm())
	}
}

const fakeGTest = `#!/bin/sh
if [ "$1" = "--gtest_list_tests" ]; then
  echo "Running main() from gtest_main.cc"
  echo "Math."
  echo "  Add"
  echo "  Sub"
  exit 0
fi
echo "[==========] Running 2 tests from 1 test suite."
echo "[ RUN      ] Math.Add"
echo "[       OK ] Math.Add (0 ms)"
echo "[ RUN      ] Math.Sub"
echo "math.cc:9: Failure"
echo "[  FAILED  ] Math.Sub (0 ms)"
echo "[==========] 2 tests from 1 test suite ran. (0 ms total)"
exit 1
`

func TestExecutable_WithProcessRunner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "math_test")
	if err := os.WriteFile(path, []byte(fakeGTest), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.RunTimeout = 10 * time.Second
	loop := eventloop.New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	go loop.Run(ctx)
	defer loop.Stop()

	listed := make(chan error, 1)
	finished := make(chan error, 1)
	e := NewExecutable(Options{
		Config: cfg,
		Runner: execution.NewRunner(cfg),
		Poster: loop,
		Observer: Hooks{
			OnRun: func(_ *Executable, _ int, err error) { finished <- err },
		},
	})

	loop.Post(func() {
		if e.SetExecutablePath(path) != domain.Valid {
			listed <- e.Err()
			return
		}
		e.ProduceListing(func(err error) { listed <- err })
	})
	if err := <-listed; err != nil {
		t.Fatalf("listing failed: %v", err)
	}

	loop.Post(e.Run)
	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for run")
	}

	outcomes := make(chan map[string]domain.Status, 1)
	loop.Post(func() {
		got := make(map[string]domain.Status)
		for _, test := range e.Tests() {
			if out, ok := test.Outcome(); ok {
				got[FullName(test)] = out.Status
			}
		}
		outcomes <- got
	})
	got := <-outcomes

	if len(got) != 2 {
		t.Fatalf("expected outcomes for 2 tests, got %v", got)
	}
	if got["Math.Add"] != domain.StatusPassed {
		t.Errorf("expected Math.Add passed, got %s", got["Math.Add"])
	}
	if got["Math.Sub"] != domain.StatusFailed {
		t.Errorf("expected Math.Sub failed, got %s", got["Math.Sub"])
	}
}
