package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir, err := os.MkdirTemp("", "gtr-scan-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create build tree with binaries, sources and dependency dirs
	testFiles := []struct {
		path string
		mode os.FileMode
	}{
		{"build/math_test", 0755},
		{"build/net/socket_unittest", 0755},
		{"build/StringTests", 0755},
		{"build/not_executable_test", 0644},
		{"build/tool", 0755},
		{"build/math_test.cc", 0644},
		{"build/_deps/googletest_test", 0755},
		{"build/.cache/hidden_test", 0755},
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file.path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file.path, err)
		}
		if err := os.WriteFile(fullPath, []byte("#!/bin/sh\n"), file.mode); err != nil {
			t.Fatalf("failed to create file %s: %v", file.path, err)
		}
	}

	scanner := NewScanner([]string{"_deps"})

	t.Run("scans executables correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Should find 3 executables, not the ones in _deps/.cache or non-executables
		if len(results) != 3 {
			t.Errorf("expected 3 executables, got %d: %v", len(results), results)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns a single file unchanged", func(t *testing.T) {
		file := filepath.Join(tmpDir, "build", "tool")
		results, err := scanner.Scan(file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0] != file {
			t.Errorf("expected [%s], got %v", file, results)
		}
	})
}
