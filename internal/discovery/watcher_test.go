package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsRebuild(t *testing.T) {
	tmpDir := t.TempDir()
	exe := filepath.Join(tmpDir, "math_test")
	other := filepath.Join(tmpDir, "notes.txt")
	for _, p := range []string{exe, other} {
		if err := os.WriteFile(p, []byte("v1"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewWatcher([]string{exe}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(other, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(exe, []byte("v2"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-w.Events:
		if got != exe {
			t.Errorf("expected event for %s, got %s", exe, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	// the burst of writes is reported once
	select {
	case got := <-w.Events:
		t.Errorf("expected a single debounced event, got another for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	if _, err := NewWatcher([]string{filepath.Join(t.TempDir(), "gone", "math_test")}, DefaultDebounce); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
