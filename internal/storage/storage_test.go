package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gtr/internal/config"
	"gtr/internal/domain"
)

func sampleRun() domain.RunRecord {
	return domain.RunRecord{
		Executable: "/build/math_test",
		ExitCode:   1,
		Results: domain.Aggregate("/build/math_test",
			domain.Aggregate("Math",
				domain.NewResultSet("Add", domain.Outcome{Status: domain.StatusPassed, Duration: 3 * time.Millisecond}),
				domain.NewResultSet("Sub", domain.Outcome{Status: domain.StatusFailed, Message: "math.cc:9: Failure\nExpected: 1"}),
				domain.NewResultSet("Div", domain.Outcome{Status: domain.StatusSkipped}),
			),
		),
	}
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "gtr-storage-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := config.New()
	cfg.ProjectPath = tmpDir
	s := NewJSONStorage(cfg)

	if err := s.Save([]domain.RunRecord{sampleRun()}, 2*time.Second, 4); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	meta := out.Meta
	if meta.Executables != 1 || meta.TotalTests != 3 || meta.PassedTests != 1 || meta.FailedTests != 1 || meta.SkippedTests != 1 {
		t.Errorf("unexpected meta %+v", meta)
	}
	if meta.Processors != 4 || meta.DurationSeconds != 2 {
		t.Errorf("unexpected run info %+v", meta)
	}

	if len(out.Details) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(out.Details))
	}
	f := out.Details[0]
	if f.FullName() != "Math.Sub" || f.Message != "math.cc:9: Failure" {
		t.Errorf("unexpected failure %+v", f)
	}
	if len(f.Output) != 2 {
		t.Errorf("expected full output lines, got %v", f.Output)
	}

	out.Details[0].Resolved = true
	if err := s.SaveOutput(out); err != nil {
		t.Fatalf("SaveOutput failed: %v", err)
	}
	again, _ := s.Load()
	if !again.Details[0].Resolved {
		t.Error("expected resolved flag to persist")
	}
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()

	if _, err := NewJSONStorage(cfg).Load(); err == nil {
		t.Error("expected error for missing results file")
	}
}

func TestSetupStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "setup.json")
	store := NewSetupStore(path)

	setup := &domain.TestSetup{Executables: []domain.SetupEntry{
		{Path: "/build/math_test", Unchecked: []string{"Math.Div"}},
		{Path: "/build/io_test"},
		{Path: "/build/math_test"},
	}}
	if err := store.Save(setup); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Paths(), []string{"/build/math_test", "/build/io_test"}) {
		t.Errorf("unexpected paths %v", loaded.Paths())
	}
	if !reflect.DeepEqual(loaded.Executables[0].Unchecked, []string{"Math.Div"}) {
		t.Errorf("expected unchecked tests to survive, got %v", loaded.Executables[0].Unchecked)
	}
}

func TestSetupStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSetupStore(path).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestOpenHistory_Disabled(t *testing.T) {
	cfg := config.New()
	h, err := OpenHistory(context.Background(), cfg)
	if h != nil || err != nil {
		t.Errorf("expected disabled history, got %v %v", h, err)
	}
}

func TestOpenHistory_InvalidTable(t *testing.T) {
	cfg := config.New()
	cfg.DBDSN = "user:pass@tcp(127.0.0.1:1)/gtr"
	cfg.HistoryTable = "results; DROP TABLE users"

	if _, err := OpenHistory(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "invalid history table") {
		t.Errorf("expected table name rejection, got %v", err)
	}
}

func TestIsValidTableName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"gtr_results", true},
		{"_history2", true},
		{"", false},
		{"2results", false},
		{"results`", false},
		{"a-b", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		if got := isValidTableName(tt.name); got != tt.want {
			t.Errorf("isValidTableName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHistoryRows(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := historyRows(sampleRun(), at)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].suite != "Math" || rows[0].test != "Add" || rows[0].status != "passed" || rows[0].durationMs != 3 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].status != "failed" || rows[1].exitCode != 1 || !rows[1].ranAt.Equal(at) {
		t.Errorf("unexpected failed row %+v", rows[1])
	}
	if !strings.Contains(insertQuery("gtr_results"), "`gtr_results`") {
		t.Error("expected quoted table in insert")
	}
}
