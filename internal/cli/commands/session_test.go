//go:build !windows

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/execution"
)

const fakeGTest = `#!/bin/sh
if [ "$1" = "--gtest_list_tests" ]; then
  echo "Math."
  echo "  Add"
  echo "  Sub"
  echo "Io."
  echo "  Read"
  exit 0
fi
case "$1" in
  --gtest_filter=*) echo "filter $1" ;;
esac
echo "[ RUN      ] Math.Add"
echo "[       OK ] Math.Add (1 ms)"
echo "[ RUN      ] Math.Sub"
echo "math.cc:9: Failure"
echo "[  FAILED  ] Math.Sub (0 ms)"
echo "[ RUN      ] Io.Read"
echo "[       OK ] Io.Read (0 ms)"
exit 1
`

func setupProject(t *testing.T) (*config.Config, []string) {
	t.Helper()
	tmpDir := t.TempDir()

	exe := filepath.Join(tmpDir, "math_test")
	if err := os.WriteFile(exe, []byte(fakeGTest), 0755); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(tmpDir, "broken_test")
	if err := os.WriteFile(broken, []byte("#!/bin/sh\nexit 2\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "README"), []byte("docs"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.ProjectPath = tmpDir
	cfg.RunTimeout = 10 * time.Second

	paths, err := resolvePaths(cfg, discovery.NewScanner(cfg.PathsToIgnore), nil)
	if err != nil {
		t.Fatalf("resolvePaths failed: %v", err)
	}
	return cfg, paths
}

func TestResolvePaths(t *testing.T) {
	_, paths := setupProject(t)
	if len(paths) != 2 {
		t.Fatalf("expected 2 executables, got %v", paths)
	}
	if filepath.Base(paths[0]) != "broken_test" || filepath.Base(paths[1]) != "math_test" {
		t.Errorf("expected sorted executables, got %v", paths)
	}
}

func TestSession_ListAndRun(t *testing.T) {
	cfg, paths := setupProject(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := newSession(ctx, cfg, execution.NewRunner(cfg), paths)
	stop := s.start(ctx)
	defer stop()

	listed, failed, err := s.listAll(ctx, s.valid())
	if err != nil {
		t.Fatalf("listAll failed: %v", err)
	}
	if len(listed) != 1 || len(failed) != 1 {
		t.Fatalf("expected one listed and one failed executable, got %d/%d", len(listed), len(failed))
	}
	if _, ok := failed[0].Err.(*domain.ListingRetrievalError); !ok {
		t.Errorf("expected ListingRetrievalError, got %v", failed[0].Err)
	}

	views, err := s.snapshots(ctx, listed)
	if err != nil {
		t.Fatal(err)
	}
	if len(views[0].Suites) != 2 {
		t.Errorf("expected 2 suites, got %+v", views[0].Suites)
	}

	var progressed int
	records, err := s.runAll(ctx, listed, discovery.NewFilter(), "", func(domain.RunRecord) { progressed++ })
	if err != nil {
		t.Fatalf("runAll failed: %v", err)
	}
	if len(records) != 1 || progressed != 1 {
		t.Fatalf("expected one run record, got %d (progress %d)", len(records), progressed)
	}

	r := records[0]
	if r.ExitCode != 1 || r.Err != nil {
		t.Errorf("expected exit code 1 without error, got %d %v", r.ExitCode, r.Err)
	}
	passed, failedTests, _ := r.Results.Counts()
	if passed != 2 || failedTests != 1 {
		t.Errorf("expected 2 passed and 1 failed, got %d/%d", passed, failedTests)
	}
	if f := r.Failures(); len(f) != 1 || f[0].FullName() != "Math.Sub" {
		t.Errorf("unexpected failures %+v", f)
	}
}

func TestSession_FilteredSelectiveRun(t *testing.T) {
	cfg, paths := setupProject(t)
	cfg.Selective = true
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := newSession(ctx, cfg, execution.NewRunner(cfg), paths)
	stop := s.start(ctx)
	defer stop()

	listed, _, err := s.listAll(ctx, s.valid())
	if err != nil {
		t.Fatal(err)
	}
	records, err := s.runAll(ctx, listed, discovery.NewFilter(), "Math.*", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one run record, got %d", len(records))
	}

	// only the requested tests receive results
	views, _ := s.snapshots(ctx, listed)
	for _, suite := range views[0].Suites {
		for _, test := range suite.Tests {
			got := test.Outcome != nil
			want := suite.Name == "Math"
			if got != want {
				t.Errorf("%s: expected outcome=%v, got %v", suite.FullName(test), want, got)
			}
		}
	}

	none, err := s.runAll(ctx, listed, discovery.NewFilter(), "Nothing.*", nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected no runs for an unmatched filter, got %v %v", none, err)
	}
}

const hangingGTest = `#!/bin/sh
if [ "$1" = "--gtest_list_tests" ]; then
  echo "Slow."
  echo "  Forever"
  exit 0
fi
echo $$ > "$(dirname "$0")/pid"
exec sleep 30
`

func TestSession_InterruptKillsRunningExecutable(t *testing.T) {
	tmpDir := t.TempDir()
	exe := filepath.Join(tmpDir, "slow_test")
	if err := os.WriteFile(exe, []byte(hangingGTest), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.ProjectPath = tmpDir
	cfg.RunTimeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newSession(ctx, cfg, execution.NewRunner(cfg), []string{exe})
	stop := s.start(ctx)
	defer stop()

	listed, _, err := s.listAll(ctx, s.valid())
	if err != nil || len(listed) != 1 {
		t.Fatalf("listAll failed: %v (%d listed)", err, len(listed))
	}

	pidFile := filepath.Join(tmpDir, "pid")
	go func() {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := os.Stat(pidFile); err == nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		cancel()
	}()

	records, err := s.runAll(ctx, listed, discovery.NewFilter(), "", nil)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no completed records, got %+v", records)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("executable never started: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("bad pid %q: %v", data, err)
	}

	// runAll waits for the killed process to be reaped before returning
	if err := unix.Kill(pid, 0); err != unix.ESRCH {
		t.Errorf("process %d still exists after interrupt (kill: %v)", pid, err)
	}

	if err := s.do(context.Background(), func() {
		if listed[0].Busy() {
			t.Error("executable still busy after interrupt")
		}
		if p := listed[0].Pending(); len(p) != 0 {
			t.Errorf("pending list not cleared after interrupt: %d left", len(p))
		}
	}); err != nil {
		t.Fatal(err)
	}
}
