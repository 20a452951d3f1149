package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"gtr/internal/config"
	"gtr/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg, out: os.Stdout}
}

// SetOutput redirects the formatter, mostly for tests
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *Formatter) relPath(path string) string {
	if rel, err := filepath.Rel(f.config.ProjectPath, path); err == nil {
		return rel
	}
	return path
}

func (f *Formatter) printf(c *color.Color, format string, args ...any) {
	if c == nil {
		fmt.Fprintf(f.out, format, args...)
		return
	}
	c.Fprintf(f.out, format, args...)
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
	gray   = color.New(color.FgHiBlack)
)

func outcomeColor(o *domain.Outcome) *color.Color {
	if o == nil {
		return nil
	}
	switch o.Status {
	case domain.StatusPassed:
		return green
	case domain.StatusFailed:
		return red
	case domain.StatusSkipped:
		return yellow
	}
	return nil
}

// PrintListing prints executables with their suites and, when showTests is
// set, their tests. Names in failed (keyed "path\x00Suite.Test") are marked [F].
func (f *Formatter) PrintListing(views []ExecutableView, showTests bool, failed map[string]struct{}) {
	tests := 0
	for _, v := range views {
		for _, s := range v.Suites {
			tests += len(s.Tests)
		}
	}
	f.printf(green, "Found %d executable(s) with %d test(s):\n\n", len(views), tests)

	for i, v := range views {
		lastExe := i == len(views)-1
		branch, indent := "├── ", "│   "
		if lastExe {
			branch, indent = "└── ", "    "
		}

		f.printf(cyan, "%s%s", branch, f.relPath(v.Path))
		if v.State != domain.Valid {
			f.printf(red, " (%s)", v.State)
		}
		fmt.Fprintln(f.out)

		for j, s := range v.Suites {
			lastSuite := j == len(v.Suites)-1
			sBranch, sIndent := "├── ", "│   "
			if lastSuite {
				sBranch, sIndent = "└── ", "    "
			}
			f.printf(yellow, "%s%s%s", indent, sBranch, s.Name)
			f.printf(gray, " (%d)\n", len(s.Tests))
			if !showTests {
				continue
			}

			for k, t := range s.Tests {
				tBranch := "├── "
				if k == len(s.Tests)-1 {
					tBranch = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s", indent, sIndent, tBranch)
				f.printf(outcomeColor(t.Outcome), "%s", t.Name)
				if _, ok := failed[FailureKey(v.Path, s.FullName(t))]; ok {
					f.printf(red, " [F]")
				}
				fmt.Fprintln(f.out)
			}
		}

		if !lastExe {
			fmt.Fprintln(f.out)
		}
	}
}

// FailureKey identifies a failed test in the set passed to PrintListing
func FailureKey(executable, fullName string) string {
	return executable + "\x00" + fullName
}

// PrintResults prints the statistics of a finished run followed by a tree
// of its failures
func (f *Formatter) PrintResults(runs []domain.RunRecord, duration time.Duration) {
	var passed, failed, skipped int
	var failures []domain.TestFailure
	for _, r := range runs {
		p, fl, s := r.Results.Counts()
		passed, failed, skipped = passed+p, failed+fl, skipped+s
		failures = append(failures, r.Failures()...)
	}

	f.PrintSummary(&domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			Executables:     len(runs),
			TotalTests:      passed + failed + skipped,
			PassedTests:     passed,
			FailedTests:     failed,
			SkippedTests:    skipped,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Processors:      f.config.Processors,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Details: failures,
	})
}

// PrintSummary prints the statistics table of a results file
func (f *Formatter) PrintSummary(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	f.printf(cyan, "╔═══════════════════════════════════════════════════════════════╗\n")
	f.printf(cyan, "║                    Test Execution Statistics                  ║\n")
	f.printf(cyan, "╚═══════════════════════════════════════════════════════════════╝\n\n")

	const sep = "├─────────────────────────────────┼─────────────────────────────┤\n"
	rows := []struct {
		label string
		c     *color.Color
		value string
	}{
		{"Executables", white, fmt.Sprint(meta.Executables)},
		{"Total Tests", white, fmt.Sprint(meta.TotalTests)},
		{"Passed Tests", green, fmt.Sprint(meta.PassedTests)},
		{"Failed Tests", red, fmt.Sprint(meta.FailedTests)},
		{"Skipped Tests", yellow, fmt.Sprint(meta.SkippedTests)},
		{"Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Processors", white, fmt.Sprint(meta.Processors)},
		{"Timestamp", white, meta.Timestamp},
	}

	fmt.Fprint(f.out, "┌─────────────────────────────────┬─────────────────────────────┐\n")
	for i, r := range rows {
		if i > 0 {
			fmt.Fprint(f.out, sep)
		}
		fmt.Fprintf(f.out, "│ %-31s │ ", r.label)
		f.printf(r.c, "%-27s", r.value)
		fmt.Fprint(f.out, " │\n")
	}
	fmt.Fprint(f.out, "└─────────────────────────────────┴─────────────────────────────┘\n\n")

	if len(output.Details) == 0 {
		f.printf(green, "✓ All tests passed!\n")
		return
	}
	f.printf(red, "✗ %d failure(s) in %d executable(s)\n\n", len(output.Details), countExecutables(output.Details))
	f.printFailureTree(output.Details)
}

func countExecutables(failures []domain.TestFailure) int {
	seen := make(map[string]bool)
	for _, fl := range failures {
		seen[fl.Executable] = true
	}
	return len(seen)
}

// printFailureTree prints failures grouped executable → suite → test
func (f *Formatter) printFailureTree(failures []domain.TestFailure) {
	byExe := make(map[string]map[string][]domain.TestFailure)
	for _, fl := range failures {
		if byExe[fl.Executable] == nil {
			byExe[fl.Executable] = make(map[string][]domain.TestFailure)
		}
		byExe[fl.Executable][fl.Suite] = append(byExe[fl.Executable][fl.Suite], fl)
	}

	exes := sortedKeys(byExe)
	for _, exe := range exes {
		f.printf(cyan, "%s\n", f.relPath(exe))
		suites := sortedKeys(byExe[exe])
		for i, suite := range suites {
			prefix := "  |_"
			if i == len(suites)-1 {
				prefix = "   |_"
			}
			if suite == "" {
				// run-level failure such as a crash or timeout
				for _, fl := range byExe[exe][suite] {
					f.printf(red, "%s%s\n", prefix, fl.Message)
				}
				continue
			}
			f.printf(yellow, "%s%s\n", prefix, suite)
			for _, fl := range byExe[exe][suite] {
				msg := ""
				if fl.Message != "" {
					msg = ": " + fl.Message
				}
				f.printf(red, "        |_%s", fl.TestName)
				f.printf(gray, "%s\n", msg)
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
