package domain

import "strings"

// TestFailure represents a failed test case as persisted in the results file
type TestFailure struct {
	Executable string   `json:"executable"`
	Suite      string   `json:"suite"`
	TestName   string   `json:"test_name"`
	Message    string   `json:"message"`
	Output     []string `json:"output,omitempty"`
	Resolved   bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}

// FullName returns the gtest address of the failed test
func (f TestFailure) FullName() string {
	return QualifiedName(f.Suite, f.TestName)
}

// RunRecord is the completed run of one executable
type RunRecord struct {
	Executable string
	ExitCode   int
	Err        error
	Results    *ResultSet
}

// Failures returns the failed tests of the run
func (r RunRecord) Failures() []TestFailure {
	var out []TestFailure
	if r.Err != nil {
		out = append(out, TestFailure{Executable: r.Executable, Message: r.Err.Error()})
	}
	for _, t := range r.Results.Tests() {
		if t.Outcome.Status != StatusFailed {
			continue
		}
		f := TestFailure{
			Executable: r.Executable,
			Suite:      t.Suite,
			TestName:   t.Name,
			Message:    firstLine(t.Outcome.Message),
		}
		if t.Outcome.Message != "" {
			f.Output = strings.Split(t.Outcome.Message, "\n")
		}
		out = append(out, f)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// TestResultsMeta is the summary block of the results file
type TestResultsMeta struct {
	Executables     int     `json:"executables"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	SkippedTests    int     `json:"skipped_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Processors      int     `json:"processors"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the content of the results file
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}

// SetupEntry is one executable of a saved test setup
type SetupEntry struct {
	Path      string   `json:"path"`
	Unchecked []string `json:"unchecked,omitempty"`
}

// TestSetup is a saved selection of executables and tests
type TestSetup struct {
	Executables []SetupEntry `json:"executables"`
}

// Paths returns the executable paths in setup order
func (s *TestSetup) Paths() []string {
	out := make([]string, len(s.Executables))
	for i, e := range s.Executables {
		out[i] = e.Path
	}
	return out
}
