package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"gtr/internal/domain"
)

var (
	runLine      = regexp.MustCompile(`^\[\s*RUN\s*\] (\S+)\s*$`)
	endLine      = regexp.MustCompile(`^\[\s*(OK|FAILED|SKIPPED)\s*\] (\S+)(?: \((\d+) ms\))?`)
	durationText = regexp.MustCompile(`\((\d+) ms\)`)
)

// GTestParser parses the console output of a Google Test executable
type GTestParser struct{}

// NewGTestParser creates a new GTestParser
func NewGTestParser() *GTestParser {
	return &GTestParser{}
}

type testRecord struct {
	suite   string
	name    string
	outcome domain.Outcome
	done    bool
	lines   []string
}

// Parse builds a ResultSet keyed executable -> suite -> test from run output.
// Lines between "[ RUN ]" and the closing "[ FAILED ]"/"[ SKIPPED ]" become the
// outcome message. A test that starts but never finishes (a crash) is recorded
// as failed with whatever it printed. Summary lines after the run are ignored.
func (p *GTestParser) Parse(executable string, exitCode int, output string) *domain.ResultSet {
	var records []*testRecord
	byName := make(map[string]*testRecord)
	var current *testRecord

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")

		if m := runLine.FindStringSubmatch(line); m != nil {
			suite, name := splitQualified(m[1])
			rec := &testRecord{suite: suite, name: name}
			if _, exists := byName[m[1]]; !exists {
				records = append(records, rec)
			} else {
				for i, r := range records {
					if r == byName[m[1]] {
						records[i] = rec
					}
				}
			}
			byName[m[1]] = rec
			current = rec
			continue
		}

		if m := endLine.FindStringSubmatch(line); m != nil {
			if current == nil || m[2] != domain.QualifiedName(current.suite, current.name) {
				continue
			}
			current.outcome.Status = statusFor(m[1])
			if m[3] != "" {
				ms, _ := strconv.Atoi(m[3])
				current.outcome.Duration = time.Duration(ms) * time.Millisecond
			}
			if current.outcome.Status != domain.StatusPassed {
				current.outcome.Message = strings.TrimSpace(strings.Join(current.lines, "\n"))
			}
			current.done = true
			current = nil
			continue
		}

		if current != nil {
			current.lines = append(current.lines, line)
		}
	}

	for _, rec := range records {
		if !rec.done {
			rec.outcome.Status = domain.StatusFailed
			msg := strings.TrimSpace(strings.Join(rec.lines, "\n"))
			if msg == "" {
				msg = "test did not complete (exit code " + strconv.Itoa(exitCode) + ")"
			}
			rec.outcome.Message = msg
		}
	}

	return buildResultSet(executable, records)
}

// ParseTestCounts extracts passed, failed and skipped totals from run output
func (p *GTestParser) ParseTestCounts(output string) (passed, failed, skipped int) {
	return p.Parse("", 0, output).Counts()
}

// ParseDuration returns the total time gtest reports in its closing summary line
func (p *GTestParser) ParseDuration(output string) time.Duration {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "[==========]") || !strings.Contains(line, " ran.") {
			continue
		}
		if m := durationText.FindStringSubmatch(line); m != nil {
			ms, _ := strconv.Atoi(m[1])
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 0
}

func buildResultSet(executable string, records []*testRecord) *domain.ResultSet {
	var suiteOrder []string
	suites := make(map[string][]*domain.ResultSet)
	for _, rec := range records {
		if _, ok := suites[rec.suite]; !ok {
			suiteOrder = append(suiteOrder, rec.suite)
		}
		suites[rec.suite] = append(suites[rec.suite], domain.NewResultSet(rec.name, rec.outcome))
	}

	children := make([]*domain.ResultSet, 0, len(suiteOrder))
	for _, s := range suiteOrder {
		children = append(children, domain.Aggregate(s, suites[s]...))
	}
	return domain.Aggregate(executable, children...)
}

func statusFor(tag string) domain.Status {
	switch tag {
	case "FAILED":
		return domain.StatusFailed
	case "SKIPPED":
		return domain.StatusSkipped
	}
	return domain.StatusPassed
}

func splitQualified(qualified string) (suite, name string) {
	suite, name, found := strings.Cut(qualified, ".")
	if !found {
		return "", qualified
	}
	return suite, name
}
