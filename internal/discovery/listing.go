package discovery

import (
	"strings"

	"gtr/internal/domain"
)

// testIndent is the prefix gtest writes before every test name in listing mode
const testIndent = "  "

// ListingParser turns the text printed by an executable in listing mode into suites and tests
type ListingParser struct{}

// NewListingParser creates a new ListingParser
func NewListingParser() *ListingParser {
	return &ListingParser{}
}

// Parse converts listing text of the form
//
//	Suite.
//	  TestA
//	  TestB
//
// into one entry per suite, preserving input order. Unindented lines that do
// not end in '.' (such as the "Running main() from gtest_main.cc" banner) are
// ignored. An indented line before the first suite fails with
// *domain.MalformedListingError.
func (p *ListingParser) Parse(text string) ([]domain.ListingEntry, error) {
	var entries []domain.ListingEntry
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)
	current := -1

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := stripComment(strings.TrimRight(raw, " \t\r"))
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasSuffix(line, ".") {
			suite := strings.TrimSpace(strings.TrimSuffix(line, "."))
			pos, ok := index[suite]
			if !ok {
				pos = len(entries)
				index[suite] = pos
				seen[suite] = make(map[string]bool)
				entries = append(entries, domain.ListingEntry{Suite: suite, Tests: []string{}})
			}
			current = pos
			continue
		}

		if !strings.HasPrefix(line, testIndent) {
			continue
		}

		if current < 0 {
			return nil, &domain.MalformedListingError{Line: i + 1, Text: raw}
		}

		name := strings.TrimSpace(line[len(testIndent):])
		suite := entries[current].Suite
		if seen[suite][name] {
			continue
		}
		seen[suite][name] = true
		entries[current].Tests = append(entries[current].Tests, name)
	}

	return entries, nil
}

// stripComment drops the "  # TypeParam = int" style annotations gtest appends
// to typed and parameterized tests
func stripComment(line string) string {
	if idx := strings.Index(line, "  # "); idx >= 0 {
		return strings.TrimRight(line[:idx], " \t")
	}
	return line
}
