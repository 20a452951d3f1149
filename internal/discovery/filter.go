package discovery

import (
	"path"
	"strings"
)

// Filter filters qualified test names ("Suite.Test") by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterNames filters test names by pattern. The pattern follows gtest_filter
// syntax: positive patterns separated by ':', optionally followed by '-' and
// negative patterns. Patterns without wildcards match as substrings.
func (f *Filter) FilterNames(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if f.Match(name, pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Match reports whether a single qualified name passes the pattern
func (f *Filter) Match(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	positive, negative, _ := strings.Cut(pattern, "-")
	if positive != "" && !matchAny(name, positive) {
		return false
	}
	if negative != "" && matchAny(name, negative) {
		return false
	}
	return true
}

func matchAny(name, patterns string) bool {
	for _, p := range strings.Split(patterns, ":") {
		if p != "" && matchOne(name, p) {
			return true
		}
	}
	return false
}

func matchOne(name, pattern string) bool {
	// If no wildcards, do a simple contains check
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Parameterized names contain '/', which path.Match will not cross with '*'
	escaped := strings.ReplaceAll(name, "/", "\x00")
	matched, err := path.Match(strings.ReplaceAll(pattern, "/", "\x00"), escaped)
	return err == nil && matched
}
