package discovery

import (
	"testing"
)

func TestFilter_FilterNames(t *testing.T) {
	filter := NewFilter()
	names := []string{"MathTest.Adds", "MathTest.Subtracts", "StringTest.Trims", "Param/Suite.Case/0"}

	tests := []struct {
		name     string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			pattern:  "",
			expected: 4,
		},
		{
			name:     "suite wildcard",
			pattern:  "MathTest.*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			pattern:  "Trims",
			expected: 1,
		},
		{
			name:     "several positive patterns",
			pattern:  "MathTest.Adds:StringTest.*",
			expected: 2,
		},
		{
			name:     "negative pattern",
			pattern:  "*-MathTest.Subtracts",
			expected: 3,
		},
		{
			name:     "only negative pattern",
			pattern:  "-MathTest.*",
			expected: 2,
		},
		{
			name:     "wildcard crosses parameter separators",
			pattern:  "Param*",
			expected: 1,
		},
		{
			name:     "no matches",
			pattern:  "*NonExistent*",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterNames(names, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d (%v)", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterNames_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty name list", func(t *testing.T) {
		result := filter.FilterNames([]string{}, "*Test*")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("question mark wildcard", func(t *testing.T) {
		if !filter.Match("A.b1", "A.b?") {
			t.Error("expected ? to match a single character")
		}
	})
}
