package domain

import "time"

// Status is the pass/fail state of a single outcome
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Outcome is the pass/fail record for one test or the aggregate of a group
type Outcome struct {
	Status   Status
	Message  string        // Failure text, empty when passed
	Duration time.Duration // Time reported by the executable
}

// ResultSet is the immutable result tree of one executable run.
// The root is keyed by executable, its children by suite name and
// their children by test name. Each node hands out read-only views
// of its children through Lookup.
type ResultSet struct {
	name     string
	outcome  Outcome
	children map[string]*ResultSet
	order    []string
}

// NewResultSet creates a result node. A later child with a duplicate
// name replaces the earlier one but keeps its position.
func NewResultSet(name string, outcome Outcome, children ...*ResultSet) *ResultSet {
	rs := &ResultSet{
		name:    name,
		outcome: outcome,
	}
	if len(children) == 0 {
		return rs
	}
	rs.children = make(map[string]*ResultSet, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		if _, exists := rs.children[c.name]; !exists {
			rs.order = append(rs.order, c.name)
		}
		rs.children[c.name] = c
	}
	return rs
}

// Aggregate creates a result node whose outcome is derived from its children:
// failed if any child failed, skipped if every child was skipped, passed otherwise.
func Aggregate(name string, children ...*ResultSet) *ResultSet {
	rs := NewResultSet(name, Outcome{}, children...)
	rs.outcome = aggregateOutcome(rs)
	return rs
}

func aggregateOutcome(rs *ResultSet) Outcome {
	var out Outcome
	if len(rs.order) == 0 {
		return out
	}
	skipped := 0
	for _, name := range rs.order {
		c := rs.children[name]
		out.Duration += c.outcome.Duration
		switch c.outcome.Status {
		case StatusFailed:
			out.Status = StatusFailed
		case StatusSkipped:
			skipped++
		}
	}
	if out.Status != StatusFailed && skipped == len(rs.order) {
		out.Status = StatusSkipped
	}
	return out
}

// Name returns the key this node is addressed by in its parent
func (rs *ResultSet) Name() string {
	return rs.name
}

// Outcome returns the outcome recorded for this node
func (rs *ResultSet) Outcome() Outcome {
	return rs.outcome
}

// Lookup returns the child result for name, or nil when the run produced none
func (rs *ResultSet) Lookup(name string) *ResultSet {
	if rs == nil {
		return nil
	}
	return rs.children[name]
}

// Names returns child names in the order they were reported
func (rs *ResultSet) Names() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// Len returns the number of direct children
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.order)
}

// TestResult is a flattened leaf of a ResultSet
type TestResult struct {
	Suite   string
	Name    string
	Outcome Outcome
}

// Tests flattens the leaves of the tree in report order. Suite is the
// name of the leaf's immediate parent, empty for direct leaves.
func (rs *ResultSet) Tests() []TestResult {
	if rs == nil {
		return nil
	}
	var out []TestResult
	rs.collect("", &out)
	return out
}

func (rs *ResultSet) collect(parent string, out *[]TestResult) {
	for _, name := range rs.order {
		c := rs.children[name]
		if c.Len() == 0 {
			*out = append(*out, TestResult{Suite: parent, Name: c.name, Outcome: c.outcome})
			continue
		}
		c.collect(c.name, out)
	}
}

// Counts returns passed, failed and skipped leaf totals
func (rs *ResultSet) Counts() (passed, failed, skipped int) {
	for _, t := range rs.Tests() {
		switch t.Outcome.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}
