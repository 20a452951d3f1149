package tree

import "gtr/internal/domain"

// Test is a single runnable leaf
type Test struct {
	header
}

// NewTest creates a detached test. Use Suite.AddTest to attach one.
func NewTest(name string) *Test {
	return &Test{header: header{name: name}}
}

// Run raises a run request for this test to its parent
func (t *Test) Run() {
	if t.parent == nil {
		return
	}
	t.parent.receiveRunRequest(t, runRequest{origin: t, testName: t.name})
}

// ReceiveTestResults replaces any previously held result and raises "results ready"
func (t *Test) ReceiveTestResults(rs *domain.ResultSet) {
	t.result = rs
	notifyResults(t)
}

// Outcome returns the outcome of the last delivered result
func (t *Test) Outcome() (domain.Outcome, bool) {
	if t.result == nil {
		return domain.Outcome{}, false
	}
	return t.result.Outcome(), true
}

func (t *Test) clearPending() {}
