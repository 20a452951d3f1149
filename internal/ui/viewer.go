package ui

import (
	"gtr/internal/domain"
	"gtr/internal/tree"
)

// Viewer displays stored run results in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}

// ExecutableView is a copy of an executable tree taken on the control
// thread so that it can be rendered elsewhere.
type ExecutableView struct {
	Path     string
	State    domain.ValidationState
	Busy     bool
	ExitCode *int
	Suites   []SuiteView
}

// SuiteView is a suite of an ExecutableView
type SuiteView struct {
	Name    string
	Outcome *domain.Outcome
	Tests   []TestView
}

// TestView is a test of a SuiteView
type TestView struct {
	Name    string
	Outcome *domain.Outcome
}

// FullName returns the gtest address of the test within suite s
func (s SuiteView) FullName(t TestView) string {
	return domain.QualifiedName(s.Name, t.Name)
}

// Snapshot copies e. It must run on e's control thread.
func Snapshot(e *tree.Executable) ExecutableView {
	v := ExecutableView{Path: e.Path(), State: e.State(), Busy: e.Busy()}
	if code, ok := e.LastExitCode(); ok {
		v.ExitCode = &code
	}

	for _, child := range e.Children() {
		suite, ok := child.(*tree.Suite)
		if !ok {
			continue
		}
		sv := SuiteView{Name: suite.Name(), Outcome: outcomeOf(suite.Result())}
		for _, n := range suite.Children() {
			if test, ok := n.(*tree.Test); ok {
				sv.Tests = append(sv.Tests, TestView{Name: test.Name(), Outcome: outcomeOf(test.Result())})
			}
		}
		v.Suites = append(v.Suites, sv)
	}
	return v
}

func outcomeOf(rs *domain.ResultSet) *domain.Outcome {
	if rs == nil {
		return nil
	}
	o := rs.Outcome()
	return &o
}

// FilterView keeps the tests of v whose full name matches match; suites
// left without tests are dropped.
func FilterView(v ExecutableView, match func(fullName string) bool) ExecutableView {
	out := v
	out.Suites = nil
	for _, s := range v.Suites {
		kept := s
		kept.Tests = nil
		for _, t := range s.Tests {
			if match(s.FullName(t)) {
				kept.Tests = append(kept.Tests, t)
			}
		}
		if len(kept.Tests) > 0 {
			out.Suites = append(out.Suites, kept)
		}
	}
	return out
}
