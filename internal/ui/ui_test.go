package ui

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"

	"gtr/internal/config"
	"gtr/internal/domain"
	"gtr/internal/eventloop"
	"gtr/internal/tree"
)

func sampleView() ExecutableView {
	failed := domain.Outcome{Status: domain.StatusFailed}
	return ExecutableView{
		Path:  "/build/math_test",
		State: domain.Valid,
		Suites: []SuiteView{
			{Name: "Math", Tests: []TestView{{Name: "Add"}, {Name: "Sub", Outcome: &failed}}},
			{Name: "Io", Tests: []TestView{{Name: "Read"}}},
		},
	}
}

func newBrowser(unchecked map[string][]string) *Browser {
	e := tree.NewExecutable(tree.Options{Poster: &eventloop.Manual{}})
	e.SetExecutablePath("/build/math_test")
	return NewBrowser(&eventloop.Manual{}, []*tree.Executable{e}, unchecked, nil)
}

func TestBrowser_Plans(t *testing.T) {
	b := newBrowser(nil)
	b.sync(sampleView())

	if got := b.Plans(); !reflect.DeepEqual(got, map[string]RunPlan{"/build/math_test": {All: true}}) {
		t.Errorf("expected a full run, got %v", got)
	}

	b.checks.Toggle(b.checks.Find(FailureKey("/build/math_test", "Io")))
	want := map[string]RunPlan{"/build/math_test": {Tests: []string{"Math.Add", "Math.Sub"}}}
	if got := b.Plans(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	b.checks.SetState(b.checks.Find("/build/math_test"), Unchecked)
	if got := b.Plans(); len(got) != 0 {
		t.Errorf("expected nothing to run, got %v", got)
	}
}

func TestBrowser_SyncKeepsStates(t *testing.T) {
	b := newBrowser(map[string][]string{"/build/math_test": {"Math.Sub"}})
	b.sync(sampleView())

	sub := b.checks.Find(FailureKey("/build/math_test", "Math.Sub"))
	if sub == nil || sub.State() != Unchecked {
		t.Fatal("expected Math.Sub to start unchecked")
	}
	if got := b.UncheckedTests(); !reflect.DeepEqual(got, map[string][]string{"/build/math_test": {"Math.Sub"}}) {
		t.Errorf("unexpected unchecked tests %v", got)
	}

	// a new listing drops Io and adds Math.Mul; Math.Sub stays unchecked
	v := sampleView()
	v.Suites = v.Suites[:1]
	v.Suites[0].Tests = append(v.Suites[0].Tests, TestView{Name: "Mul"})
	b.sync(v)

	if b.checks.Find(FailureKey("/build/math_test", "Io")) != nil {
		t.Error("expected Io to be removed")
	}
	if b.checks.Find(FailureKey("/build/math_test", "Math.Sub")).State() != Unchecked {
		t.Error("expected Math.Sub to keep its state")
	}
	mul := b.checks.Find(FailureKey("/build/math_test", "Math.Mul"))
	if mul == nil || mul.State() != Checked {
		t.Error("expected new test to start checked")
	}
	if b.color(b.checks.Find(FailureKey("/build/math_test", "Math.Sub"))) != tcell.ColorRed {
		t.Error("expected the failed test to render red")
	}
}

func TestSnapshot(t *testing.T) {
	e := tree.NewExecutable(tree.Options{Poster: &eventloop.Manual{}})
	e.Build([]domain.ListingEntry{{Suite: "Math", Tests: []string{"Add", "Sub"}}})
	e.Find("Math.Add").ReceiveTestResults(domain.NewResultSet("Add", domain.Outcome{Status: domain.StatusPassed}))

	v := Snapshot(e)
	if len(v.Suites) != 1 || len(v.Suites[0].Tests) != 2 {
		t.Fatalf("unexpected snapshot %+v", v)
	}
	if o := v.Suites[0].Tests[0].Outcome; o == nil || o.Status != domain.StatusPassed {
		t.Errorf("expected Add to carry its outcome, got %v", o)
	}
	if v.Suites[0].Tests[1].Outcome != nil {
		t.Error("expected Sub without outcome")
	}
	if v.State != domain.Unvalidated || v.ExitCode != nil {
		t.Errorf("unexpected executable state %+v", v)
	}

	filtered := FilterView(v, func(name string) bool { return strings.HasSuffix(name, "Sub") })
	if len(filtered.Suites) != 1 || len(filtered.Suites[0].Tests) != 1 {
		t.Errorf("unexpected filtered view %+v", filtered)
	}
	if len(FilterView(v, func(string) bool { return false }).Suites) != 0 {
		t.Error("expected empty suites to be dropped")
	}
}

func TestFormatter_PrintListing(t *testing.T) {
	color.NoColor = true
	cfg := config.New()
	cfg.ProjectPath = "/build"

	var buf bytes.Buffer
	f := NewFormatter(cfg)
	f.SetOutput(&buf)
	f.PrintListing([]ExecutableView{sampleView()}, true, map[string]struct{}{
		FailureKey("/build/math_test", "Math.Sub"): {},
	})

	out := buf.String()
	for _, want := range []string{"Found 1 executable(s) with 3 test(s)", "└── math_test", "Math (2)", "Sub [F]", "Read"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Add [F]") {
		t.Error("expected only failed tests to be marked")
	}
}

func TestFormatter_PrintResults(t *testing.T) {
	color.NoColor = true
	cfg := config.New()
	cfg.ProjectPath = "/build"

	run := domain.RunRecord{
		Executable: "/build/math_test",
		ExitCode:   1,
		Results: domain.Aggregate("/build/math_test",
			domain.Aggregate("Math",
				domain.NewResultSet("Add", domain.Outcome{Status: domain.StatusPassed}),
				domain.NewResultSet("Sub", domain.Outcome{Status: domain.StatusFailed, Message: "math.cc:9: Failure"}),
			),
		),
	}

	var buf bytes.Buffer
	f := NewFormatter(cfg)
	f.SetOutput(&buf)
	f.PrintResults([]domain.RunRecord{run}, 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"Test Execution Statistics", "Failed Tests", "1.50s", "✗ 1 failure(s) in 1 executable(s)", "|_Sub: math.cc:9: Failure"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	buf.Reset()
	f.PrintSummary(&domain.TestResultsOutput{})
	if !strings.Contains(buf.String(), "All tests passed") {
		t.Errorf("expected success banner, got:\n%s", buf.String())
	}
}

func TestFormatFailureDetails(t *testing.T) {
	output := make([]string, maxOutputLines+5)
	for i := range output {
		output[i] = "line"
	}
	details := formatFailureDetails(domain.TestFailure{
		Executable: "/build/math_test",
		Suite:      "Math",
		TestName:   "Sub",
		Message:    "Expected [1]",
		Output:     output,
	})

	for _, want := range []string{"Test: Math.Sub", "Executable: /build/math_test", "and 5 more lines", "Expected [1[]"} {
		if !strings.Contains(details, want) {
			t.Errorf("expected details to contain %q, got:\n%s", want, details)
		}
	}

	if got := listItemText(domain.TestFailure{}, 1); !strings.Contains(got, "Run 2") {
		t.Errorf("expected run-level failures to be numbered, got %q", got)
	}
	if got := listItemText(domain.TestFailure{Suite: "A", TestName: "b", Resolved: true}, 0); !strings.Contains(got, "✓") {
		t.Errorf("expected resolved marker, got %q", got)
	}
}
