package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"gtr/internal/domain"
	"gtr/internal/eventloop"
	"gtr/internal/storage"
	"gtr/internal/tree"
)

// Browser is the interactive checkbox tree of executables, suites and tests.
// Tree state is owned by the control thread behind poster; the browser only
// ever sees Snapshots of it and posts user actions back.
type Browser struct {
	poster eventloop.Poster
	exes   map[string]*tree.Executable
	order  []string
	setup  *storage.SetupStore

	app    *tview.Application
	view   *tview.TreeView
	status *tview.TextView

	checks    *CheckTree
	outcomes  map[string]*domain.Outcome
	testNames map[*CheckItem]string
	views     map[string]ExecutableView
	unchecked map[string]map[string]bool
}

// RunPlan is what a run request for one executable amounts to
type RunPlan struct {
	All   bool
	Tests []string
}

// NewBrowser creates a browser over exes, which must already hold their
// paths. unchecked lists, per executable path, tests that start unchecked.
// setup (may be nil) is where the 's' key saves the session.
func NewBrowser(poster eventloop.Poster, exes []*tree.Executable, unchecked map[string][]string, setup *storage.SetupStore) *Browser {
	b := &Browser{
		poster:    poster,
		exes:      make(map[string]*tree.Executable),
		setup:     setup,
		checks:    NewCheckTree(nil),
		outcomes:  make(map[string]*domain.Outcome),
		testNames: make(map[*CheckItem]string),
		views:     make(map[string]ExecutableView),
		unchecked: make(map[string]map[string]bool),
	}
	for _, e := range exes {
		b.exes[e.Path()] = e
		b.order = append(b.order, e.Path())
		b.checks.Add(nil, e.Path(), e.Path())
	}
	for path, names := range unchecked {
		b.unchecked[path] = make(map[string]bool)
		for _, n := range names {
			b.unchecked[path][n] = true
		}
	}
	return b
}

// Run shows the browser until the user quits or ctx is done
func (b *Browser) Run(ctx context.Context) error {
	b.app = tview.NewApplication()
	b.view = tview.NewTreeView()
	b.view.SetBorder(true).SetTitle(" gtr ")
	b.status = tview.NewTextView().SetDynamicColors(true)
	help := tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [yellow]space[white] toggle  [yellow]r[white] run  [yellow]c[white] cancel  [yellow]l[white] refresh listings  [yellow]s[white] save setup  [yellow]q[white] quit")

	b.view.SetInputCapture(b.handleKey)
	b.render()

	for _, path := range b.order {
		e := b.exes[path]
		b.poster.Post(func() {
			e.SetObserver(tree.Hooks{
				OnListing: func(e *tree.Executable, err error) {
					if err != nil {
						b.publish(e, fmt.Sprintf("[red]listing failed:[white] %s", tview.Escape(err.Error())))
						return
					}
					b.publish(e, "")
				},
				OnRun: func(e *tree.Executable, code int, err error) {
					if err != nil {
						b.publish(e, fmt.Sprintf("[red]run failed:[white] %s", tview.Escape(err.Error())))
						return
					}
					b.publish(e, fmt.Sprintf("%s finished with exit code %d", tview.Escape(e.Path()), code))
				},
			})
			b.publish(e, "")
			e.ProduceListing(nil)
		})
	}

	go func() {
		<-ctx.Done()
		b.app.Stop()
	}()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.view, 0, 1, true).
		AddItem(b.status, 1, 0, false).
		AddItem(help, 1, 0, false)

	if err := b.app.SetRoot(layout, true).SetFocus(b.view).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// publish runs on the control thread and hands a snapshot to the UI thread
func (b *Browser) publish(e *tree.Executable, msg string) {
	snap := Snapshot(e)
	b.app.QueueUpdateDraw(func() {
		b.sync(snap)
		if msg != "" {
			b.status.SetText(" " + msg)
		}
		b.render()
	})
}

// sync merges a snapshot into the check tree, keeping existing check states
func (b *Browser) sync(v ExecutableView) {
	b.views[v.Path] = v
	root := b.checks.Find(v.Path)
	if root == nil {
		root = b.checks.Add(nil, v.Path, v.Path)
		b.order = append(b.order, v.Path)
	}

	keep := make(map[string]bool)
	for _, s := range v.Suites {
		sKey := FailureKey(v.Path, s.Name)
		keep[sKey] = true
		suite := b.checks.Add(root, sKey, s.Name)
		b.outcomes[sKey] = s.Outcome

		for _, t := range s.Tests {
			full := s.FullName(t)
			key := FailureKey(v.Path, full)
			keep[key] = true
			b.outcomes[key] = t.Outcome
			if b.checks.Find(key) != nil {
				continue
			}
			item := b.checks.Add(suite, key, t.Name)
			b.testNames[item] = full
			if b.unchecked[v.Path][full] {
				b.checks.SetState(item, Unchecked)
			}
		}
	}

	for _, suite := range root.Children() {
		for _, test := range suite.Children() {
			if !keep[test.Key] {
				delete(b.testNames, test)
				delete(b.outcomes, test.Key)
				b.checks.Remove(test)
			}
		}
		if !keep[suite.Key] {
			for _, test := range suite.Children() {
				delete(b.testNames, test)
			}
			delete(b.outcomes, suite.Key)
			b.checks.Remove(suite)
		}
	}
}

// Plans returns the run request of every executable with checked tests
func (b *Browser) Plans() map[string]RunPlan {
	plans := make(map[string]RunPlan)
	for _, root := range b.checks.Roots() {
		if len(root.Children()) == 0 || root.State() == Unchecked {
			continue
		}
		if root.State() == Checked {
			plans[root.Key] = RunPlan{All: true}
			continue
		}
		var names []string
		for _, leaf := range b.checks.CheckedLeaves(root) {
			if name, ok := b.testNames[leaf]; ok {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			plans[root.Key] = RunPlan{Tests: names}
		}
	}
	return plans
}

// UncheckedTests returns the unchecked test names per executable
func (b *Browser) UncheckedTests() map[string][]string {
	out := make(map[string][]string)
	for _, root := range b.checks.Roots() {
		var walk func(*CheckItem)
		walk = func(i *CheckItem) {
			if name, ok := b.testNames[i]; ok && i.State() == Unchecked {
				out[root.Key] = append(out[root.Key], name)
			}
			for _, c := range i.Children() {
				walk(c)
			}
		}
		walk(root)
	}
	return out
}

func (b *Browser) runChecked() {
	plans := b.Plans()
	if len(plans) == 0 {
		b.status.SetText(" [yellow]nothing checked")
		return
	}
	for path, plan := range plans {
		e, plan := b.exes[path], plan
		if e == nil {
			continue
		}
		b.poster.Post(func() {
			if plan.All {
				e.Run()
				return
			}
			for _, name := range plan.Tests {
				if n := e.Find(name); n != nil {
					n.Run()
				}
			}
		})
	}
	b.status.SetText(fmt.Sprintf(" running %d executable(s)...", len(plans)))
}

func (b *Browser) forEach(fn func(e *tree.Executable)) {
	for _, path := range b.order {
		if e := b.exes[path]; e != nil {
			b.poster.Post(func() { fn(e) })
		}
	}
}

func (b *Browser) saveSetup() {
	if b.setup == nil {
		return
	}
	unchecked := b.UncheckedTests()
	setup := &domain.TestSetup{}
	for _, path := range b.order {
		setup.Executables = append(setup.Executables, domain.SetupEntry{Path: path, Unchecked: unchecked[path]})
	}
	if err := b.setup.Save(setup); err != nil {
		log.Error("failed to save test setup", "err", err)
		b.status.SetText(" [red]" + tview.Escape(err.Error()))
		return
	}
	b.status.SetText(" saved " + tview.Escape(b.setup.Path()))
}

func (b *Browser) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		b.app.Stop()
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case ' ':
		if node := b.view.GetCurrentNode(); node != nil {
			if item, ok := node.GetReference().(*CheckItem); ok {
				b.checks.Toggle(item)
				b.render()
			}
		}
	case 'r':
		b.runChecked()
	case 'c':
		b.forEach(func(e *tree.Executable) { e.Cancel() })
		b.status.SetText(" cancelling...")
	case 'l':
		b.forEach(func(e *tree.Executable) { e.ProduceListing(nil) })
		b.status.SetText(" refreshing listings...")
	case 's':
		b.saveSetup()
	case 'q':
		b.app.Stop()
	default:
		return event
	}
	return nil
}

// render rebuilds the tview nodes from the check tree, keeping the cursor
func (b *Browser) render() {
	var currentKey string
	if cur := b.view.GetCurrentNode(); cur != nil {
		if item, ok := cur.GetReference().(*CheckItem); ok {
			currentKey = item.Key
		}
	}

	root := tview.NewTreeNode("executables").SetSelectable(false)
	var current *tview.TreeNode
	var add func(parent *tview.TreeNode, item *CheckItem)
	add = func(parent *tview.TreeNode, item *CheckItem) {
		node := tview.NewTreeNode(b.label(item)).
			SetReference(item).
			SetColor(b.color(item))
		parent.AddChild(node)
		if item.Key == currentKey {
			current = node
		}
		for _, c := range item.Children() {
			add(node, c)
		}
	}
	for _, item := range b.checks.Roots() {
		add(root, item)
	}

	b.view.SetRoot(root).SetTopLevel(1)
	if current == nil && len(root.GetChildren()) > 0 {
		current = root.GetChildren()[0]
	}
	b.view.SetCurrentNode(current)
}

func (b *Browser) label(item *CheckItem) string {
	text := item.State().glyph() + " " + tview.Escape(item.Label)
	if item.Parent() != nil {
		return text
	}

	v, ok := b.views[item.Key]
	switch {
	case !ok:
	case v.State != domain.Valid:
		text += fmt.Sprintf(" (%s)", strings.ToLower(v.State.String()))
	case v.Busy:
		text += " (busy)"
	case v.ExitCode != nil:
		text += fmt.Sprintf(" (exit %d)", *v.ExitCode)
	}
	return text
}

func (b *Browser) color(item *CheckItem) tcell.Color {
	if item.Parent() == nil {
		if v, ok := b.views[item.Key]; ok && v.State != domain.Valid {
			return tcell.ColorRed
		}
		return tcell.ColorTeal
	}
	o := b.outcomes[item.Key]
	if o == nil {
		return tcell.ColorWhite
	}
	switch o.Status {
	case domain.StatusPassed:
		return tcell.ColorGreen
	case domain.StatusFailed:
		return tcell.ColorRed
	}
	return tcell.ColorYellow
}
