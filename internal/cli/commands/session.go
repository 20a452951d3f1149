package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/eventloop"
	"gtr/internal/execution"
	"gtr/internal/storage"
	"gtr/internal/tree"
	"gtr/internal/ui"
)

// session owns the executables of one command invocation and the control
// thread their trees live on
type session struct {
	config *config.Config
	loop   *eventloop.Loop
	exes   []*tree.Executable

	listings chan listingDone
	runs     chan domain.RunRecord
}

// settleTimeout bounds how long an interrupted command waits for its killed
// processes to report back
const settleTimeout = 3 * time.Second

type listingDone struct {
	exe *tree.Executable
	err error
}

// resolvePaths turns command arguments into executable paths. Directories are
// scanned, files are taken as is. With no arguments the project is scanned.
func resolvePaths(cfg *config.Config, scanner *discovery.Scanner, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{cfg.ProjectPath}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, arg := range args {
		found, err := scanner.Scan(arg)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// targets resolves the executables of a command: its arguments, or the saved
// test setup when there are none and a setup file was named
func targets(cfg *config.Config, scanner *discovery.Scanner, args []string) ([]string, map[string][]string, error) {
	if len(args) == 0 && cfg.Flags.SetupFile != "" {
		setup, err := storage.NewSetupStore(cfg.GetSetupPath()).Load()
		if err != nil {
			return nil, nil, err
		}
		unchecked := make(map[string][]string)
		for _, e := range setup.Executables {
			unchecked[e.Path] = e.Unchecked
		}
		return setup.Paths(), unchecked, nil
	}

	paths, err := resolvePaths(cfg, scanner, args)
	return paths, nil, err
}

// newSession validates every path, repairing permissions when asked to.
// Processes started by the session are killed once ctx is done.
func newSession(ctx context.Context, cfg *config.Config, runner execution.ProcessRunner, paths []string) *session {
	s := &session{
		config:   cfg,
		loop:     eventloop.New(),
		listings: make(chan listingDone, len(paths)),
		runs:     make(chan domain.RunRecord, len(paths)),
	}

	for _, p := range paths {
		e := tree.NewExecutable(tree.Options{Context: ctx, Config: cfg, Runner: runner, Poster: s.loop})
		e.SetObserver(tree.Hooks{
			OnListing: func(e *tree.Executable, err error) {
				s.listings <- listingDone{exe: e, err: err}
			},
			OnRun: func(e *tree.Executable, code int, err error) {
				s.runs <- domain.RunRecord{Executable: e.Path(), ExitCode: code, Err: err, Results: e.Result()}
			},
		})

		state := e.SetExecutablePath(p)
		if state == domain.InsufficientPrivileges && cfg.Flags.Repair {
			if _, err := e.AttemptPermissionRepair(); err != nil {
				log.Warn("permission repair failed", "path", p, "err", err)
			}
		}
		if e.State() != domain.Valid {
			color.Yellow("Skipping %s: %v", p, e.Err())
		}
		s.exes = append(s.exes, e)
	}
	return s
}

// start runs the control thread until the returned stop is called. The loop
// outlives ctx so that completions of interrupted processes are still applied.
func (s *session) start(ctx context.Context) (stop func()) {
	go func() {
		if err := s.loop.Run(context.WithoutCancel(ctx)); err != nil {
			log.Error("control loop stopped", "err", err)
		}
	}()
	return s.loop.Stop
}

// do runs fn on the control thread and waits for it
func (s *session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// valid returns the executables that passed validation
func (s *session) valid() []*tree.Executable {
	var out []*tree.Executable
	for _, e := range s.exes {
		if e.State() == domain.Valid {
			out = append(out, e)
		}
	}
	return out
}

// listAll retrieves the listing of every executable and returns those that succeeded.
// Failed listings are reported and returned as run records.
func (s *session) listAll(ctx context.Context, exes []*tree.Executable) ([]*tree.Executable, []domain.RunRecord, error) {
	for _, e := range exes {
		s.loop.Post(func() { e.ProduceListing(nil) })
	}

	var listed []*tree.Executable
	var failed []domain.RunRecord
	for i := range exes {
		select {
		case <-ctx.Done():
			settle(len(exes)-i, s.listings)
			return nil, nil, ctx.Err()
		case d := <-s.listings:
			if d.err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", color.RedString("Listing failed: %v", d.err))
				failed = append(failed, domain.RunRecord{Executable: d.exe.Path(), ExitCode: -1, Err: d.err})
				continue
			}
			listed = append(listed, d.exe)
		}
	}
	sortByPath(listed)
	return listed, failed, nil
}

// runAll runs every executable, restricted to tests matching filter when it
// is set, and calls progress after each completion
func (s *session) runAll(ctx context.Context, exes []*tree.Executable, filter *discovery.Filter, pattern string, progress func(domain.RunRecord)) ([]domain.RunRecord, error) {
	started := 0
	for _, e := range exes {
		names := selectTests(e, filter, pattern)
		if pattern != "" && len(names) == 0 {
			continue
		}
		started++
		s.loop.Post(func() {
			if pattern == "" {
				e.Run()
				return
			}
			for _, n := range names {
				if node := e.Find(n); node != nil {
					node.Run()
				}
			}
		})
	}

	var records []domain.RunRecord
	for i := 0; i < started; i++ {
		select {
		case <-ctx.Done():
			settle(started-i, s.runs)
			return records, ctx.Err()
		case r := <-s.runs:
			records = append(records, r)
			if progress != nil {
				progress(r)
			}
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Executable < records[j].Executable })
	return records, nil
}

// settle waits for up to n completions of processes killed by an interrupt
func settle[T any](n int, ch <-chan T) {
	timeout := time.After(settleTimeout)
	for ; n > 0; n-- {
		select {
		case <-ch:
		case <-timeout:
			log.Warn("processes did not report back after interrupt", "remaining", n)
			return
		}
	}
}

// selectTests reads the test names of e. Only call it while e is idle.
func selectTests(e *tree.Executable, filter *discovery.Filter, pattern string) []string {
	if pattern == "" {
		return nil
	}
	var names []string
	for _, t := range e.Tests() {
		names = append(names, tree.FullName(t))
	}
	return filter.FilterNames(names, pattern)
}

// snapshots copies the executables on the control thread
func (s *session) snapshots(ctx context.Context, exes []*tree.Executable) ([]ui.ExecutableView, error) {
	out := make(chan []ui.ExecutableView, 1)
	s.loop.Post(func() {
		views := make([]ui.ExecutableView, len(exes))
		for i, e := range exes {
			views[i] = ui.Snapshot(e)
		}
		out <- views
	})
	select {
	case v := <-out:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func sortByPath(exes []*tree.Executable) {
	sort.Slice(exes, func(i, j int) bool { return exes[i].Path() < exes[j].Path() })
}
