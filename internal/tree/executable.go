package tree

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/eventloop"
	"gtr/internal/execution"
	"gtr/internal/parser"
)

// Options are the collaborators of an Executable
type Options struct {
	// Context bounds every invocation of the executable. Cancelling it
	// stops outstanding runs and listings. Defaults to context.Background.
	Context  context.Context
	Config   *config.Config
	Runner   execution.ProcessRunner
	Poster   eventloop.Poster
	Parser   parser.Parser
	Listing  *discovery.ListingParser
	Observer Observer
}

// Executable is the root of a test tree and stands for one test binary.
// It validates the binary's path, retrieves its listing and is the terminus
// of run requests: requests raised during one turn of the control thread
// are coalesced into a single invocation of the binary.
//
// A request raised while an invocation or listing is outstanding is queued
// and raised again once that invocation completes.
type Executable struct {
	Suite

	ctx      context.Context
	config   *config.Config
	runner   execution.ProcessRunner
	poster   eventloop.Poster
	parser   parser.Parser
	listing  *discovery.ListingParser
	observer Observer

	path        string
	state       domain.ValidationState
	exitCode    int
	hasExitCode bool

	scheduled bool
	running   bool
	listingOn bool
	cancel    context.CancelFunc
	stopList  context.CancelFunc
	requested []string
	seen      map[string]bool
	deferred  []*Test
}

// NewExecutable creates an unvalidated executable root
func NewExecutable(opts Options) *Executable {
	e := &Executable{
		ctx:      opts.Context,
		config:   opts.Config,
		runner:   opts.Runner,
		poster:   opts.Poster,
		parser:   opts.Parser,
		listing:  opts.Listing,
		observer: opts.Observer,
		seen:     make(map[string]bool),
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	if e.config == nil {
		e.config = config.New()
	}
	if e.parser == nil {
		e.parser = parser.NewGTestParser()
	}
	if e.listing == nil {
		e.listing = discovery.NewListingParser()
	}
	e.Suite.init("", e)
	return e
}

// SetObserver replaces the observer notified of completions
func (e *Executable) SetObserver(o Observer) {
	e.observer = o
}

// Path returns the executable path last passed to SetExecutablePath
func (e *Executable) Path() string {
	return e.path
}

// LastExitCode returns the exit code of the last completed invocation
func (e *Executable) LastExitCode() (int, bool) {
	return e.exitCode, e.hasExitCode
}

// Busy reports whether a run or listing is scheduled or outstanding
func (e *Executable) Busy() bool {
	return e.scheduled || e.running || e.listingOn
}

// Find returns the node addressed by a gtest name such as "Suite.Test"
func (e *Executable) Find(qualified string) Node {
	var n Node = e
	for _, part := range strings.Split(qualified, ".") {
		s, ok := n.(interface{ Child(string) Node })
		if !ok {
			return nil
		}
		n = s.Child(part)
		if n == nil {
			return nil
		}
	}
	return n
}

// Tests returns every leaf in tree order
func (e *Executable) Tests() []*Test {
	var out []*Test
	e.Walk(func(n Node) {
		if t, ok := n.(*Test); ok {
			out = append(out, t)
		}
	})
	return out
}

func (e *Executable) receiveRunRequest(child Node, req runRequest) {
	e.addPending(child)

	if e.running || e.listingOn {
		e.deferRequest(req.origin)
		return
	}

	name := req.qualified()
	if !e.seen[name] {
		e.seen[name] = true
		e.requested = append(e.requested, name)
	}
	if !e.scheduled {
		e.scheduled = true
		e.poster.Post(e.dispatch)
	}
}

func (e *Executable) deferRequest(origin *Test) {
	if origin == nil {
		return
	}
	for _, t := range e.deferred {
		if t == origin {
			return
		}
	}
	e.deferred = append(e.deferred, origin)
}

// dispatch invokes the executable once for everything requested so far
func (e *Executable) dispatch() {
	if !e.scheduled {
		return
	}
	e.scheduled = false

	names := e.requested
	e.requested = nil
	e.seen = make(map[string]bool)

	if e.state != domain.Valid {
		e.clearPending()
		e.finish(-1, e.Err())
		return
	}

	args := []string{}
	if e.config.Selective && len(names) > 0 {
		args = append(args, e.config.FilterArg(names))
	}

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	e.running = true
	log.Debug("dispatching run", "path", e.path, "tests", len(names), "args", args)

	e.runner.Invoke(ctx, e.path, args, func(c execution.Completion) {
		e.poster.Post(func() { e.complete(c) })
	})
}

func (e *Executable) complete(c execution.Completion) {
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	if c.Err != nil {
		log.Warn("run did not complete", "path", e.path, "err", c.Err)
		e.clearPending()
		e.deferred = nil
		e.finish(c.ExitCode, c.Err)
		return
	}

	rs := e.parser.Parse(e.path, c.ExitCode, c.Stdout)
	e.ReceiveTestResults(rs)
	e.finish(c.ExitCode, nil)
	e.raiseDeferred()
}

func (e *Executable) finish(exitCode int, err error) {
	e.exitCode = exitCode
	e.hasExitCode = true
	if e.observer != nil {
		e.observer.RunFinished(e, exitCode, err)
	}
}

// raiseDeferred re-runs the tests whose requests arrived while busy
func (e *Executable) raiseDeferred() {
	deferred := e.deferred
	e.deferred = nil
	for _, t := range deferred {
		if Root(t) == e {
			t.Run()
		}
	}
}

// Cancel stops a scheduled or outstanding run. The run completes with
// domain.ErrRunCancelled and every pending list is cleared. An outstanding
// listing is stopped too and completes with an error wrapping
// domain.ErrRunCancelled.
func (e *Executable) Cancel() {
	if e.listingOn && e.stopList != nil {
		e.stopList()
	}
	switch {
	case e.running:
		if e.cancel != nil {
			e.cancel()
		}
	case e.scheduled:
		e.scheduled = false
		e.requested = nil
		e.seen = make(map[string]bool)
		e.deferred = nil
		e.clearPending()
		e.finish(-1, domain.ErrRunCancelled)
	}
}
