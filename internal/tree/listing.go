package tree

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"gtr/internal/domain"
	"gtr/internal/execution"
)

// ProduceListing runs the executable in listing mode without blocking.
// On success the parsed suites and tests replace the current children.
// A non-zero exit fails with *domain.ListingRetrievalError and a bad listing
// with *domain.MalformedListingError; in both cases the tree is left as is.
// While a run is scheduled or outstanding, or another listing is, it fails
// with *domain.RunDispatchConflictError.
// done (may be nil) and the observer are told exactly once, after the tree
// has been rebuilt.
func (e *Executable) ProduceListing(done func(error)) {
	if e.state != domain.Valid {
		err := e.Err()
		e.poster.Post(func() { e.listed(done, err) })
		return
	}
	if e.Busy() {
		err := &domain.RunDispatchConflictError{ExecutablePath: e.path}
		e.poster.Post(func() { e.listed(done, err) })
		return
	}

	ctx, cancel := context.WithCancel(e.ctx)
	e.listingOn = true
	e.stopList = cancel
	e.runner.Invoke(ctx, e.path, e.config.ListArgs(), func(c execution.Completion) {
		e.poster.Post(func() {
			cancel()
			e.listingOn = false
			e.stopList = nil
			e.listed(done, e.applyListing(c))
		})
	})
}

func (e *Executable) applyListing(c execution.Completion) error {
	if c.Err != nil {
		return fmt.Errorf("retrieve listing of %s: %w", e.path, c.Err)
	}
	if c.ExitCode != 0 {
		return &domain.ListingRetrievalError{ExitCode: c.ExitCode, ExecutablePath: e.path}
	}

	entries, err := e.listing.Parse(c.Stdout)
	if err != nil {
		return err
	}
	e.Build(entries)
	log.Debug("listing retrieved", "path", e.path, "suites", len(entries))
	return nil
}

func (e *Executable) listed(done func(error), err error) {
	if e.observer != nil {
		e.observer.ListingReady(e, err)
	}
	if done != nil {
		done(err)
	}
	e.raiseDeferred()
}

// Build replaces the children with one suite per entry holding its tests
func (e *Executable) Build(entries []domain.ListingEntry) {
	e.Clear()
	e.deferred = nil
	for _, entry := range entries {
		suite := e.AddSuite(entry.Suite)
		for _, name := range entry.Tests {
			suite.AddTest(name)
		}
	}
}
