package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/execution"
	"gtr/internal/storage"
	"gtr/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	runner    execution.ProcessRunner
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	runner execution.ProcessRunner,
	st storage.Storage,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		runner:    runner,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, _, err := targets(lc.config, lc.scanner, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		color.Yellow("No test executables found")
		return nil
	}

	s := newSession(ctx, lc.config, lc.runner, paths)
	stop := s.start(ctx)
	defer stop()

	listed, _, err := s.listAll(ctx, s.valid())
	if err != nil {
		return err
	}
	views, err := s.snapshots(ctx, listed)
	if err != nil {
		return err
	}

	if pattern := lc.config.Flags.NameFilter; pattern != "" {
		for i := range views {
			views[i] = ui.FilterView(views[i], func(name string) bool { return lc.filter.Match(name, pattern) })
		}
	}

	lc.formatter.PrintListing(views, lc.config.Flags.ShowTests || lc.config.Flags.NameFilter != "", lc.lastFailures())
	return nil
}

// lastFailures returns the failed tests of the previous run, keyed for PrintListing
func (lc *ListCommand) lastFailures() map[string]struct{} {
	out, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, f := range out.Details {
		if !f.Resolved {
			failed[ui.FailureKey(f.Executable, f.FullName())] = struct{}{}
		}
	}
	return failed
}
