package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/execution"
	"gtr/internal/storage"
	"gtr/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	runner    execution.ProcessRunner
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	runner execution.ProcessRunner,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		runner:    runner,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, _, err := targets(rc.config, rc.scanner, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		color.Yellow("No test executables to run")
		return nil
	}

	records, duration, err := rc.runOnce(ctx, paths)
	if err != nil {
		return err
	}

	if err := rc.storage.Save(records, duration, rc.config.Processors); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	recordHistory(ctx, rc.config, records)
	rc.formatter.PrintResults(records, duration)

	if rc.config.Flags.OpenFailures && hasFailures(records) {
		out, err := rc.storage.Load()
		if err != nil {
			return err
		}
		return rc.viewer.View(out)
	}
	return nil
}

// runOnce lists and runs paths, returning one record per executable
func (rc *RunCommand) runOnce(ctx context.Context, paths []string) ([]domain.RunRecord, time.Duration, error) {
	start := time.Now()

	s := newSession(ctx, rc.config, rc.runner, paths)
	stop := s.start(ctx)
	defer stop()

	var records []domain.RunRecord
	for _, e := range s.exes {
		if e.State() != domain.Valid {
			records = append(records, domain.RunRecord{Executable: e.Path(), ExitCode: -1, Err: e.Err()})
		}
	}

	listed, failed, err := s.listAll(ctx, s.valid())
	if err != nil {
		return nil, 0, err
	}
	records = append(records, failed...)

	bar := ui.NewProgressBar(len(listed))
	passed, failedRuns := 0, 0
	ran, err := s.runAll(ctx, listed, rc.filter, rc.config.Flags.NameFilter, func(r domain.RunRecord) {
		if r.Err == nil && r.ExitCode == 0 {
			passed++
		} else {
			failedRuns++
		}
		bar.Update(passed, failedRuns)
	})
	bar.Finish()
	if err != nil {
		return nil, 0, err
	}

	return append(records, ran...), time.Since(start), nil
}

// recordHistory appends the runs to the optional MySQL history. Failures are
// logged, they never fail the run.
func recordHistory(ctx context.Context, cfg *config.Config, records []domain.RunRecord) {
	history, err := storage.OpenHistory(ctx, cfg)
	if err != nil {
		log.Warn("run history unavailable", "err", err)
		return
	}
	if history == nil {
		return
	}
	defer history.Close()

	for _, r := range records {
		if err := history.Record(ctx, r); err != nil {
			log.Warn("failed to record run history", "executable", r.Executable, "err", err)
		}
	}
}

func hasFailures(records []domain.RunRecord) bool {
	for _, r := range records {
		if len(r.Failures()) > 0 {
			return true
		}
	}
	return false
}
