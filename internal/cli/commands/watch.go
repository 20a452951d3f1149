package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/execution"
	"gtr/internal/storage"
	"gtr/internal/tree"
	"gtr/internal/ui"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	runner    execution.ProcessRunner
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	runner execution.ProcessRunner,
	st storage.Storage,
	formatter *ui.Formatter,
) *WatchCommand {
	return &WatchCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		runner:    runner,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs every executable once, then re-lists and re-runs each one
// whenever its file changes, until interrupted
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, _, err := targets(wc.config, wc.scanner, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		color.Yellow("No test executables to watch")
		return nil
	}

	watcher, err := discovery.NewWatcher(paths, discovery.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch executables: %w", err)
	}
	defer watcher.Close()

	s := newSession(ctx, wc.config, wc.runner, paths)
	stop := s.start(ctx)
	defer stop()

	byPath := make(map[string]*tree.Executable)
	for _, e := range s.exes {
		byPath[e.Path()] = e
	}

	if err := wc.cycle(ctx, s, s.valid()); err != nil {
		return err
	}

	color.Cyan("Watching %d executable(s), press Ctrl+C to stop", len(paths))
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-watcher.Events:
			e := findExecutable(byPath, changed)
			if e == nil {
				continue
			}
			log.Debug("executable changed", "path", changed)
			var invalid error
			if err := s.do(ctx, func() {
				if e.SetExecutablePath(e.Path()) != domain.Valid {
					invalid = e.Err()
				}
			}); err != nil {
				return nil
			}
			if invalid != nil {
				color.Yellow("Skipping %s: %v", e.Path(), invalid)
				continue
			}
			if err := wc.cycle(ctx, s, []*tree.Executable{e}); err != nil {
				return err
			}
		}
	}
}

// cycle refreshes the listings of exes and runs them
func (wc *WatchCommand) cycle(ctx context.Context, s *session, exes []*tree.Executable) error {
	start := time.Now()
	listed, records, err := s.listAll(ctx, exes)
	if err != nil {
		return err
	}
	ran, err := s.runAll(ctx, listed, wc.filter, wc.config.Flags.NameFilter, nil)
	if err != nil {
		return err
	}
	records = append(records, ran...)

	duration := time.Since(start)
	if err := wc.storage.Save(records, duration, wc.config.Processors); err != nil {
		log.Warn("failed to save test results", "err", err)
	}
	recordHistory(ctx, wc.config, records)
	wc.formatter.PrintResults(records, duration)
	return nil
}

func findExecutable(byPath map[string]*tree.Executable, changed string) *tree.Executable {
	if e, ok := byPath[changed]; ok {
		return e
	}
	for p, e := range byPath {
		if abs, err := filepath.Abs(p); err == nil && abs == changed {
			return e
		}
	}
	return nil
}
