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

// BrowseCommand handles the browse command
type BrowseCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	runner  execution.ProcessRunner
}

// NewBrowseCommand creates a new BrowseCommand
func NewBrowseCommand(cfg *config.Config, scanner *discovery.Scanner, runner execution.ProcessRunner) *BrowseCommand {
	return &BrowseCommand{
		config:  cfg,
		scanner: scanner,
		runner:  runner,
	}
}

// Execute runs the command
func (bc *BrowseCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, unchecked, err := targets(bc.config, bc.scanner, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		color.Yellow("No test executables found")
		return nil
	}

	s := newSession(ctx, bc.config, bc.runner, paths)
	stop := s.start(ctx)
	defer stop()

	browser := ui.NewBrowser(s.loop, s.exes, unchecked, storage.NewSetupStore(bc.config.GetSetupPath()))
	return browser.Run(ctx)
}
