package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/storage"
)

// SetupCommand handles the setup subcommands
type SetupCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
}

// NewSetupCommand creates a new SetupCommand
func NewSetupCommand(cfg *config.Config, scanner *discovery.Scanner) *SetupCommand {
	return &SetupCommand{config: cfg, scanner: scanner}
}

// Save writes the executables found from args as the test setup.
// Unchecked tests of executables already in the setup are kept.
func (sc *SetupCommand) Save(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths(sc.config, sc.scanner, args)
	if err != nil {
		return err
	}

	store := storage.NewSetupStore(sc.config.GetSetupPath())
	previous := make(map[string][]string)
	if old, err := store.Load(); err == nil {
		for _, e := range old.Executables {
			previous[e.Path] = e.Unchecked
		}
	}

	setup := &domain.TestSetup{}
	for _, p := range paths {
		setup.Executables = append(setup.Executables, domain.SetupEntry{Path: p, Unchecked: previous[p]})
	}
	if err := store.Save(setup); err != nil {
		return err
	}
	color.Green("Saved %d executable(s) to %s", len(paths), store.Path())
	return nil
}

// Show prints the saved test setup
func (sc *SetupCommand) Show(cmd *cobra.Command, args []string) error {
	store := storage.NewSetupStore(sc.config.GetSetupPath())
	setup, err := store.Load()
	if err != nil {
		return err
	}

	color.Green("Test setup %s (%d executable(s)):", store.Path(), len(setup.Executables))
	for _, e := range setup.Executables {
		color.Cyan("  %s", e.Path)
		for _, name := range e.Unchecked {
			fmt.Printf("    %s %s\n", color.YellowString("unchecked"), name)
		}
	}
	return nil
}
