package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gtr/internal/cli"
	"gtr/internal/cli/commands"
	"gtr/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	log.SetReportTimestamp(false)
	log.SetPrefix("gtr")

	rootCmd := &cobra.Command{
		Use:           "gtr",
		Short:         "Google Test runner",
		Long:          `Discover Google Test executables, browse their suites and tests, run them and keep track of failures.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
