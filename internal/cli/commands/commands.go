package commands

import (
	"gtr/internal/cli"
	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/execution"
	"gtr/internal/storage"
	"gtr/internal/ui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Browse   *BrowseCommand
	Failures *FailuresCommand
	Watch    *WatchCommand
	Setup    *SetupCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	runner := execution.NewRunner(cfg)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	failuresViewer := ui.NewFailuresViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, scanner, filter, runner, jsonStorage, formatter, failuresViewer),
		List:     NewListCommand(cfg, scanner, filter, runner, jsonStorage, formatter),
		Browse:   NewBrowseCommand(cfg, scanner, runner),
		Failures: NewFailuresCommand(cfg, jsonStorage, failuresViewer, formatter),
		Watch:    NewWatchCommand(cfg, scanner, filter, runner, jsonStorage, formatter),
		Setup:    NewSetupCommand(cfg, scanner),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", "", "Project directory holding .env and the .gtr output dir (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.Repair, "repair", false, "Try to add the execute permission to executables that lack it")
	rootCmd.PersistentFlags().StringVar(&flags.SetupFile, "setup", "", "Test setup file; with no arguments its executables are used")

	// Update config with flags after parsing
	prepare := func(cmd *cobra.Command, args []string) error {
		if flags.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		cfg.Prepare(flags.ToConfigFlags())
		log.Debug("configuration loaded", "project", cfg.ProjectPath, "processors", cfg.Processors, "timeout", cfg.RunTimeout, "selective", cfg.Selective)
		return nil
	}

	runFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Maximum number of executables running at once (default 4)")
		cmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Run only tests matching a gtest filter ('Math.*:-*Slow*')")
		cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Kill an executable that runs longer than this (default 10m)")
		cmd.Flags().BoolVar(&flags.Selective, "selective", false, "Pass the requested tests to the executable with --gtest_filter instead of running it whole")
	}

	runCmd := &cobra.Command{
		Use:     "run [executable|dir]...",
		Short:   "Run Google Test executables",
		Long:    "Discover Google Test executables, list their tests and run them, saving the results",
		RunE:    c.Run.Execute,
		PreRunE: prepare,
	}
	runFlags(runCmd)
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:     "list [executable|dir]...",
		Short:   "List discovered tests",
		Long:    "Discover Google Test executables and print their suites and tests without running them",
		RunE:    c.List.Execute,
		PreRunE: prepare,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Show only tests matching a gtest filter")
	listCmd.Flags().BoolVarP(&flags.ShowTests, "tests", "t", false, "Show tests, not only suites")
	rootCmd.AddCommand(listCmd)

	browseCmd := &cobra.Command{
		Use:     "browse [executable|dir]...",
		Short:   "Browse and run tests interactively",
		Long:    "Show executables in a checkbox tree; check tests and run them, reloading listings on demand",
		RunE:    c.Browse.Execute,
		PreRunE: prepare,
	}
	browseCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Maximum number of executables running at once (default 4)")
	browseCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Kill an executable that runs longer than this (default 10m)")
	browseCmd.Flags().BoolVar(&flags.Selective, "selective", false, "Run only the checked tests instead of whole executables")
	rootCmd.AddCommand(browseCmd)

	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last run in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: prepare,
	}
	failuresCmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print the run statistics instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)

	watchCmd := &cobra.Command{
		Use:     "watch [executable|dir]...",
		Short:   "Re-run executables when they are rebuilt",
		Long:    "Run the executables once, then list and run each again whenever its file changes",
		RunE:    c.Watch.Execute,
		PreRunE: prepare,
	}
	runFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Manage the saved test setup",
	}
	setupSaveCmd := &cobra.Command{
		Use:     "save [executable|dir]...",
		Short:   "Save the discovered executables as the test setup",
		RunE:    c.Setup.Save,
		PreRunE: prepare,
	}
	setupShowCmd := &cobra.Command{
		Use:     "show",
		Short:   "Print the saved test setup",
		RunE:    c.Setup.Show,
		PreRunE: prepare,
	}
	setupCmd.AddCommand(setupSaveCmd, setupShowCmd)
	rootCmd.AddCommand(setupCmd)
}
