package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "gtr-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".gtr"
	// DefaultSetupFile is the default test setup file name
	DefaultSetupFile = "gtr-setup.json"
	// DefaultProcessors is the default number of executables run at once
	DefaultProcessors = 4
	// DefaultRunTimeout bounds a single invocation of a test executable
	DefaultRunTimeout = 10 * time.Minute
	// DefaultListFlag makes a Google Test executable print its tests instead of running them
	DefaultListFlag = "--gtest_list_tests"
	// DefaultFilterFlag selects a subset of tests to run
	DefaultFilterFlag = "--gtest_filter="
	// DefaultHistoryTable is the table the MySQL history sink writes to
	DefaultHistoryTable = "gtr_results"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for executables
var DefaultPathsToIgnore = []string{
	"CMakeFiles",
	"_deps",
	"node_modules",
	"vendor",
	"third_party",
}
