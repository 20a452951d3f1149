package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	SetupFile      string

	// Execution settings
	Processors int
	RunTimeout time.Duration
	ListFlag   string
	FilterFlag string
	Selective  bool

	// History sink, empty disables it
	DBDSN        string
	HistoryTable string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath  string
	Processors   int
	NameFilter   string
	SetupFile    string
	Timeout      time.Duration
	Selective    bool
	Repair       bool
	Verbose      bool
	ShowTests    bool
	OpenFailures bool
	Stats        bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		SetupFile:      DefaultSetupFile,
		Processors:     DefaultProcessors,
		RunTimeout:     DefaultRunTimeout,
		ListFlag:       DefaultListFlag,
		FilterFlag:     DefaultFilterFlag,
		HistoryTable:   DefaultHistoryTable,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config, applies the project's .env file and then flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.Prepare(flags)
	return cfg
}

// Prepare points the config at the flags' project, loads its .env file and
// then lets the flags override
func (c *Config) Prepare(flags Flags) {
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	c.LoadEnv()
	c.Apply(flags)
}

// Apply stores flags and lets the ones that were set override config values
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Timeout > 0 {
		c.RunTimeout = flags.Timeout
	}
	if flags.Selective {
		c.Selective = true
	}
	if flags.SetupFile != "" {
		c.SetupFile = flags.SetupFile
	}
}

// LoadEnv reads <project>/.env (if present) and applies GTR_* variables
func (c *Config) LoadEnv() {
	envPath := filepath.Join(c.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		// .env file might not exist, that's okay - use environment variables
		log.Debug("no .env file loaded", "path", envPath)
	}

	if v := os.Getenv("GTR_PROCESSORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Processors = n
		} else {
			log.Warn("ignoring GTR_PROCESSORS", "value", v)
		}
	}
	if v := os.Getenv("GTR_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.RunTimeout = d
		} else {
			log.Warn("ignoring GTR_RUN_TIMEOUT", "value", v)
		}
	}
	if v := os.Getenv("GTR_SELECTIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Selective = b
		}
	}
	if v := os.Getenv("GTR_DB_DSN"); v != "" {
		c.DBDSN = v
	}
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetSetupPath returns the path of the test setup file
func (c *Config) GetSetupPath() string {
	if filepath.IsAbs(c.SetupFile) {
		return c.SetupFile
	}
	return filepath.Join(c.ProjectPath, c.OutputJSONDir, c.SetupFile)
}

// ListArgs returns the arguments that put an executable in listing mode
func (c *Config) ListArgs() []string {
	return []string{c.ListFlag}
}

// FilterArg returns the argument restricting a run to the given qualified names
func (c *Config) FilterArg(names []string) string {
	arg := c.FilterFlag
	for i, n := range names {
		if i > 0 {
			arg += ":"
		}
		arg += n
	}
	return arg
}
