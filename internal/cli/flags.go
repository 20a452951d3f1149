package cli

import (
	"time"

	"gtr/internal/config"
)

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath:  f.ProjectPath,
		Processors:   f.Processors,
		NameFilter:   f.NameFilter,
		SetupFile:    f.SetupFile,
		Timeout:      f.Timeout,
		Selective:    f.Selective,
		Repair:       f.Repair,
		Verbose:      f.Verbose,
		ShowTests:    f.ShowTests,
		OpenFailures: f.OpenFailures,
		Stats:        f.Stats,
	}
}
