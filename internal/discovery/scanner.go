package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// executableSuffixes are the binary names gtest projects conventionally build
var executableSuffixes = []string{"_test", "_tests", "_unittest", "_unittests", "Test", "Tests"}

// Scanner scans for test executables in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all test executables in the given root directory.
// A path to a single file is returned as is.
func (s *Scanner) Scan(root string) ([]string, error) {
	var executables []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || !looksLikeTestBinary(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if isExecutableMode(fi.Mode(), d.Name()) {
			executables = append(executables, path)
		}
		return nil
	})

	return executables, err
}

func looksLikeTestBinary(name string) bool {
	name = strings.TrimSuffix(name, ".exe")
	for _, suffix := range executableSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func isExecutableMode(mode os.FileMode, name string) bool {
	if strings.HasSuffix(name, ".exe") {
		return true
	}
	return mode.Perm()&0111 != 0
}
