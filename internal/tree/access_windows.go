//go:build windows

package tree

import (
	"os"
	"path/filepath"
	"strings"
)

func isExecutable(path string, _ os.FileInfo) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".exe", ".bat", ".cmd", ".com":
		return true
	}
	return false
}
