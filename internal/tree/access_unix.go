//go:build !windows

package tree

import (
	"os"

	"golang.org/x/sys/unix"
)

func isExecutable(path string, _ os.FileInfo) bool {
	return unix.Access(path, unix.X_OK) == nil
}
