package execution

import "context"

// Completion is what an external invocation yields: the exit code and the
// raw text the process printed. Err is set when the process could not be
// started or was stopped (cancelled or timed out) before exiting on its own.
type Completion struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// ProcessRunner launches test executables. Invoke must return immediately
// and call done exactly once, from any goroutine.
type ProcessRunner interface {
	Invoke(ctx context.Context, path string, args []string, done func(Completion))
}
