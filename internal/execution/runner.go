package execution

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"gtr/internal/config"
	"gtr/internal/domain"
)

// Runner executes test executables as child processes
type Runner struct {
	config   *config.Config
	pool     *WorkerPool
	poolOnce sync.Once
}

// NewRunner creates a new Runner. At most cfg.Processors executables run at
// once, read when the first executable starts.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

func (r *Runner) workers() *WorkerPool {
	r.poolOnce.Do(func() {
		r.pool = NewWorkerPool(r.config.Processors)
	})
	return r.pool
}

// Invoke starts path with args in the background and reports through done.
// The configured run timeout bounds the invocation.
func (r *Runner) Invoke(ctx context.Context, path string, args []string, done func(Completion)) {
	go func() {
		done(r.Run(ctx, path, args))
	}()
}

// Run executes path with args and waits for it to exit
func (r *Runner) Run(ctx context.Context, path string, args []string) Completion {
	pool := r.workers()
	if err := pool.Acquire(ctx); err != nil {
		return Completion{ExitCode: -1, Err: stopReason(err)}
	}
	defer pool.Release()

	if r.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RunTimeout)
		defer cancel()
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = filepath.Dir(path)
	prepareCommand(cmd)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug("process exited", "path", path, "args", args, "duration", time.Since(start), "err", err)

	completion := Completion{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() != nil {
		completion.ExitCode = -1
		completion.Err = stopReason(ctx.Err())
		return completion
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		completion.ExitCode = 0
	case errors.As(err, &exitErr):
		completion.ExitCode = exitErr.ExitCode()
	default:
		completion.ExitCode = -1
		completion.Err = err
	}
	return completion
}

func stopReason(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrRunTimeout
	}
	return domain.ErrRunCancelled
}
