// pattern: Imperative Shell

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"

	"samplerun/internal/logging"
)

// Invocation describes one blocking external command.
type Invocation struct {
	Binary       string
	Args         []string
	Dir          string   // working directory; empty means inherit
	Env          []string // extra KEY=VALUE entries appended to the inherited env
	SuccessCodes []int    // exit codes treated as success; empty means {0}
}

// ExitError reports a command that finished with a non-success exit code.
type ExitError struct {
	Binary string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Binary, e.Code)
}

// Runner invokes external commands one at a time, streaming their output to
// the console and capturing it line by line into the log file. There is no
// parallelism and no timeout at this layer; a hanging child hangs the run
// until the context is cancelled.
type Runner struct {
	logger *logging.ScopedLogger
	stdout io.Writer
	stderr io.Writer
}

// New creates a Runner writing child output to the process stdout/stderr.
func New(logger *logging.ScopedLogger) *Runner {
	return &Runner{logger: logger, stdout: os.Stdout, stderr: os.Stderr}
}

// NewWithOutput creates a Runner with explicit console writers, for tests.
func NewWithOutput(logger *logging.ScopedLogger, stdout, stderr io.Writer) *Runner {
	return &Runner{logger: logger, stdout: stdout, stderr: stderr}
}

// Run executes the invocation and blocks until it finishes. An exit code
// listed in SuccessCodes is success; anything else returns an *ExitError.
// Failures are fatal to the caller's batch: there is no retry here.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	r.logger.Info("running command",
		"binary", inv.Binary,
		"args", fmt.Sprintf("%v", inv.Args),
		"dir", inv.Dir)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", inv.Binary, err)
	}

	// Mirror child output to the console and log each line. The log file
	// gets ANSI-stripped lines so rotation archives stay greppable.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.capture(stdout, r.stdout, "stdout", inv.Binary)
	}()
	go func() {
		defer wg.Done()
		r.capture(stderr, r.stderr, "stderr", inv.Binary)
	}()

	wg.Wait()
	err = cmd.Wait()

	// A cancelled context kills the child, so Wait reports a signal exit.
	// Surface the cancellation itself, not a bogus exit code.
	if ctx.Err() != nil {
		return fmt.Errorf("running %s: %w", inv.Binary, ctx.Err())
	}

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			return fmt.Errorf("running %s: %w", inv.Binary, err)
		}
	}

	success := inv.SuccessCodes
	if len(success) == 0 {
		success = []int{0}
	}
	if slices.Contains(success, code) {
		r.logger.Info("command finished", "binary", inv.Binary, "exit_code", code)
		return nil
	}

	r.logger.Error("command failed", "binary", inv.Binary, "exit_code", code)
	return &ExitError{Binary: inv.Binary, Code: code}
}

func (r *Runner) capture(from io.Reader, console io.Writer, stream, binary string) {
	scanner := bufio.NewScanner(from)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if console != nil {
			fmt.Fprintln(console, line)
		}
		r.logger.Debug(StripANSI(line), "stream", stream, "binary", binary)
	}
}
