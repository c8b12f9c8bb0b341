package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/doctest/internal/synth"
)

const (
	// ExitCodeFailure replaces unknown exit codes (timeouts, signals).
	ExitCodeFailure = 1

	// DefaultMaxOutputBytes caps each captured stream.
	DefaultMaxOutputBytes int64 = 1 << 20

	// TempDirPrefix names the per-execution directories under the work dir.
	TempDirPrefix = ".doctest-"
)

// Execution is the raw outcome of running one synthesized unit.
type Execution struct {
	ExitCode  int    // 0 on success; unknown codes are normalized to ExitCodeFailure
	Stdout    string // Captured standard output
	Stderr    string // Captured standard error
	TimedOut  bool   // Killed because the timeout elapsed
	Truncated bool   // Output exceeded the capture limit
}

// Passed returns true if the unit exited with code 0 within the timeout.
func (e *Execution) Passed() bool {
	return e.ExitCode == 0 && !e.TimedOut
}

// IsolatedExecutor runs each unit from its own temporary directory created
// under the project working directory, so the project's dependency
// resolution root is visible to the program. The directory is always removed.
type IsolatedExecutor struct {
	interpreter Interpreter
	workDir     string
	maxOutput   int64
	logger      Logger
}

// NewIsolatedExecutor creates an executor that places artifacts under workDir.
func NewIsolatedExecutor(interpreter Interpreter, workDir string) *IsolatedExecutor {
	return &IsolatedExecutor{
		interpreter: interpreter,
		workDir:     workDir,
		maxOutput:   DefaultMaxOutputBytes,
		logger:      noopLogger{},
	}
}

// SetMaxOutputBytes sets the per-stream capture limit (<= 0 = unlimited).
func (e *IsolatedExecutor) SetMaxOutputBytes(n int64) {
	e.maxOutput = n
}

// SetLogger sets the logger used for debug diagnostics.
func (e *IsolatedExecutor) SetLogger(logger Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Execute writes unit to a fresh temporary directory and runs it with the
// given timeout (0 = no timeout). A non-nil error means the program could not
// be started; a failing or timed out program is reported in the Execution.
func (e *IsolatedExecutor) Execute(ctx context.Context, unit *synth.Unit, timeout time.Duration) (*Execution, error) {
	dir, err := e.createTempDir()
	if err != nil {
		return nil, err
	}
	defer e.cleanup(dir)

	file := filepath.Join(dir, "example"+unit.Ext)
	if err := os.WriteFile(file, []byte(unit.Source), 0644); err != nil {
		return nil, fmt.Errorf("failed to write unit: %w", err)
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := newLimitedWriter(&stdoutBuf, e.maxOutput)
	stderr := newLimitedWriter(&stderrBuf, e.maxOutput)

	code, runErr := e.interpreter.Run(runCtx, file, e.workDir, stdout, stderr)

	result := &Execution{
		ExitCode:  code,
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
		Truncated: stdout.truncated || stderr.truncated,
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.TimedOut = true
		result.ExitCode = ExitCodeFailure
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("timed out after %s", timeout))
	case runCtx.Err() != nil:
		result.ExitCode = ExitCodeFailure
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("canceled: %v", runCtx.Err()))
	case runErr != nil:
		return nil, runErr
	case result.ExitCode < 0:
		result.ExitCode = ExitCodeFailure
	}

	return result, nil
}

// createTempDir creates a uniquely named directory: a nanosecond timestamp
// plus a random suffix.
func (e *IsolatedExecutor) createTempDir() (string, error) {
	name := fmt.Sprintf("%s%d-%s", TempDirPrefix, time.Now().UnixNano(), uuid.NewString()[:8])
	dir := filepath.Join(e.workDir, name)
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return dir, nil
}

// cleanup removes dir. Failures are logged and never override the result.
func (e *IsolatedExecutor) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.LogDebug(fmt.Sprintf("failed to remove %s: %v", dir, err))
	}
}

func appendLine(text, line string) string {
	if text == "" {
		return line
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + line
}
