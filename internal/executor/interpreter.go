package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// defaultWaitDelay bounds how long Wait blocks on output pipes after the
// interpreter is killed (grandchildren may keep them open).
const defaultWaitDelay = 500 * time.Millisecond

// Interpreter runs a program file and reports its exit code.
// It abstracts the script runtime so tests can avoid spawning processes.
type Interpreter interface {
	// Run executes file with workDir as the working directory, streaming
	// output to stdout and stderr. A non-nil error means the interpreter
	// could not be run at all; a failing program is a non-zero exit code.
	Run(ctx context.Context, file string, workDir string, stdout, stderr io.Writer) (exitCode int, err error)
}

// ProcessInterpreter runs programs as child processes, e.g. "npx tsx <file>".
type ProcessInterpreter struct {
	Command   []string      // Interpreter command and leading arguments
	WaitDelay time.Duration // Pipe drain bound after kill (0 = default)
}

// NewProcessInterpreter creates an Interpreter that invokes command followed by the file path.
func NewProcessInterpreter(command []string) *ProcessInterpreter {
	return &ProcessInterpreter{Command: command}
}

// Run starts the interpreter in its own process group so that the whole
// group is killed when ctx is done.
func (p *ProcessInterpreter) Run(ctx context.Context, file string, workDir string, stdout, stderr io.Writer) (int, error) {
	if len(p.Command) == 0 {
		return -1, errors.New("interpreter command is empty")
	}

	args := append(append([]string{}, p.Command[1:]...), file)
	cmd := exec.CommandContext(ctx, p.Command[0], args...)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	setupProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = p.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// Killed on timeout or cancellation; the caller inspects ctx.
	if ctx.Err() != nil && cmd.Process != nil {
		return -1, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, fmt.Errorf("failed to run interpreter %q: %w", p.Command[0], err)
}
