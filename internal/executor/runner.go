package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/doctest/internal/models"
	"github.com/harrison/doctest/internal/synth"
)

// DefaultTimeout is the per-example timeout when none is configured.
const DefaultTimeout = 5000 * time.Millisecond

// Logger receives progress from the Runner.
type Logger interface {
	LogDebug(message string)
	LogExampleResult(result models.TestResult)
}

// UnitSynthesizer builds a runnable program from an example.
type UnitSynthesizer interface {
	Synthesize(ex models.DocExample) (*synth.Unit, error)
}

// UnitExecutor runs a synthesized program in isolation.
type UnitExecutor interface {
	Execute(ctx context.Context, unit *synth.Unit, timeout time.Duration) (*Execution, error)
}

// Options configures a run.
type Options struct {
	Timeout time.Duration // Per-example timeout
	Verbose bool          // Log synthesized units and example output
}

// Runner executes examples strictly one at a time and collects their results.
type Runner struct {
	synthesizer UnitSynthesizer
	executor    UnitExecutor
	logger      Logger
	options     Options
}

// NewRunner creates a Runner. A nil logger discards progress.
func NewRunner(synthesizer UnitSynthesizer, executor UnitExecutor, logger Logger, options Options) *Runner {
	if logger == nil {
		logger = noopLogger{}
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	return &Runner{
		synthesizer: synthesizer,
		executor:    executor,
		logger:      logger,
		options:     options,
	}
}

// Run executes every example in order. The next example starts only after
// the previous one has finished and its artifacts are removed. Failures are
// recorded per example and never stop the batch.
func (r *Runner) Run(ctx context.Context, examples []models.DocExample) *models.RunSummary {
	start := time.Now()
	summary := &models.RunSummary{
		Results: make([]models.TestResult, 0, len(examples)),
	}

	for _, ex := range examples {
		result := r.RunExample(ctx, ex)
		summary.Add(result)
		r.logger.LogExampleResult(result)
	}

	summary.Duration = time.Since(start)
	return summary
}

// RunExample synthesizes and executes a single example.
func (r *Runner) RunExample(ctx context.Context, ex models.DocExample) models.TestResult {
	start := time.Now()
	result := models.TestResult{Example: ex}

	fail := func(err error) models.TestResult {
		result.Passed = false
		result.ExitCode = ExitCodeFailure
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("canceled before start: %w", err))
	}

	unit, err := r.synthesizer.Synthesize(ex)
	if err != nil {
		return fail(err)
	}
	if unit.ExportError != nil {
		r.logger.LogDebug(fmt.Sprintf("exports of %s not injected: %v", ex.OriginFile, unit.ExportError))
	}
	if r.options.Verbose {
		r.logger.LogDebug(fmt.Sprintf("synthesized unit for %s (%s):\n%s", ex.Name, ex.Key(), unit.Source))
	}

	execution, err := r.executor.Execute(ctx, unit, r.options.Timeout)
	if err != nil {
		return fail(err)
	}

	result.Duration = time.Since(start)
	result.Output = execution.Stdout
	result.ExitCode = execution.ExitCode
	result.TimedOut = execution.TimedOut
	result.Truncated = execution.Truncated
	result.Passed = execution.Passed()
	if !result.Passed {
		result.Error = failureText(execution)
	}

	return result
}

// failureText picks the diagnostic shown for a failed execution: stderr,
// else stdout, else the exit code. Truncated captures end with a note.
func failureText(execution *Execution) string {
	text := strings.TrimSpace(execution.Stderr)
	if text == "" {
		text = strings.TrimSpace(execution.Stdout)
	}
	if text == "" {
		text = fmt.Sprintf("exited with code %d", execution.ExitCode)
	}
	if execution.Truncated {
		text += "\n" + models.TruncatedNote
	}
	return text
}

type noopLogger struct{}

func (noopLogger) LogDebug(string)                    {}
func (noopLogger) LogExampleResult(models.TestResult) {}
