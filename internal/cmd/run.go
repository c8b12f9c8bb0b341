package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/doctest/internal/config"
	"github.com/harrison/doctest/internal/executor"
	"github.com/harrison/doctest/internal/fileutil"
	"github.com/harrison/doctest/internal/logger"
	"github.com/harrison/doctest/internal/models"
	"github.com/harrison/doctest/internal/parser"
	"github.com/harrison/doctest/internal/report"
	"github.com/harrison/doctest/internal/synth"
)

var (
	// ErrExamplesFailed is returned when at least one example did not pass.
	ErrExamplesFailed = errors.New("examples failed")

	// ErrNoInputFiles is returned when the given paths contain no source files.
	ErrNoInputFiles = errors.New("no input files found")
)

// reportTimeout bounds writing the JSON report after an interrupted run.
const reportTimeout = 10 * time.Second

// loggedError wraps an error that runDoctest already wrote to the run log.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

// AlreadyReported returns true if err was printed during the run, either as
// failed example lines or as an error log line.
func AlreadyReported(err error) bool {
	var logged *loggedError
	return errors.As(err, &logged) || errors.Is(err, ErrExamplesFailed)
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Extract and run documentation examples",
		Long: `Extract every @example from the documentation comments under the given
paths and run each one as its own program.

Each example may call the exports of the file it is documented in directly,
and can use assert(condition, message) and assertEqual(actual, expected).
An example passes when its program exits 0 within the timeout.

Configuration is loaded from .doctest/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  doctest run src/
  doctest run src/math.ts --verbose
  doctest run --timeout 10000 --runtime "node --experimental-strip-types" src/
  doctest run --dry-run src/           # list examples without running them
  doctest run --report doctest.json .  # also write a JSON report`,
		Args: cobra.ArbitraryArgs,
		RunE: runCommand,
	}

	addRunFlags(cmd)

	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .doctest/config.yaml)")
	cmd.Flags().Bool("dry-run", false, "List examples without executing them")
	cmd.Flags().BoolP("verbose", "v", false, "Show generated programs and example output")
	cmd.Flags().Int("timeout", int(executor.DefaultTimeout/time.Millisecond), "Per-example timeout in milliseconds")
	cmd.Flags().String("runtime", "", `Interpreter command the generated file is passed to (default "npx tsx")`)
	cmd.Flags().String("report", "", "Write a JSON report to this file")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().Bool("markdown", false, "Also scan .md files for fenced example blocks")
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDoctest(ctx, runParams{
		config:  cfg,
		paths:   args,
		verbose: verbose,
		out:     cmd.OutOrStdout(),
	})
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()

	var timeoutPtr *time.Duration
	if flags.Changed("timeout") {
		ms, _ := flags.GetInt("timeout")
		timeout := time.Duration(ms) * time.Millisecond
		timeoutPtr = &timeout
	}

	var logLevelPtr *string
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		logLevelPtr = &level
	} else if verbose, _ := flags.GetBool("verbose"); verbose {
		level := "debug"
		logLevelPtr = &level
	}

	var runtimePtr *string
	if flags.Changed("runtime") {
		runtime, _ := flags.GetString("runtime")
		runtimePtr = &runtime
	}

	var reportPtr *string
	if flags.Changed("report") {
		reportFile, _ := flags.GetString("report")
		reportPtr = &reportFile
	}

	var dryRunPtr *bool
	if flags.Changed("dry-run") {
		dryRun, _ := flags.GetBool("dry-run")
		dryRunPtr = &dryRun
	}

	cfg.MergeWithFlags(timeoutPtr, logLevelPtr, runtimePtr, reportPtr, dryRunPtr)

	if flags.Changed("markdown") {
		cfg.Markdown, _ = flags.GetBool("markdown")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

type runParams struct {
	config  *config.Config
	paths   []string
	verbose bool
	// workDir is the interpreter's working directory; empty means the
	// current directory.
	workDir string
	out     io.Writer
}

// runDoctest discovers, parses and (unless dry-running) executes examples.
func runDoctest(ctx context.Context, p runParams) error {
	cfg := p.config

	workDir := p.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	paths := p.paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	log := logger.NewConsoleLogger(p.out, cfg.LogLevel)
	log.SetBaseDir(workDir)

	fatal := func(err error) error {
		log.LogError(err.Error())
		return &loggedError{err: err}
	}

	var diagnostics []string

	discovered := fileutil.Discover(paths, fileutil.DefaultScanOptions(cfg.DiscoveryExtensions(), cfg.ExcludeDirs))
	for _, err := range discovered.Errors {
		log.LogWarn(err.Error())
		diagnostics = append(diagnostics, err.Error())
	}
	if len(discovered.Files) == 0 {
		return fatal(fmt.Errorf("%w in %s", ErrNoInputFiles, strings.Join(paths, ", ")))
	}

	examples, parseErrors := parser.New().ParseFiles(discovered.Files)
	for _, err := range parseErrors {
		log.LogDiscoveryError(err)
		diagnostics = append(diagnostics, err.Error())
	}
	log.LogInfo(fmt.Sprintf("Found %d example(s) in %d file(s)", len(examples), len(discovered.Files)))

	if cfg.DryRun {
		for _, ex := range examples {
			log.LogExample(ex)
		}
		return nil
	}

	isolated := executor.NewIsolatedExecutor(executor.NewProcessInterpreter(cfg.Runtime), workDir)
	isolated.SetMaxOutputBytes(int64(cfg.MaxOutputBytes))
	isolated.SetLogger(log)

	runner := executor.NewRunner(synth.NewSynthesizer(), isolated, log, executor.Options{
		Timeout: cfg.Timeout,
		Verbose: p.verbose,
	})

	summary := runner.Run(ctx, examples)
	summary.Diagnostics = diagnostics
	log.LogRunSummary(summary)

	if cfg.ReportFile != "" {
		if err := writeReport(cfg.ReportFile, summary); err != nil {
			return fatal(err)
		}
		log.LogDebug(fmt.Sprintf("Report written to %s", cfg.ReportFile))
	}

	if !summary.Success() {
		return fmt.Errorf("%w: %d of %d", ErrExamplesFailed, summary.Failed, summary.Total)
	}
	return nil
}

// writeReport runs detached from the run context so an interrupted run
// still leaves a report behind.
func writeReport(path string, summary *models.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	return report.Write(ctx, path, summary)
}
