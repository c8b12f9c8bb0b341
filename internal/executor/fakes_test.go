package executor

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/harrison/doctest/internal/models"
	"github.com/harrison/doctest/internal/synth"
)

// fakeInterpreter implements Interpreter without spawning processes.
type fakeInterpreter struct {
	mu       sync.Mutex
	exitCode int
	stdout   string
	stderr   string
	err      error
	block    bool // wait for ctx to be done, like a hung program
	files    []string
	sources  []string
	workDirs []string
}

func (f *fakeInterpreter) Run(ctx context.Context, file string, workDir string, stdout, stderr io.Writer) (int, error) {
	data, _ := os.ReadFile(file)

	f.mu.Lock()
	f.files = append(f.files, file)
	f.sources = append(f.sources, string(data))
	f.workDirs = append(f.workDirs, workDir)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return -1, nil
	}

	io.WriteString(stdout, f.stdout)
	io.WriteString(stderr, f.stderr)
	return f.exitCode, f.err
}

// fakeSynthesizer returns the example code as the unit source.
type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) Synthesize(ex models.DocExample) (*synth.Unit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &synth.Unit{Source: ex.Code, Ext: ".mjs"}, nil
}

// scriptedExecutor interprets the unit source as the outcome to report.
// Recognized sources: "pass", "flood", "fail:<stderr>", "sleep:<duration>", "spawn-error".
type scriptedExecutor struct {
	mu    sync.Mutex
	calls []string
}

func (s *scriptedExecutor) Execute(ctx context.Context, unit *synth.Unit, timeout time.Duration) (*Execution, error) {
	s.mu.Lock()
	s.calls = append(s.calls, unit.Source)
	s.mu.Unlock()

	switch {
	case unit.Source == "pass":
		return &Execution{ExitCode: 0, Stdout: "ok\n"}, nil
	case unit.Source == "flood":
		return &Execution{ExitCode: 1, Stderr: "Error: boom\n", Stdout: "xxxx", Truncated: true}, nil
	case unit.Source == "spawn-error":
		return nil, errSpawn
	case len(unit.Source) > 5 && unit.Source[:5] == "fail:":
		return &Execution{ExitCode: 1, Stderr: unit.Source[5:]}, nil
	case len(unit.Source) > 6 && unit.Source[:6] == "sleep:":
		d, _ := time.ParseDuration(unit.Source[6:])
		time.Sleep(d)
		return &Execution{ExitCode: 0}, nil
	}
	return &Execution{ExitCode: 1, Stderr: "unknown script"}, nil
}

// recordingLogger captures Runner callbacks.
type recordingLogger struct {
	mu      sync.Mutex
	debug   []string
	results []models.TestResult
}

func (l *recordingLogger) LogDebug(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, message)
}

func (l *recordingLogger) LogExampleResult(result models.TestResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
}
