package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/doctest/internal/config"
)

const mathSource = `/**
 * Adds two numbers.
 * @example
 * ` + "```ts" + `
 * assertEqual(add(2, 3), 5);
 * ` + "```" + `
 */
export function add(a: number, b: number): number {
  return a + b;
}

/**
 * @example
 * ` + "```ts" + `
 * // EXAMPLE_SHOULD_FAIL
 * assertEqual(broken(), 1);
 * ` + "```" + `
 */
export function broken(): number {
  return 0;
}
`

// markerRuntime stands in for the interpreter: a generated file fails when
// it contains EXAMPLE_SHOULD_FAIL and passes otherwise.
var markerRuntime = []string{
	"sh", "-c",
	`if grep -q EXAMPLE_SHOULD_FAIL "$1"; then echo "Expected 1 but got 0" >&2; exit 1; fi; echo ran`,
	"sh",
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "math.ts"), []byte(mathSource), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "math.d.ts"), []byte("/** @example\n * ```ts\n * x();\n * ```\n */\nexport declare function x(): void;\n"), 0644))
	return dir
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Runtime = markerRuntime
	cfg.Timeout = 10 * time.Second
	return cfg
}

func TestRunDoctest_ReportsPassAndFail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := writeProject(t)
	out := new(bytes.Buffer)

	err := runDoctest(context.Background(), runParams{
		config:  testConfig(),
		paths:   []string{filepath.Join(dir, "src")},
		workDir: dir,
		out:     out,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExamplesFailed))

	output := out.String()
	assert.Regexp(t, `✓ add \(\d+ms\) src/math.ts:1\n`, output)
	assert.Regexp(t, `✗ broken \(\d+ms\) src/math.ts:12\n`, output)
	assert.Contains(t, output, "    Expected 1 but got 0")
	assert.Contains(t, output, "1 passed, 1 failed, 2 total")
	assert.Contains(t, output, "Found 2 example(s) in 1 file(s)")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".doctest-"), "leftover %s", entry.Name())
	}
}

func TestRunDoctest_AllPass(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := writeProject(t)
	source := strings.Replace(mathSource, "// EXAMPLE_SHOULD_FAIL\n", "", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "math.ts"), []byte(source), 0644))

	out := new(bytes.Buffer)
	err := runDoctest(context.Background(), runParams{
		config:  testConfig(),
		paths:   []string{filepath.Join(dir, "src", "math.ts")},
		workDir: dir,
		out:     out,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "2 passed, 0 failed, 2 total")
}

func TestRunDoctest_WritesReport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := writeProject(t)
	cfg := testConfig()
	cfg.ReportFile = filepath.Join(dir, "out", "report.json")

	err := runDoctest(context.Background(), runParams{
		config:  cfg,
		paths:   []string{filepath.Join(dir, "src")},
		workDir: dir,
		out:     new(bytes.Buffer),
	})
	require.ErrorIs(t, err, ErrExamplesFailed)

	data, err := os.ReadFile(cfg.ReportFile)
	require.NoError(t, err)

	var decoded struct {
		Passed  int `json:"passed"`
		Failed  int `json:"failed"`
		Results []struct {
			Name   string `json:"name"`
			Line   int    `json:"line"`
			Passed bool   `json:"passed"`
			Output string `json:"output"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded.Passed)
	assert.Equal(t, 1, decoded.Failed)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "add", decoded.Results[0].Name)
	assert.Equal(t, 1, decoded.Results[0].Line)
	assert.Equal(t, "ran\n", decoded.Results[0].Output)
}

func TestRunDoctest_DryRunDoesNotExecute(t *testing.T) {
	dir := writeProject(t)
	cfg := testConfig()
	cfg.DryRun = true
	cfg.Runtime = []string{filepath.Join(dir, "does-not-exist")}

	out := new(bytes.Buffer)
	err := runDoctest(context.Background(), runParams{
		config:  cfg,
		paths:   []string{filepath.Join(dir, "src")},
		workDir: dir,
		out:     out,
	})

	require.NoError(t, err)
	output := out.String()
	assert.Contains(t, output, "add src/math.ts:1\n    assertEqual(add(2, 3), 5);\n")
	assert.Contains(t, output, "broken src/math.ts:12\n")
	assert.NotContains(t, output, "passed,")
}

func TestRunDoctest_NoInputFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("nothing"), 0644))
	out := new(bytes.Buffer)

	err := runDoctest(context.Background(), runParams{
		config:  testConfig(),
		paths:   []string{dir},
		workDir: dir,
		out:     out,
	})

	require.ErrorIs(t, err, ErrNoInputFiles)
	assert.True(t, AlreadyReported(err))
	assert.Regexp(t, `\[ERROR\] no input files found in `, out.String())
}

func TestRunDoctest_ReportWriteFailureIsLogged(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := writeProject(t)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not a directory"), 0644))

	cfg := testConfig()
	cfg.ReportFile = filepath.Join(blocker, "report.json")
	out := new(bytes.Buffer)

	err := runDoctest(context.Background(), runParams{
		config:  cfg,
		paths:   []string{filepath.Join(dir, "src")},
		workDir: dir,
		out:     out,
	})

	require.Error(t, err)
	assert.True(t, AlreadyReported(err))
	assert.False(t, errors.Is(err, ErrExamplesFailed))
	assert.Contains(t, out.String(), "[ERROR] failed to write report")
}

func TestAlreadyReported(t *testing.T) {
	assert.True(t, AlreadyReported(fmt.Errorf("%w: 1 of 2", ErrExamplesFailed)))
	assert.True(t, AlreadyReported(&loggedError{err: ErrNoInputFiles}))
	assert.False(t, AlreadyReported(errors.New("invalid configuration")))
}

func TestRunDoctest_MissingPathIsDiagnostic(t *testing.T) {
	dir := writeProject(t)
	cfg := testConfig()
	cfg.DryRun = true

	out := new(bytes.Buffer)
	err := runDoctest(context.Background(), runParams{
		config:  cfg,
		paths:   []string{filepath.Join(dir, "missing"), filepath.Join(dir, "src")},
		workDir: dir,
		out:     out,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "[WARN] failed to access")
}

func TestRunDoctest_CanceledContextFailsRemaining(t *testing.T) {
	dir := writeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := new(bytes.Buffer)
	err := runDoctest(ctx, runParams{
		config:  testConfig(),
		paths:   []string{filepath.Join(dir, "src")},
		workDir: dir,
		out:     out,
	})

	require.ErrorIs(t, err, ErrExamplesFailed)
	assert.Contains(t, out.String(), "0 passed, 2 failed, 2 total")
}

func TestListCommand(t *testing.T) {
	dir := writeProject(t)

	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"list", filepath.Join(dir, "src")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "assertEqual(add(2, 3), 5);")
	assert.Contains(t, out.String(), "math.ts:12")
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"bad log level", []string{"--log-level", "loud", "--dry-run", "."}, "invalid log_level"},
		{"zero timeout", []string{"--timeout", "0", "--dry-run", "."}, "timeout must be > 0"},
		{"empty runtime", []string{"--runtime", " ", "--dry-run", "."}, "runtime cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestRootCommand_ConfigFile(t *testing.T) {
	dir := writeProject(t)
	configPath := filepath.Join(dir, "doctest.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("dry_run: true\nlog_level: warn\n"), 0644))

	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--config", configPath, filepath.Join(dir, "src")})

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, out.String(), "[INFO]")
	assert.Contains(t, out.String(), "add ")
}
