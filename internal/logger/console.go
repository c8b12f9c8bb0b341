// Package logger provides console output for doctest runs.
//
// ConsoleLogger writes leveled diagnostics prefixed with [HH:MM:SS]
// timestamps and renders the per-example report lines and the final summary.
// It is safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/doctest/internal/models"
)

// Log level constants for filtering
const (
	levelDebug int = 0
	levelInfo  int = 1
	levelWarn  int = 2
	levelError int = 3
)

// MaxErrorLines caps how many lines of a failure message are printed under
// a failed example.
const MaxErrorLines = 10

const (
	passMark = "✓"
	failMark = "✗"
)

// ConsoleLogger logs run progress to a writer.
// Leveled messages carry a [HH:MM:SS] [LEVEL] prefix; report lines do not.
// Color output is enabled automatically when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	baseDir     string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// SetBaseDir makes reported origin paths relative to dir when possible.
func (cl *ConsoleLogger) SetBaseDir(dir string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.baseDir = dir
}

// isTerminal reports whether w is a TTY that should receive ANSI colors.
// NO_COLOR disables colors regardless of the writer.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if IsValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level names a known log level.
func IsValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// shouldLog returns true if messageLevel >= configured logLevel.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := level
	if cl.colorOutput {
		label = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), label, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogExampleResult prints the report line for one finished example at every
// level. Format: "✓ <name> (<ms>ms) <file>:<line>", failures followed by up
// to MaxErrorLines indented lines of the error. At debug level the captured
// stdout is printed as well.
func (cl *ConsoleLogger) LogExampleResult(result models.TestResult) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	mark := passMark
	if !result.Passed {
		mark = failMark
	}
	location := cl.location(result.Example)
	name := result.Example.Name
	elapsed := fmt.Sprintf("(%dms)", result.DurationMillis())

	var b strings.Builder
	if cl.colorOutput {
		markColor := color.New(color.FgGreen)
		if !result.Passed {
			markColor = color.New(color.FgRed)
		}
		fmt.Fprintf(&b, "%s %s %s %s\n",
			markColor.Sprint(mark),
			name,
			color.New(color.FgHiBlack).Sprint(elapsed),
			color.New(color.FgCyan).Sprint(location))
	} else {
		fmt.Fprintf(&b, "%s %s %s %s\n", mark, name, elapsed, location)
	}

	if !result.Passed {
		lines := ErrorLines(result.Error)
		if result.Truncated && (len(lines) == 0 || lines[len(lines)-1] != models.TruncatedNote) {
			lines = append(lines, models.TruncatedNote)
		}
		for _, line := range lines {
			if cl.colorOutput {
				line = color.New(color.FgRed).Sprint(line)
			}
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	if cl.shouldLog("debug") && strings.TrimSpace(result.Output) != "" {
		for _, line := range strings.Split(strings.TrimRight(result.Output, "\n"), "\n") {
			fmt.Fprintf(&b, "    | %s\n", line)
		}
		if result.Truncated {
			fmt.Fprintf(&b, "    | %s\n", models.TruncatedNote)
		}
	}

	io.WriteString(cl.writer, b.String())
}

// ErrorLines splits a failure message into at most MaxErrorLines non-empty
// lines.
func ErrorLines(message string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == MaxErrorLines {
			break
		}
	}
	return lines
}

// LogRunSummary prints the closing summary line, followed by the locations
// of any failed examples. Like the example lines it ignores the log level.
// Format: "<n> passed, <m> failed, <t> total (<duration>)"
func (cl *ConsoleLogger) LogRunSummary(summary *models.RunSummary) {
	if cl.writer == nil || summary == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	passed := fmt.Sprintf("%d passed", summary.Passed)
	failed := fmt.Sprintf("%d failed", summary.Failed)
	if cl.colorOutput {
		passed = color.New(color.FgGreen).Sprint(passed)
		if summary.Failed > 0 {
			failed = color.New(color.FgRed, color.Bold).Sprint(failed)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s, %s, %d total (%s)\n", passed, failed, summary.Total, formatDuration(summary.Duration))

	if failedResults := summary.FailedResults(); len(failedResults) > 0 {
		b.WriteString("Failed examples:\n")
		for _, result := range failedResults {
			fmt.Fprintf(&b, "  - %s %s\n", result.Example.Name, cl.location(result.Example))
		}
	}

	io.WriteString(cl.writer, b.String())
}

// LogExample prints a discovered example without running it.
func (cl *ConsoleLogger) LogExample(example models.DocExample) {
	if cl.writer == nil {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	name := example.Name
	location := cl.location(example)
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
		location = color.New(color.FgCyan).Sprint(location)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", name, location)
	for _, line := range strings.Split(example.Code, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	if example.HasExpectation() {
		fmt.Fprintf(&b, "    expected output: %s\n", example.ExpectedOutput)
	}
	b.WriteString("\n")

	io.WriteString(cl.writer, b.String())
}

// LogDiscoveryError reports a file that could not be parsed.
func (cl *ConsoleLogger) LogDiscoveryError(err *models.DiscoveryError) {
	if err == nil {
		return
	}
	cl.LogWarn(err.Error())
}

func (cl *ConsoleLogger) location(example models.DocExample) string {
	file := example.OriginFile
	if cl.baseDir != "" {
		if rel, err := filepath.Rel(cl.baseDir, file); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			file = rel
		}
	}
	return fmt.Sprintf("%s:%d", filepath.ToSlash(file), example.Line)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders d with millisecond precision below a minute.
// Examples: "850ms", "1.25s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
