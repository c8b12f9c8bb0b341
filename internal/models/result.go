package models

import "time"

// TruncatedNote marks failure text and output cut off at the capture limit.
const TruncatedNote = "(output truncated)"

// TestResult is the outcome of executing a single DocExample.
type TestResult struct {
	Example   DocExample    // The example that was executed
	Passed    bool          // Exit code 0 within the timeout
	Error     string        // Captured stderr (stdout if stderr was empty) when not passed
	Output    string        // Captured stdout
	Duration  time.Duration // Synthesis start to artifact cleanup
	ExitCode  int           // Normalized exit code (1 for timeouts and signals)
	TimedOut  bool          // Process was killed by the timeout
	Truncated bool          // Captured output exceeded the capture limit
}

// DurationMillis returns the duration in whole milliseconds.
func (r TestResult) DurationMillis() int64 {
	return r.Duration.Milliseconds()
}

// RunSummary is the aggregate result of executing every discovered example.
type RunSummary struct {
	Results     []TestResult  // One per example, in input order
	Passed      int           // Number of passed examples
	Failed      int           // Number of failed examples
	Total       int           // Total number of examples
	Duration    time.Duration // Wall-clock time for the whole batch
	Diagnostics []string      // Non-fatal discovery problems
}

// Add appends a result and updates the counters.
func (s *RunSummary) Add(result TestResult) {
	s.Results = append(s.Results, result)
	s.Total++
	if result.Passed {
		s.Passed++
	} else {
		s.Failed++
	}
}

// Success returns true if no example failed.
func (s *RunSummary) Success() bool {
	return s.Failed == 0
}

// FailedResults returns the failed results in input order.
func (s *RunSummary) FailedResults() []TestResult {
	var failed []TestResult
	for _, r := range s.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
