// Package report writes the machine-readable record of a doctest run.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harrison/doctest/internal/filelock"
	"github.com/harrison/doctest/internal/models"
)

// Entry is one example's outcome in the report.
type Entry struct {
	Name           string `json:"name"`
	File           string `json:"file"`
	Line           int    `json:"line"`
	Passed         bool   `json:"passed"`
	Error          string `json:"error,omitempty"`
	Output         string `json:"output,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
	DurationMS     int64  `json:"duration_ms"`
	TimedOut       bool   `json:"timed_out"`
	Truncated      bool   `json:"truncated,omitempty"`
}

// Report is the JSON document written for a run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Total       int       `json:"total"`
	DurationMS  int64     `json:"duration_ms"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	Results     []Entry   `json:"results"`
}

// New builds a Report from summary.
func New(summary *models.RunSummary, generatedAt time.Time) *Report {
	r := &Report{
		GeneratedAt: generatedAt.UTC(),
		Results:     make([]Entry, 0),
	}
	if summary == nil {
		return r
	}

	r.Passed = summary.Passed
	r.Failed = summary.Failed
	r.Total = summary.Total
	r.DurationMS = summary.Duration.Milliseconds()
	r.Diagnostics = summary.Diagnostics

	for _, result := range summary.Results {
		r.Results = append(r.Results, Entry{
			Name:           result.Example.Name,
			File:           result.Example.OriginFile,
			Line:           result.Example.Line,
			Passed:         result.Passed,
			Error:          result.Error,
			Output:         result.Output,
			ExpectedOutput: result.Example.ExpectedOutput,
			DurationMS:     result.DurationMillis(),
			TimedOut:       result.TimedOut,
			Truncated:      result.Truncated,
		})
	}
	return r
}

// Write encodes summary as indented JSON and replaces path with it while
// holding path's lock file.
func Write(ctx context.Context, path string, summary *models.RunSummary) error {
	data, err := json.MarshalIndent(New(summary, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	if err := filelock.LockAndWrite(ctx, path, data); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
