package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/doctest/internal/models"
)

func sampleSummary() *models.RunSummary {
	summary := &models.RunSummary{Duration: 1500 * time.Millisecond}
	summary.Add(models.TestResult{
		Example:  models.DocExample{OriginFile: "/repo/math.ts", Line: 3, Name: "add", ExpectedOutput: "5"},
		Passed:   true,
		Output:   "5\n",
		Duration: 12 * time.Millisecond,
	})
	summary.Add(models.TestResult{
		Example:  models.DocExample{OriginFile: "/repo/math.ts", Line: 20, Name: "hang"},
		Passed:   false,
		Error:    "timed out after 100ms",
		Duration: 101 * time.Millisecond,
		TimedOut: true,
	})
	summary.Diagnostics = []string{"failed to parse /repo/gone.ts: no such file"}
	return summary
}

func TestNew(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := New(sampleSummary(), at)

	assert.Equal(t, at.UTC(), r.GeneratedAt)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, int64(1500), r.DurationMS)
	require.Len(t, r.Results, 2)

	assert.Equal(t, Entry{
		Name:           "add",
		File:           "/repo/math.ts",
		Line:           3,
		Passed:         true,
		Output:         "5\n",
		ExpectedOutput: "5",
		DurationMS:     12,
	}, r.Results[0])
	assert.True(t, r.Results[1].TimedOut)
	assert.Equal(t, "timed out after 100ms", r.Results[1].Error)
}

func TestNew_Truncated(t *testing.T) {
	summary := &models.RunSummary{}
	summary.Add(models.TestResult{
		Example:   models.DocExample{OriginFile: "/repo/log.ts", Line: 1, Name: "spam"},
		Error:     "boom\n" + models.TruncatedNote,
		Truncated: true,
	})

	r := New(summary, time.Now())

	require.Len(t, r.Results, 1)
	assert.True(t, r.Results[0].Truncated)
	assert.Contains(t, r.Results[0].Error, models.TruncatedNote)

	data, err := json.Marshal(r.Results[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"truncated":true`)
}

func TestNew_NilSummary(t *testing.T) {
	r := New(nil, time.Now())
	assert.Zero(t, r.Total)
	assert.NotNil(t, r.Results)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "doctest.json")

	require.NoError(t, Write(context.Background(), path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.EqualValues(t, 2, decoded["total"])
	assert.EqualValues(t, 1, decoded["failed"])

	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	first := results[0].(map[string]any)
	for _, key := range []string{"name", "file", "line", "passed", "duration_ms", "timed_out"} {
		assert.Contains(t, first, key)
	}
	assert.NotContains(t, first, "error", "empty error is omitted")
}

func TestWrite_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctest.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Write(ctx, path, sampleSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write report")
}
