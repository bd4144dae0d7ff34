//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nemusake/tdnet-downloader/internal/store"
)

func TestFormatRuns(t *testing.T) {
	started := time.Date(2025, 8, 19, 9, 30, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)

	runs := []store.CrawlRun{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			Date:       "20250819",
			Status:     store.RunStatusComplete,
			Pages:      7,
			Total:      612,
			Unique:     598,
			Duplicates: 3,
			StartedAt:  started,
			FinishedAt: &finished,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Date:      "20250818",
			Status:    store.RunStatusRunning,
			StartedAt: started.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "20250819")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "42s")
	assert.Contains(t, output, "2025-08-19 09:30")
	// Unfinished run shows a dash for duration.
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "-")
}

func TestFormatRuns_PartialAndFailed(t *testing.T) {
	started := time.Date(2025, 8, 19, 9, 30, 0, 0, time.UTC)
	finished := started.Add(3 * time.Second)

	runs := []store.CrawlRun{
		{
			ID:         "aaa11111-0000-0000-0000-000000000000",
			Date:       "20250819",
			Status:     store.RunStatusPartial,
			Pages:      3,
			Unique:     214,
			StartedAt:  started,
			FinishedAt: &finished,
		},
		{
			ID:         "bbb22222-0000-0000-0000-000000000000",
			Date:       "20250819",
			Status:     store.RunStatusFailed,
			Error:      "fetch listing page 1: connection refused",
			StartedAt:  started,
			FinishedAt: &finished,
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "partial")
	assert.Contains(t, output, "failed")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
