package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/greenplate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHistory(t *testing.T) {
	store := newMemoryHistory(t)
	runID, err := store.BeginRun("s", time.Now(), "pasta", map[string]any{"split": 30})
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(runID, 1, sampleResult(5, 77)))
	require.NoError(t, store.EndRun(runID, time.Now(), 1, 1, "ok"))

	out := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExportHistory(store, out, &buf))

	for _, suffix := range []string{".ranking_runs.parquet", ".ranking_results.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, buf.String(), "Exported 1 ranking runs")
	assert.Contains(t, buf.String(), "Exported 1 ranking results")
}

func TestExportHistoryErrors(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorContains(t, ExportHistory(&MockHistoryStore{}, "", &buf), "--output-file")
	assert.ErrorContains(t, ExportHistory(nil, "out", &buf), "not initialized")

	empty := &MockHistoryStore{}
	empty.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, ExportHistory(empty, "out", &buf), "no ranking history")

	broken := &MockHistoryStore{}
	broken.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 2}, nil)
	broken.On("GetAllRankingRuns").Return(nil, errors.New("boom"))
	assert.ErrorContains(t, ExportHistory(broken, "out", &buf), "failed to retrieve ranking runs")
	broken.AssertExpectations(t)
}
