package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRecordAndList(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewJournalService(dir, nil)
	require.NoError(t, err)

	svc.Record(&model.Submission{ID: "a", TokenID: "1", Success: true})
	svc.Record(&model.Submission{ID: "b", TokenID: "2", Success: false, Error: "timeout"})

	entries, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "a", entries[1].ID)
}

func TestJournalWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewJournalService(dir, nil)
	require.NoError(t, err)

	svc.Record(&model.Submission{ID: "x", TokenID: "9", OrderType: "GTC", Success: true})

	// the consumer goroutine drains asynchronously; poll for the line
	pattern := filepath.Join(dir, "submissions-*.jsonl")
	deadline := time.Now().Add(2 * time.Second)
	for {
		matches, _ := filepath.Glob(pattern)
		if len(matches) == 1 {
			raw, err := os.ReadFile(matches[0])
			require.NoError(t, err)
			if len(raw) > 0 {
				var entry model.Submission
				require.NoError(t, json.Unmarshal(raw, &entry))
				assert.Equal(t, "x", entry.ID)
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("journal line never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestJournalListLimit(t *testing.T) {
	svc, err := NewJournalService(t.TempDir(), nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		svc.Record(&model.Submission{ID: string(rune('a' + i))})
	}
	entries, err := svc.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
