package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarthealth/internal/checker"
)

func TestDefaultEntries(t *testing.T) {
	src, err := NewSource("")
	require.NoError(t, err)

	entries := src.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Pharyngitis", entries[0].Condition)
	assert.Equal(t, "April 20, 2024", entries[0].Date)
	assert.Equal(t, "Common Cold", entries[2].Condition)
}

func TestEntriesReturnsCopy(t *testing.T) {
	src, err := NewSource("")
	require.NoError(t, err)

	entries := src.Entries()
	entries[0].Condition = "Tampered"
	assert.Equal(t, "Pharyngitis", src.Entries()[0].Condition)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	payload := `[{"date": "May 1, 2025", "condition": "Sinusitis", "severity": "Mild"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	src, err := NewSource(path)
	require.NoError(t, err)

	entries := src.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, checker.HistoryEntry{Date: "May 1, 2025", Condition: "Sinusitis", Severity: "Mild"}, entries[0])
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = NewSource(path)
	assert.Error(t, err)
}

func TestHistoryEntryProjection(t *testing.T) {
	entry := checker.HistoryEntry{Date: "April 5, 2024", Condition: "Bronchitis", Severity: checker.SeverityModerate}
	c := entry.AsCondition()

	assert.Equal(t, "Bronchitis", c.Name)
	assert.Equal(t, checker.SeverityModerate, c.Severity)
	assert.Zero(t, c.MatchingSymptoms)
	assert.Empty(t, c.Description)
}
