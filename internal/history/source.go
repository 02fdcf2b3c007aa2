package history

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"smarthealth/internal/checker"
)

// Source holds the read-only patient history available at startup.
// Entries never change after construction; the session layer only
// reads them.
type Source struct {
	entries []checker.HistoryEntry
}

// NewSource builds a source from a JSON file when path is non-empty,
// otherwise from the built-in sample history.
func NewSource(path string) (*Source, error) {
	if path == "" {
		return &Source{entries: defaultEntries()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	var entries []checker.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	log.Info().Int("entries", len(entries)).Str("path", path).Msg("patient history loaded")
	return &Source{entries: entries}, nil
}

// Entries returns a copy of the history, newest first as supplied.
func (s *Source) Entries() []checker.HistoryEntry {
	out := make([]checker.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func defaultEntries() []checker.HistoryEntry {
	return []checker.HistoryEntry{
		{Date: "April 20, 2024", Condition: "Pharyngitis", Severity: checker.SeverityModerate},
		{Date: "April 5, 2024", Condition: "Bronchitis", Severity: checker.SeverityModerate},
		{Date: "March 13, 2024", Condition: "Common Cold", Severity: checker.SeverityMild},
	}
}
