package report

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarthealth/internal/checker"
)

type fakeSink struct {
	sent []string
	err  error
}

func (f *fakeSink) Send(text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func sampleCondition() checker.Condition {
	return checker.Condition{
		Name:             "Pharyngitis",
		MatchingSymptoms: 2,
		Severity:         checker.SeverityModerate,
		Description:      "An inflammation of the pharynx, usually caused by a viral infection.",
	}
}

func TestSummary(t *testing.T) {
	text := Summary(sampleCondition())

	assert.Contains(t, text, "Condition: Pharyngitis")
	assert.Contains(t, text, "Severity: Moderate")
	assert.Contains(t, text, "An inflammation of the pharynx")
	assert.Contains(t, text, "not a substitute for professional medical advice")
}

func TestSummaryWithoutDescription(t *testing.T) {
	c := sampleCondition()
	c.Description = ""
	assert.Contains(t, Summary(c), "No description available.")
}

func TestShareSendsSummary(t *testing.T) {
	sink := &fakeSink{}
	svc := NewService(sink, t.TempDir())

	require.NoError(t, svc.Share(sampleCondition()))
	require.Len(t, sink.sent, 1)
	assert.Equal(t, Summary(sampleCondition()), sink.sent[0])
}

func TestShareWithoutSinkIsNotAnError(t *testing.T) {
	svc := NewService(nil, t.TempDir())
	assert.NoError(t, svc.Share(sampleCondition()))
}

func TestShareWrapsSinkError(t *testing.T) {
	svc := NewService(&fakeSink{err: errors.New("network down")}, t.TempDir())
	err := svc.Share(sampleCondition())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func hasExportFont() bool {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

func TestExportWritesPDF(t *testing.T) {
	if !hasExportFont() {
		t.Skip("no TTF font installed for PDF export")
	}
	dir := t.TempDir()
	svc := NewService(nil, dir)

	path, err := svc.Export(sampleCondition())
	require.NoError(t, err)
	assert.Contains(t, path, "Pharyngitis_Details.pdf")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportNameWithSpaces(t *testing.T) {
	if !hasExportFont() {
		t.Skip("no TTF font installed for PDF export")
	}
	svc := NewService(nil, t.TempDir())

	c := sampleCondition()
	c.Name = "Common Cold"
	path, err := svc.Export(c)
	require.NoError(t, err)
	assert.Contains(t, path, "Common_Cold_Details.pdf")
}
