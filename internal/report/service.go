package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/signintech/gopdf"

	"smarthealth/internal/checker"
)

// Disclaimer accompanies every exported document.
const Disclaimer = "This information is for informational purposes only and is not a substitute for professional medical advice, diagnosis, or treatment. Always seek the advice of your physician or other qualified health provider with any questions you may have regarding a medical condition."

// shareDisclaimer is the shorter form used in the share summary.
const shareDisclaimer = "This information is for informational purposes only and is not a substitute for professional medical advice."

// ShareSink delivers a short text summary through the platform's
// sharing mechanism.
type ShareSink interface {
	Send(text string) error
}

type Service struct {
	sink      ShareSink
	exportDir string
}

func NewService(sink ShareSink, exportDir string) *Service {
	return &Service{
		sink:      sink,
		exportDir: exportDir,
	}
}

// Summary builds the shareable text for a condition record.
func Summary(c checker.Condition) string {
	description := c.Description
	if description == "" {
		description = "No description available."
	}
	return fmt.Sprintf("Condition: %s\nSeverity: %s\n\nDescription:\n%s\n\nDisclaimer: %s",
		c.Name, c.Severity, description, shareDisclaimer)
}

// Share hands the condition summary to the platform share sink. A nil
// sink means the user has nowhere to share to, which is the same
// outcome as cancelling a share and not an error.
func (s *Service) Share(c checker.Condition) error {
	if s.sink == nil {
		log.Debug().Str("condition", c.Name).Msg("share skipped: no sink configured")
		return nil
	}
	if err := s.sink.Send(Summary(c)); err != nil {
		return fmt.Errorf("share condition: %w", err)
	}
	log.Info().Str("condition", c.Name).Msg("condition shared")
	return nil
}

// Export renders the condition record to a PDF in the export directory
// and returns the written file's path. The document carries the
// condition name, severity, description and the fixed disclaimer.
func (s *Service) Export(c checker.Condition) (string, error) {
	data, err := s.pdfBytes(c)
	if err != nil {
		return "", err
	}

	if s.exportDir != "" {
		if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}
	fileName := strings.ReplaceAll(c.Name, " ", "_") + "_Details.pdf"
	path := filepath.Join(s.exportDir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	log.Info().Str("condition", c.Name).Str("path", path).Msg("condition exported")
	return path, nil
}

// Common TTF locations; gopdf cannot use built-in PDF fonts.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func (s *Service) pdfBytes(c checker.Condition) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	fontLoaded := false
	var fontErr error
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("body", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("no usable TTF font found for PDF export: %w", fontErr)
	}

	if err := pdf.SetFont("body", "", 22); err != nil {
		return nil, err
	}
	pdf.Cell(nil, c.Name)
	pdf.Br(30)

	if err := pdf.SetFont("body", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Severity: %s", c.Severity))
	pdf.Br(20)

	description := c.Description
	if description == "" {
		description = "No description available."
	}
	lines, _ := pdf.SplitText(description, 500)
	for _, line := range lines {
		pdf.Cell(nil, line)
		pdf.Br(14)
	}

	pdf.SetY(760)
	if err := pdf.SetFont("body", "", 8); err != nil {
		return nil, err
	}
	lines, _ = pdf.SplitText(Disclaimer, 500)
	for _, line := range lines {
		pdf.Cell(nil, line)
		pdf.Br(10)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
