package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/repository"

	"github.com/go-pdf/fpdf"
)

const exportTimeLayout = "2006-01-02 15:04:05"

type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	repo repository.NoteRepository
	now  func() time.Time
}

func NewExportService(repo repository.NoteRepository) *ExportService {
	return &ExportService{
		repo: repo,
		now:  time.Now,
	}
}

// Export renders the whole collection, newest note first.
func (s *ExportService) Export(ctx context.Context, rawFormat string) (*Export, error) {
	format, err := domain.ParseExportFormat(rawFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, rawFormat)
	}

	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	switch format {
	case domain.ExportPDF:
		data, err := RenderPDF(notes, s.now())
		if err != nil {
			return nil, err
		}
		return &Export{Filename: format.Filename(), ContentType: "application/pdf", Data: data}, nil
	default:
		return &Export{Filename: format.Filename(), ContentType: "text/plain; charset=utf-8", Data: RenderText(notes)}, nil
	}
}

func noteHeading(n *domain.Note) string {
	meta := fmt.Sprintf("[%s] %s", n.Type, n.Timestamp.Format(exportTimeLayout))
	if n.Source != "" {
		meta += " | " + n.Source
	}
	return meta
}

func RenderText(notes []*domain.Note) []byte {
	var b strings.Builder
	for i, n := range notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(n.Title)
		b.WriteString("\n")
		b.WriteString(noteHeading(n))
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(n.Content, "\n"))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func RenderPDF(notes []*domain.Note, generated time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(generated)
	pdf.SetTitle("Lecture notes", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Lecture notes", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d notes, exported %s", len(notes), generated.Format(exportTimeLayout))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, n := range notes {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, tr(n.Title), "", "L", false)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(noteHeading(n)), "", "L", false)
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(n.Content), "", "L", false)
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
