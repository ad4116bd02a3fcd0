package domain

import (
	"errors"
	"fmt"
	"time"
)

type NoteType string

const (
	NoteTypeSlide NoteType = "slide"
	NoteTypeVideo NoteType = "video"
)

var ErrInvalidNoteType = errors.New("invalid note type")

func (t NoteType) Valid() bool {
	return t == NoteTypeSlide || t == NoteTypeVideo
}

// Note is a unit of captured lecture content. Type is fixed at creation.
type Note struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Type      NoteType  `json:"type" validate:"required,oneof=slide video"`
	Source    string    `json:"source,omitempty"`
}

type CreateNoteRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Type      NoteType  `json:"type" validate:"required,oneof=slide video"`
	Source    string    `json:"source,omitempty"`
}

// UpdateNoteRequest carries a partial or full replacement. There is no type
// field: the type of a note never changes.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Source  *string `json:"source"`
}

type ExportFormat string

const (
	ExportPDF ExportFormat = "pdf"
	ExportTXT ExportFormat = "txt"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportPDF, ExportTXT:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Filename is the name an export is saved under.
func (f ExportFormat) Filename() string {
	return "notes." + string(f)
}

type FrameResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Note        *Note  `json:"note,omitempty"`
}
