package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-note-taker/internal/domain"

	"github.com/gabriel-vasile/mimetype"
)

const frameSource = "Screen Capture"

// FrameService stores uploaded frames and turns each into a slide note.
type FrameService struct {
	notes   *NoteService
	dir     string
	maxSize int64
	now     func() time.Time
}

func NewFrameService(notes *NoteService, dir string, maxSize int64) *FrameService {
	return &FrameService{
		notes:   notes,
		dir:     dir,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (s *FrameService) Process(ctx context.Context, filename string, frame io.Reader) (*domain.FrameResult, error) {
	data, err := io.ReadAll(io.LimitReader(frame, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFrameTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFrame, mtype.String())
	}

	now := s.now()
	stored := storedFrameName(filename, mtype.Extension(), now)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, stored), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save frame: %w", err)
	}

	note, err := s.notes.Create(ctx, &domain.CreateNoteRequest{
		Title:     fmt.Sprintf("Captured Slide %s", frameBase(filename)),
		Content:   fmt.Sprintf("Frame %s captured at %s (%s, %d bytes). Content analysis pending.", filepath.Base(filename), now.Format(exportTimeLayout), mtype.String(), len(data)),
		Timestamp: now,
		Type:      domain.NoteTypeSlide,
		Source:    frameSource,
	})
	if err != nil {
		return nil, err
	}

	return &domain.FrameResult{
		Filename:    stored,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		Note:        note,
	}, nil
}

func frameBase(original string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "frame"
	}
	return base
}

func storedFrameName(original, ext string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), frameBase(original), ext)
}
