package syncclient

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"ai-note-taker/internal/domain"
)

// Persister stores a freshly captured note. The bool reports whether the
// backend accepted it; callers keep their local copy either way.
type Persister interface {
	PersistBestEffort(ctx context.Context, note domain.Note) (domain.Note, bool)
}

// Sync applies the client's failure policy on top of Client: every failure
// is logged and swallowed, nothing is retried or rolled back.
type Sync struct {
	client    *Client
	exportDir string
}

func NewSync(client *Client, exportDir string) *Sync {
	if exportDir == "" {
		exportDir = "."
	}
	return &Sync{
		client:    client,
		exportDir: exportDir,
	}
}

func (s *Sync) Client() *Client {
	return s.client
}

// ListNotes returns the backend collection, or an empty slice when the
// fetch fails. An empty result is therefore ambiguous.
func (s *Sync) ListNotes(ctx context.Context) []domain.Note {
	notes, err := s.client.List(ctx)
	if err != nil {
		log.Printf("[Sync] Error fetching notes: %v", err)
		return []domain.Note{}
	}
	return notes
}

func (s *Sync) CreateNote(ctx context.Context, note domain.Note) (domain.Note, bool) {
	created, err := s.client.Create(ctx, note)
	if err != nil {
		log.Printf("[Sync] Error saving note %s: %v", note.ID, err)
		return domain.Note{}, false
	}
	return created, true
}

func (s *Sync) UpdateNote(ctx context.Context, note domain.Note) (domain.Note, bool) {
	updated, err := s.client.Update(ctx, note)
	if err != nil {
		log.Printf("[Sync] Error updating note %s: %v", note.ID, err)
		return domain.Note{}, false
	}
	return updated, true
}

func (s *Sync) DeleteNote(ctx context.Context, id string) bool {
	if err := s.client.Delete(ctx, id); err != nil {
		log.Printf("[Sync] Error deleting note %s: %v", id, err)
		return false
	}
	return true
}

// PersistBestEffort creates the note on the backend and reports the outcome
// without affecting the caller's local state.
func (s *Sync) PersistBestEffort(ctx context.Context, note domain.Note) (domain.Note, bool) {
	return s.CreateNote(ctx, note)
}

// ExportNotes downloads the export and saves it as notes.<format> in the
// export directory. It returns the written path, or "" on failure.
func (s *Sync) ExportNotes(ctx context.Context, format domain.ExportFormat) string {
	data, err := s.client.Export(ctx, format)
	if err != nil {
		log.Printf("[Sync] Error exporting notes: %v", err)
		return ""
	}

	path := filepath.Join(s.exportDir, format.Filename())
	if err := writeFileAtomic(path, data); err != nil {
		log.Printf("[Sync] Error saving export: %v", err)
		return ""
	}
	log.Printf("[Sync] Exported %d bytes to %s", len(data), path)
	return path
}

func (s *Sync) ProcessFrame(ctx context.Context, filename string, frame io.Reader) (domain.FrameResult, bool) {
	result, err := s.client.ProcessFrame(ctx, filename, frame)
	if err != nil {
		log.Printf("[Sync] Error processing frame %s: %v", filename, err)
		return domain.FrameResult{}, false
	}
	log.Printf("[Sync] Frame processed: %s (%s, %d bytes)", result.Filename, result.ContentType, result.Size)
	return result, true
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
