package repository

import (
	"context"
	"sync"

	"ai-note-taker/internal/domain"
)

type memoryNoteRepository struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

// NewMemoryNoteRepository keeps notes in process memory. Used by the
// development server when no CouchDB is configured, and by tests.
func NewMemoryNoteRepository() NoteRepository {
	return &memoryNoteRepository{
		notes: make(map[string]domain.Note),
	}
}

func (r *memoryNoteRepository) Create(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[note.ID]; exists {
		return ErrDuplicate
	}
	r.notes[note.ID] = *note
	return nil
}

func (r *memoryNoteRepository) FindByID(_ context.Context, id string) (*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notes[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r *memoryNoteRepository) List(_ context.Context) ([]*domain.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]*domain.Note, 0, len(r.notes))
	for _, n := range r.notes {
		n := n
		notes = append(notes, &n)
	}
	sortNewestFirst(notes)
	return notes, nil
}

func (r *memoryNoteRepository) Update(_ context.Context, note *domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.notes[note.ID]
	if !exists {
		return ErrNotFound
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.Source = note.Source
	r.notes[note.ID] = existing
	return nil
}

func (r *memoryNoteRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return ErrNotFound
	}
	delete(r.notes, id)
	return nil
}
