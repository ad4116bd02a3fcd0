package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/repository"

	"github.com/google/uuid"
)

// Broadcaster pushes a freshly created note to every connected client.
type Broadcaster interface {
	BroadcastNote(note *domain.Note) error
}

type NoteService struct {
	repo        repository.NoteRepository
	broadcaster Broadcaster
	now         func() time.Time
}

func NewNoteService(repo repository.NoteRepository, broadcaster Broadcaster) *NoteService {
	return &NoteService{
		repo:        repo,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// Create stores a note. The client's id is kept when it sends one, so the
// note it already shows and the stored note line up.
func (s *NoteService) Create(ctx context.Context, req *domain.CreateNoteRequest) (*domain.Note, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidNoteType)
	}

	noteID := req.ID
	if noteID == "" {
		noteID = uuid.New().String()
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	note := &domain.Note{
		ID:        noteID,
		Title:     req.Title,
		Content:   req.Content,
		Timestamp: timestamp,
		Type:      req.Type,
		Source:    req.Source,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, mapRepoError(err)
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastNote(note); err != nil {
			log.Printf("[Notes] Failed to broadcast note %s: %v", note.ID, err)
		}
	}

	return note, nil
}

func (s *NoteService) List(ctx context.Context) ([]*domain.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) GetByID(ctx context.Context, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return note, nil
}

// Update applies the fields present in req. Identity, timestamp and type are
// never touched.
func (s *NoteService) Update(ctx context.Context, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Source != nil {
		note.Source = *req.Source
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, mapRepoError(err)
	}

	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, noteID string) error {
	return mapRepoError(s.repo.Delete(ctx, noteID))
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNoteNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrNoteExists
	default:
		return err
	}
}
