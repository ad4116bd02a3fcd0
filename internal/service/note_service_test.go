package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/repository"
)

type mockNoteRepo struct {
	notes map[string]*domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes: make(map[string]*domain.Note),
	}
}

func (m *mockNoteRepo) Create(_ context.Context, note *domain.Note) error {
	if _, exists := m.notes[note.ID]; exists {
		return repository.ErrDuplicate
	}
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *mockNoteRepo) FindByID(_ context.Context, id string) (*domain.Note, error) {
	if n, exists := m.notes[id]; exists {
		copied := *n
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockNoteRepo) List(_ context.Context) ([]*domain.Note, error) {
	var notes []*domain.Note
	for _, n := range m.notes {
		notes = append(notes, n)
	}
	return notes, nil
}

func (m *mockNoteRepo) Update(_ context.Context, note *domain.Note) error {
	if _, exists := m.notes[note.ID]; exists {
		copied := *note
		m.notes[note.ID] = &copied
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockNoteRepo) Delete(_ context.Context, id string) error {
	if _, exists := m.notes[id]; exists {
		delete(m.notes, id)
		return nil
	}
	return repository.ErrNotFound
}

type mockBroadcaster struct {
	notes []*domain.Note
	err   error
}

func (m *mockBroadcaster) BroadcastNote(note *domain.Note) error {
	m.notes = append(m.notes, note)
	return m.err
}

func TestNoteService_Create(t *testing.T) {
	repo := newMockNoteRepo()
	broadcaster := &mockBroadcaster{}
	service := NewNoteService(repo, broadcaster)

	req := &domain.CreateNoteRequest{
		Title:   "Lecture Slide 3",
		Content: "Key concepts",
		Type:    domain.NoteTypeSlide,
		Source:  "PowerPoint Presentation",
	}

	note, err := service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if note.ID == "" {
		t.Error("expected note ID to be generated")
	}
	if note.Timestamp.IsZero() {
		t.Error("expected timestamp to default to now")
	}
	if len(broadcaster.notes) != 1 || broadcaster.notes[0].ID != note.ID {
		t.Errorf("expected created note to be broadcast once, got %d broadcasts", len(broadcaster.notes))
	}
}

func TestNoteService_CreateKeepsClientID(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	note, err := service.Create(context.Background(), &domain.CreateNoteRequest{
		ID:        "1709287200000",
		Title:     "Video Lecture 2",
		Timestamp: ts,
		Type:      domain.NoteTypeVideo,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if note.ID != "1709287200000" {
		t.Errorf("expected client id to be kept, got %s", note.ID)
	}
	if !note.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, note.Timestamp)
	}

	_, err = service.Create(context.Background(), &domain.CreateNoteRequest{ID: "1709287200000", Title: "again", Type: domain.NoteTypeVideo})
	if !errors.Is(err, ErrNoteExists) {
		t.Errorf("expected ErrNoteExists, got %v", err)
	}
}

func TestNoteService_CreateRejectsUnknownType(t *testing.T) {
	service := NewNoteService(newMockNoteRepo(), nil)

	_, err := service.Create(context.Background(), &domain.CreateNoteRequest{Title: "t", Type: "audio"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNoteService_BroadcastFailureStillCreates(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, &mockBroadcaster{err: errors.New("hub down")})

	note, err := service.Create(context.Background(), &domain.CreateNoteRequest{Title: "t", Type: domain.NoteTypeSlide})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.notes[note.ID]; !ok {
		t.Error("expected note to be stored")
	}
}

func TestNoteService_List(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)

	list, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}

	service.Create(context.Background(), &domain.CreateNoteRequest{Title: "n1", Type: domain.NoteTypeSlide})
	service.Create(context.Background(), &domain.CreateNoteRequest{Title: "n2", Type: domain.NoteTypeVideo})

	list, err = service.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 notes, got %d", len(list))
	}
}

func TestNoteService_Update(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	note, _ := service.Create(ctx, &domain.CreateNoteRequest{ID: "42", Title: "old", Content: "old body", Timestamp: ts, Type: domain.NoteTypeSlide})

	newContent := "new body"
	updated, err := service.Update(ctx, note.ID, &domain.UpdateNoteRequest{Content: &newContent})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Content != newContent {
		t.Errorf("expected content %s, got %s", newContent, updated.Content)
	}
	if updated.Title != "old" {
		t.Errorf("expected title to be unchanged, got %s", updated.Title)
	}
	if updated.ID != "42" || updated.Type != domain.NoteTypeSlide || !updated.Timestamp.Equal(ts) {
		t.Errorf("expected identity, type and timestamp to be unchanged, got %+v", updated)
	}

	empty := ""
	if _, err := service.Update(ctx, note.ID, &domain.UpdateNoteRequest{Title: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	if _, err := service.Update(ctx, "missing", &domain.UpdateNoteRequest{Content: &newContent}); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteService_Delete(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)
	ctx := context.Background()

	note, _ := service.Create(ctx, &domain.CreateNoteRequest{Title: "del", Type: domain.NoteTypeSlide})

	if err := service.Delete(ctx, note.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := service.GetByID(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
	if err := service.Delete(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on second delete, got %v", err)
	}
}
