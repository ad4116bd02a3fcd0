package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"ai-note-taker/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrDuplicate = errors.New("note already exists")
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// List returns every note, most recently created first.
	List(ctx context.Context) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

const noteKind = "note"

// couchNote is the CouchDB document layout of a note.
type couchNote struct {
	Rev  string `json:"_rev,omitempty"`
	Kind string `json:"kind"`
	domain.Note
}

type couchNoteRepository struct {
	client *kivik.Client
	dbName string
}

func NewCouchNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &couchNoteRepository{
		client: client,
		dbName: dbName,
	}
}

func docID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

func (r *couchNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	_, err := db.Put(ctx, docID(note.ID), couchNote{Kind: noteKind, Note: *note})
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *couchNoteRepository) get(ctx context.Context, id string) (*couchNote, error) {
	db := r.client.DB(r.dbName)

	var doc couchNote
	if err := db.Get(ctx, docID(id)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return &doc, nil
}

func (r *couchNoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	note := doc.Note
	return &note, nil
}

func (r *couchNoteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"kind": noteKind,
		},
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var doc couchNote
		if err := rows.ScanDoc(&doc); err != nil {
			continue
		}
		note := doc.Note
		notes = append(notes, &note)
	}

	sortNewestFirst(notes)
	return notes, nil
}

func (r *couchNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	doc, err := r.get(ctx, note.ID)
	if err != nil {
		return err
	}

	doc.Title = note.Title
	doc.Content = note.Content
	doc.Source = note.Source

	db := r.client.DB(r.dbName)
	if _, err := db.Put(ctx, docID(note.ID), doc); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *couchNoteRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	db := r.client.DB(r.dbName)
	if _, err := db.Delete(ctx, docID(id), doc.Rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func sortNewestFirst(notes []*domain.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp.After(notes[j].Timestamp)
	})
}
