// Package session holds the client-side state of one note taking session:
// the ordered note collection, the selected note and the capture flag.
//
// Every operation is turned into a command and applied by a single goroutine
// in arrival order, so capture ticks, push deliveries and user edits never
// race on the collection.
package session

import (
	"context"
	"sync"

	"ai-note-taker/internal/domain"
)

// Lister fetches the backend collection. Implementations swallow failures
// and return an empty slice.
type Lister interface {
	ListNotes(ctx context.Context) []domain.Note
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Notes     []domain.Note
	ActiveID  string
	Capturing bool
}

// Active returns the selected note, if it exists in the collection.
func (s Snapshot) Active() (domain.Note, bool) {
	return findNote(s.Notes, s.ActiveID)
}

type state struct {
	notes     []domain.Note
	activeID  string
	capturing bool
}

type command struct {
	apply  func(*state)
	notify bool
}

type Store struct {
	commands  chan command
	done      chan struct{}
	closeOnce sync.Once

	subsMu sync.RWMutex
	subs   []func(Snapshot)
}

func NewStore(capturing bool) *Store {
	s := &Store{
		commands: make(chan command),
		done:     make(chan struct{}),
	}
	go s.run(&state{capturing: capturing})
	return s
}

func (s *Store) run(st *state) {
	for {
		select {
		case cmd := <-s.commands:
			select {
			case <-s.done:
				return
			default:
			}
			cmd.apply(st)
			if cmd.notify {
				s.publish(st.snapshot())
			}
		case <-s.done:
			return
		}
	}
}

// submit enqueues a command and reports whether the store accepted it.
func (s *Store) submit(cmd command) bool {
	select {
	case s.commands <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// query runs fn on the loop goroutine and waits for it to finish.
func (s *Store) query(fn func(*state)) bool {
	finished := make(chan struct{})
	ok := s.submit(command{apply: func(st *state) {
		fn(st)
		close(finished)
	}})
	if !ok {
		return false
	}
	select {
	case <-finished:
		return true
	case <-s.done:
		return false
	}
}

func (s *Store) mutate(fn func(*state)) {
	s.submit(command{apply: fn, notify: true})
}

// Initialize replaces the collection with whatever the backend returns. A
// failed fetch leaves the collection empty.
func (s *Store) Initialize(ctx context.Context, lister Lister) {
	notes := lister.ListNotes(ctx)
	loaded := make([]domain.Note, len(notes))
	copy(loaded, notes)
	s.mutate(func(st *state) {
		st.notes = loaded
	})
}

// AppendNote puts note at the front of the collection. Notes are not
// de-duplicated by id.
func (s *Store) AppendNote(note domain.Note) {
	s.mutate(func(st *state) {
		st.notes = append([]domain.Note{note}, st.notes...)
	})
}

// SelectNote sets the active note pointer without checking that id exists.
func (s *Store) SelectNote(id string) {
	s.mutate(func(st *state) {
		st.activeID = id
	})
}

// ReplaceNoteContent swaps the content of the note with the given id.
// Nothing happens when no such note exists.
func (s *Store) ReplaceNoteContent(id, content string) {
	s.mutate(func(st *state) {
		for i := range st.notes {
			if st.notes[i].ID == id {
				st.notes[i].Content = content
				return
			}
		}
	})
}

func (s *Store) SetCapturing(on bool) {
	s.mutate(func(st *state) {
		st.capturing = on
	})
}

// ToggleCapturing flips the capture flag and returns the new value.
func (s *Store) ToggleCapturing() bool {
	var on bool
	finished := make(chan struct{})
	ok := s.submit(command{notify: true, apply: func(st *state) {
		st.capturing = !st.capturing
		on = st.capturing
		close(finished)
	}})
	if !ok {
		return false
	}
	select {
	case <-finished:
		return on
	case <-s.done:
		return false
	}
}

func (s *Store) Capturing() bool {
	var on bool
	s.query(func(st *state) { on = st.capturing })
	return on
}

// Notes returns the collection, most recent first.
func (s *Store) Notes() []domain.Note {
	var notes []domain.Note
	s.query(func(st *state) { notes = st.snapshot().Notes })
	return notes
}

// ActiveNote returns the selected note, or false when nothing is selected or
// the selected id is not in the collection.
func (s *Store) ActiveNote() (domain.Note, bool) {
	return s.Snapshot().Active()
}

func (s *Store) Snapshot() Snapshot {
	var snap Snapshot
	s.query(func(st *state) { snap = st.snapshot() })
	return snap
}

// Subscribe registers fn to be called with a fresh snapshot after every
// mutation. fn runs on the store goroutine and must not call back into the
// store synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) publish(snap Snapshot) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// Close stops the command loop. Operations after Close are dropped.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (st *state) snapshot() Snapshot {
	notes := make([]domain.Note, len(st.notes))
	copy(notes, st.notes)
	return Snapshot{
		Notes:     notes,
		ActiveID:  st.activeID,
		Capturing: st.capturing,
	}
}

func findNote(notes []domain.Note, id string) (domain.Note, bool) {
	if id == "" {
		return domain.Note{}, false
	}
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Note{}, false
}
