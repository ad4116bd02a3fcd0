package capture

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/session"
)

type fakePersister struct {
	mu    sync.Mutex
	fail  bool
	saved []domain.Note
}

func (p *fakePersister) PersistBestEffort(_ context.Context, note domain.Note) (domain.Note, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return domain.Note{}, false
	}
	p.saved = append(p.saved, note)
	return note, true
}

func (p *fakePersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 9, 10, 14, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestGenerator_Next(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)), fixedClock())

	seen := map[domain.NoteType]int{}
	for i := 0; i < 200; i++ {
		n := g.Next()
		seen[n.Type]++

		require.True(t, n.Type.Valid())
		assert.NotEmpty(t, n.Title)
		assert.NotEmpty(t, n.Content)
		assert.Equal(t, strconv.FormatInt(n.Timestamp.UnixMilli(), 10), n.ID)

		switch n.Type {
		case domain.NoteTypeSlide:
			num, err := strconv.Atoi(strings.TrimPrefix(n.Title, "Lecture Slide "))
			require.NoError(t, err)
			assert.True(t, num >= 1 && num <= 20, "slide number %d out of range", num)
			assert.Contains(t, slideContents, n.Content)
			assert.Equal(t, "PowerPoint Presentation", n.Source)
		case domain.NoteTypeVideo:
			num, err := strconv.Atoi(strings.TrimPrefix(n.Title, "Video Lecture "))
			require.NoError(t, err)
			assert.True(t, num >= 1 && num <= 10, "video number %d out of range", num)
			assert.Contains(t, videoContents, n.Content)
			assert.Equal(t, "Recorded Lecture", n.Source)
		}
	}

	assert.Positive(t, seen[domain.NoteTypeSlide])
	assert.Positive(t, seen[domain.NoteTypeVideo])
}

func TestSimulator_FirePersistsAndAppends(t *testing.T) {
	store := session.NewStore(true)
	defer store.Close()
	persister := &fakePersister{}
	sim := NewSimulator(time.Hour, NewGenerator(nil, fixedClock()), persister, store)

	store.AppendNote(domain.Note{ID: "older", Type: domain.NoteTypeVideo})
	note := sim.Fire(context.Background())

	notes := store.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, note.ID, notes[0].ID, "new note goes to the top")
	assert.Equal(t, 1, persister.count())
}

func TestSimulator_FireKeepsNoteWhenPersistFails(t *testing.T) {
	store := session.NewStore(true)
	defer store.Close()
	sim := NewSimulator(time.Hour, nil, &fakePersister{fail: true}, store)

	sim.Fire(context.Background())

	assert.Len(t, store.Notes(), 1)
}

func TestSimulator_TicksUntilStopped(t *testing.T) {
	store := session.NewStore(true)
	defer store.Close()
	interval := 10 * time.Millisecond
	sim := NewSimulator(interval, NewGenerator(nil, fixedClock()), &fakePersister{}, store)

	require.NoError(t, sim.Start(context.Background()))
	require.NoError(t, sim.Start(context.Background()), "second start is a no-op")
	assert.True(t, sim.Running())

	require.Eventually(t, func() bool { return len(store.Notes()) >= 2 }, 2*time.Second, interval)

	sim.Stop()
	assert.False(t, sim.Running())

	// Let any firing that started before Stop land, then check nothing new appears.
	time.Sleep(3 * interval)
	stopped := len(store.Notes())
	time.Sleep(10 * interval)
	assert.Equal(t, stopped, len(store.Notes()))

	sim.Stop()
}

func TestSimulator_StopsWithContext(t *testing.T) {
	store := session.NewStore(true)
	defer store.Close()
	sim := NewSimulator(5*time.Millisecond, nil, &fakePersister{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sim.Start(ctx))
	cancel()

	require.Eventually(t, func() bool { return !sim.Running() }, time.Second, 5*time.Millisecond)
}

func TestSimulator_DefaultInterval(t *testing.T) {
	sim := NewSimulator(0, nil, &fakePersister{}, nil)
	assert.Equal(t, DefaultInterval, sim.interval)
}

func TestSimulator_ConcurrentFirings(t *testing.T) {
	store := session.NewStore(true)
	defer store.Close()
	persister := &fakePersister{}
	sim := NewSimulator(time.Hour, NewGenerator(nil, fixedClock()), persister, store)

	const firings = 50
	var wg sync.WaitGroup
	for i := 0; i < firings; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := sim.Fire(context.Background())
			assert.True(t, n.Type.Valid())
		}()
	}
	wg.Wait()

	assert.Len(t, store.Notes(), firings)
	assert.Equal(t, firings, persister.count())
}

func TestGenerator_SameMillisecondSharesID(t *testing.T) {
	at := time.Date(2024, 9, 10, 14, 0, 0, 0, time.UTC)
	g := NewGenerator(nil, func() time.Time { return at })

	first, second := g.Next(), g.Next()
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, strconv.FormatInt(at.UnixMilli(), 10), first.ID)
}
