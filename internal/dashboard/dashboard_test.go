package dashboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-note-taker/internal/capture"
	"ai-note-taker/internal/config"
	"ai-note-taker/internal/dashboard"
	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/repository"
	"ai-note-taker/internal/server"
	"ai-note-taker/internal/session"
	"ai-note-taker/internal/syncclient"
	"ai-note-taker/internal/ui"
	ws "ai-note-taker/internal/websocket"
)

type backend struct {
	srv     *httptest.Server
	repo    repository.NoteRepository
	manager *ws.Manager
}

func (b *backend) wsURL() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/ws"
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: "memory"},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxSize: 1 << 20},
		WebSocket: config.WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxConnections:  10,
			WriteWait:       time.Second,
			PongWait:        5 * time.Second,
			PingPeriod:      4 * time.Second,
		},
		CORS: config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowedHeaders: "Content-Type"},
	}
	repo := repository.NewMemoryNoteRepository()
	manager := server.NewManager(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)

	srv := httptest.NewServer(server.NewHandler(cfg, repo, manager))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &backend{srv: srv, repo: repo, manager: manager}
}

type fakePipeline struct {
	mu      sync.Mutex
	running bool
	starts  int
	err     error
}

func (p *fakePipeline) Start(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.running = true
	p.starts++
	return nil
}

func (p *fakePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
}

func (p *fakePipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func newDashboard(t *testing.T, apiURL string, pipeline capture.Pipeline, capturing bool, opts dashboard.Options) (*dashboard.Dashboard, *session.Store) {
	t.Helper()
	store := session.NewStore(capturing)
	syncer := syncclient.NewSync(syncclient.NewClient(apiURL, 2*time.Second), t.TempDir())
	d := dashboard.New(store, syncer, pipeline, opts)
	t.Cleanup(func() {
		d.Close()
		store.Close()
	})
	return d, store
}

func TestDashboard_SaveEditKeepsIdentity(t *testing.T) {
	b := newBackend(t)
	ts := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	original := domain.Note{ID: "1714642200000", Title: "Lecture Slide 12", Content: "draft", Timestamp: ts, Type: domain.NoteTypeVideo, Source: "Recorded Lecture"}
	require.NoError(t, b.repo.Create(context.Background(), &original))

	d, store := newDashboard(t, b.srv.URL, &fakePipeline{}, false, dashboard.Options{})
	require.NoError(t, d.Start(context.Background()))
	require.Len(t, store.Notes(), 1)

	d.SelectNote(original.ID)
	edited, ok := d.SaveEdit(context.Background(), "final text")
	require.True(t, ok)

	assert.Equal(t, original.ID, edited.ID)
	assert.Equal(t, original.Type, edited.Type)
	assert.True(t, original.Timestamp.Equal(edited.Timestamp))
	assert.Equal(t, "final text", edited.Content)

	active, ok := store.ActiveNote()
	require.True(t, ok)
	assert.Equal(t, original.ID, active.ID)
	assert.Equal(t, original.Type, active.Type)
	assert.True(t, original.Timestamp.Equal(active.Timestamp))
	assert.Equal(t, "final text", active.Content)

	stored, err := b.repo.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "final text", stored.Content)
	assert.Equal(t, domain.NoteTypeVideo, stored.Type)
}

func TestDashboard_SaveEditWithoutSelection(t *testing.T) {
	b := newBackend(t)
	d, _ := newDashboard(t, b.srv.URL, &fakePipeline{}, false, dashboard.Options{})
	require.NoError(t, d.Start(context.Background()))

	_, ok := d.SaveEdit(context.Background(), "ignored")
	assert.False(t, ok)
}

func TestDashboard_SaveEditFailureStillReplacesLocally(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	d, store := newDashboard(t, failing.URL, &fakePipeline{}, false, dashboard.Options{})
	require.NoError(t, d.Start(context.Background()))
	store.AppendNote(domain.Note{ID: "a", Title: "t", Content: "before", Type: domain.NoteTypeSlide})
	d.SelectNote("a")

	_, ok := d.SaveEdit(context.Background(), "after")
	require.True(t, ok)

	active, _ := store.ActiveNote()
	assert.Equal(t, "after", active.Content)
}

func TestDashboard_EmptyStartThenOneFiring(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer failing.Close()

	store := session.NewStore(false)
	defer store.Close()
	syncer := syncclient.NewSync(syncclient.NewClient(failing.URL, 2*time.Second), t.TempDir())
	sim := capture.NewSimulator(time.Hour, nil, syncer, store)
	d := dashboard.New(store, syncer, sim, dashboard.Options{})
	defer d.Close()

	require.NoError(t, d.Start(context.Background()))

	snap := store.Snapshot()
	assert.Empty(t, snap.Notes)
	assert.Empty(t, ui.ListEntries(snap.Notes, snap.ActiveID, time.Now()))
	assert.Equal(t, "0 notes created during this session", ui.CountLabel(len(snap.Notes)))

	fired := sim.Fire(context.Background())

	notes := store.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, fired.ID, notes[0].ID)
	assert.Len(t, ui.ListEntries(notes, "", time.Now()), 1)
}

func TestDashboard_DuplicateFromSimulatorAndPush(t *testing.T) {
	b := newBackend(t)

	store := session.NewStore(false)
	defer store.Close()
	syncer := syncclient.NewSync(syncclient.NewClient(b.srv.URL, 2*time.Second), t.TempDir())
	sim := capture.NewSimulator(time.Hour, nil, syncer, store)
	d := dashboard.New(store, syncer, sim, dashboard.Options{PushURL: b.wsURL()})
	defer d.Close()

	require.NoError(t, d.Start(context.Background()))
	require.Eventually(t, func() bool { return b.manager.Connections() == 1 }, 2*time.Second, 5*time.Millisecond)

	fired := sim.Fire(context.Background())

	require.Eventually(t, func() bool { return len(store.Notes()) == 2 }, 2*time.Second, 5*time.Millisecond)
	notes := store.Notes()
	assert.Equal(t, fired.ID, notes[0].ID)
	assert.Equal(t, fired.ID, notes[1].ID)
}

func TestDashboard_MalformedPushIsDropped(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("[]"))
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range []string{
			`not json`,
			`{"title":"no id","type":"slide"}`,
			`{"id":"x","title":"bad type","type":"audio"}`,
			`{"id":"ok","title":"Video Lecture 3","type":"video","timestamp":"2024-05-02T09:30:00Z"}`,
		} {
			conn.WriteMessage(websocket.TextMessage, []byte(msg))
		}
		conn.ReadMessage()
	}))
	defer srv.Close()

	d, store := newDashboard(t, srv.URL, &fakePipeline{}, false, dashboard.Options{PushURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"})
	require.NoError(t, d.Start(context.Background()))

	require.Eventually(t, func() bool { return len(store.Notes()) == 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	notes := store.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "ok", notes[0].ID)
	assert.Equal(t, syncclient.PushOpen, d.PushState())
}

func TestDashboard_ToggleCapture(t *testing.T) {
	b := newBackend(t)
	pipeline := &fakePipeline{}
	d, store := newDashboard(t, b.srv.URL, pipeline, true, dashboard.Options{})
	require.NoError(t, d.Start(context.Background()))
	assert.True(t, pipeline.Running())

	on, err := d.ToggleCapture(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, pipeline.Running())
	assert.False(t, store.Capturing())

	on, err = d.ToggleCapture(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, pipeline.Running())
	assert.Equal(t, 2, pipeline.starts)
}

func TestDashboard_ToggleCaptureStartFailure(t *testing.T) {
	b := newBackend(t)
	pipeline := &fakePipeline{err: assert.AnError}
	d, store := newDashboard(t, b.srv.URL, pipeline, false, dashboard.Options{})
	require.NoError(t, d.Start(context.Background()))

	on, err := d.ToggleCapture(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, on)
	assert.False(t, store.Capturing())
}

func TestDashboard_Export(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.repo.Create(context.Background(), &domain.Note{ID: "1", Title: "Lecture Slide 1", Content: "Limits", Type: domain.NoteTypeSlide}))

	store := session.NewStore(false)
	defer store.Close()
	dir := t.TempDir()
	syncer := syncclient.NewSync(syncclient.NewClient(b.srv.URL, 2*time.Second), dir)
	d := dashboard.New(store, syncer, &fakePipeline{}, dashboard.Options{})
	defer d.Close()

	path := d.Export(context.Background(), domain.ExportTXT)
	require.Equal(t, filepath.Join(dir, "notes.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Limits")
}

func TestDashboard_PushStateWithoutChannel(t *testing.T) {
	d, _ := newDashboard(t, "http://127.0.0.1:1", &fakePipeline{}, false, dashboard.Options{})
	assert.Equal(t, syncclient.PushClosed, d.PushState())
}
