// Package dashboard wires the session store, the capture pipeline and the
// sync layer together and exposes the actions the user interface triggers.
package dashboard

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"ai-note-taker/internal/capture"
	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/session"
	"ai-note-taker/internal/syncclient"
)

type Options struct {
	PushURL string
	Dialer  *websocket.Dialer
}

type Dashboard struct {
	store    *session.Store
	sync     *syncclient.Sync
	pipeline capture.Pipeline
	opts     Options

	mu     sync.Mutex
	ctx    context.Context
	push   *syncclient.PushChannel
	pumped chan struct{}
}

func New(store *session.Store, syncer *syncclient.Sync, pipeline capture.Pipeline, opts Options) *Dashboard {
	return &Dashboard{
		store:    store,
		sync:     syncer,
		pipeline: pipeline,
		opts:     opts,
	}
}

func (d *Dashboard) Store() *session.Store {
	return d.store
}

// Start loads the collection, starts capturing if the session has capture
// enabled and opens the push channel.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	d.store.Initialize(ctx, d.sync)

	if d.store.Capturing() {
		if err := d.pipeline.Start(ctx); err != nil {
			return err
		}
	}

	if d.opts.PushURL != "" {
		d.openPush(ctx)
	}
	return nil
}

func (d *Dashboard) openPush(ctx context.Context) {
	push := syncclient.OpenPushChannel(ctx, d.opts.PushURL, d.opts.Dialer)
	pumped := make(chan struct{})

	d.mu.Lock()
	d.push = push
	d.pumped = pumped
	d.mu.Unlock()

	go func() {
		defer close(pumped)
		for delivery := range push.Deliveries() {
			if !delivery.Valid() {
				log.Printf("[WebSocket] Dropping malformed message: %v", delivery.Err)
				continue
			}
			d.store.AppendNote(delivery.Note)
		}
	}()
}

// PushState reports the push channel state, or closed when none was opened.
func (d *Dashboard) PushState() syncclient.PushState {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.push == nil {
		return syncclient.PushClosed
	}
	return d.push.State()
}

// ToggleCapture flips capture on or off and returns the new state. Turning
// capture off keeps the notes that were already produced.
func (d *Dashboard) ToggleCapture(ctx context.Context) (bool, error) {
	on := d.store.ToggleCapturing()
	if !on {
		d.pipeline.Stop()
		return false, nil
	}
	if err := d.pipeline.Start(d.runContext(ctx)); err != nil {
		d.store.SetCapturing(false)
		return false, err
	}
	return true, nil
}

func (d *Dashboard) SelectNote(id string) {
	d.store.SelectNote(id)
}

// SaveEdit writes content to the active note through the backend and
// replaces the local content. A failed update is logged by the sync layer
// and the local copy is replaced anyway. It returns false when no note is
// active.
func (d *Dashboard) SaveEdit(ctx context.Context, content string) (domain.Note, bool) {
	active, ok := d.store.ActiveNote()
	if !ok {
		return domain.Note{}, false
	}

	edited := active
	edited.Content = content
	if _, saved := d.sync.UpdateNote(ctx, edited); !saved {
		log.Printf("[Dashboard] Note %s edited locally only", active.ID)
	}

	d.store.ReplaceNoteContent(active.ID, content)
	return edited, true
}

// Export downloads the collection and returns the saved path, or "" when the
// export failed.
func (d *Dashboard) Export(ctx context.Context, format domain.ExportFormat) string {
	return d.sync.ExportNotes(ctx, format)
}

// Close stops capture and tears down the push channel, waiting for pending
// deliveries to reach the store.
func (d *Dashboard) Close() {
	d.pipeline.Stop()

	d.mu.Lock()
	push, pumped := d.push, d.pumped
	d.mu.Unlock()

	if push != nil {
		push.Close()
		<-pumped
	}
}

func (d *Dashboard) runContext(fallback context.Context) context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return d.ctx
	}
	return fallback
}
