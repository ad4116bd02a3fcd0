// Package capture produces notes from lecture material. Simulator stands in
// for a real analysis pipeline; FrameWatcher feeds real screenshots to the
// backend.
package capture

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"ai-note-taker/internal/domain"
	"ai-note-taker/internal/syncclient"
)

// Pipeline is anything that produces notes while running.
type Pipeline interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
}

// Sink receives captured notes.
type Sink interface {
	AppendNote(note domain.Note)
}

const DefaultInterval = 15 * time.Second

type Simulator struct {
	interval  time.Duration
	generator *Generator
	persister syncclient.Persister
	sink      Sink

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSimulator(interval time.Duration, generator *Generator, persister syncclient.Persister, sink Sink) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if generator == nil {
		generator = NewGenerator(nil, nil)
	}
	return &Simulator{
		interval:  interval,
		generator: generator,
		persister: persister,
		sink:      sink,
	}
}

// Start schedules a firing every interval until Stop or ctx cancellation.
// Starting a running simulator does nothing.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	lifecycle.Go(runCtx, func(runCtx context.Context) error {
		defer close(done)
		s.loop(runCtx, ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		log.Printf("[Capture] Simulator loop failed: %v", err)
	}))

	log.Printf("[Capture] Simulator started (every %s)", s.interval)
	return nil
}

// loop ticks until runCtx ends. Firings use fireCtx so that stopping the
// schedule does not abort a persist already in flight.
func (s *Simulator) loop(runCtx, fireCtx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return
		case <-ticker.C:
			go s.Fire(fireCtx)
		}
	}
}

// Fire creates one note, persists it best-effort and appends it locally
// whether or not the backend accepted it.
func (s *Simulator) Fire(ctx context.Context) domain.Note {
	note := s.generator.Next()
	if _, ok := s.persister.PersistBestEffort(ctx, note); !ok {
		log.Printf("[Capture] Note %s kept locally without backend copy", note.ID)
	}
	s.sink.AppendNote(note)
	return note
}

// Stop ends scheduling and waits for the loop to exit. Notes already
// created stay where they are.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Printf("[Capture] Simulator stopped")
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Simulator) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
