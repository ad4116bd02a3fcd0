package capture

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"ai-note-taker/internal/domain"
)

// FrameUploader sends a captured frame to the backend for processing.
type FrameUploader interface {
	ProcessFrame(ctx context.Context, filename string, frame io.Reader) (domain.FrameResult, bool)
}

const defaultSettle = 250 * time.Millisecond

// FrameWatcher uploads image files as they appear under a directory. Files
// are uploaded once writes to them have been quiet for the settle period.
type FrameWatcher struct {
	dir      string
	pattern  string
	settle   time.Duration
	uploader FrameUploader

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	pending map[string]*time.Timer
}

func NewFrameWatcher(dir, pattern string, uploader FrameUploader) (*FrameWatcher, error) {
	if pattern == "" {
		pattern = "**/*.{png,jpg,jpeg}"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid frame pattern %q", pattern)
	}
	return &FrameWatcher{
		dir:      dir,
		pattern:  pattern,
		settle:   defaultSettle,
		uploader: uploader,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// SetSettle changes how long a file must stay unchanged before upload.
func (w *FrameWatcher) SetSettle(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settle = d
}

func (w *FrameWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		select {
		case <-w.done:
		default:
			return nil
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(watcher, w.dir); err != nil {
		watcher.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	lifecycle.Go(runCtx, func(runCtx context.Context) error {
		defer close(done)
		defer watcher.Close()
		return w.loop(runCtx, ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		log.Printf("[Capture] Frame watcher failed: %v", err)
	}))

	log.Printf("[Capture] Watching %s for %s", w.dir, w.pattern)
	return nil
}

func (w *FrameWatcher) loop(runCtx, uploadCtx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-runCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(uploadCtx, watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Printf("[Capture] fsnotify error: %v", err)
		}
	}
}

func (w *FrameWatcher) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addRecursive(watcher, event.Name); err != nil {
				log.Printf("[Capture] Failed to watch %s: %v", event.Name, err)
			}
		}
		return
	}

	if !w.Matches(event.Name) {
		return
	}
	w.schedule(ctx, event.Name)
}

// Matches reports whether path, taken relative to the watched directory,
// matches the frame pattern.
func (w *FrameWatcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *FrameWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		UploadFrame(ctx, w.uploader, path)
	})
}

// UploadFrame opens path and hands it to the uploader.
func UploadFrame(ctx context.Context, uploader FrameUploader, path string) (domain.FrameResult, bool) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[Capture] Failed to open frame %s: %v", path, err)
		return domain.FrameResult{}, false
	}
	defer f.Close()
	return uploader.ProcessFrame(ctx, filepath.Base(path), f)
}

func (w *FrameWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Printf("[Capture] Frame watcher stopped")
}

func (w *FrameWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil || w.cancel == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
