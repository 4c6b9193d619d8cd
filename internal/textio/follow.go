package textio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textcore/internal/engine/patch"
	"github.com/dshills/textcore/internal/logging"
)

// DefaultDebounce is the quiet period before a changed file is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// ErrFollowerRunning is returned when Run is called twice.
var ErrFollowerRunning = errors.New("follower already running")

// Loader receives reloaded file contents. *buffer.TextBuffer satisfies it.
type Loader interface {
	LoadFromText(text string, trackChanges bool) (*patch.Patch, error)
}

// ReloadEvent reports one reload attempt.
type ReloadEvent struct {
	Path  string
	Patch *patch.Patch
	Err   error
}

// FollowerOption configures a Follower.
type FollowerOption func(*Follower)

// WithDebounce sets the quiet period between the last change and the reload.
func WithDebounce(d time.Duration) FollowerOption {
	return func(f *Follower) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithEncoding sets the charset used to read the file.
func WithEncoding(name string) FollowerOption {
	return func(f *Follower) {
		f.encoding = name
	}
}

// WithTrackChanges makes reloads record edits instead of resetting.
func WithTrackChanges(track bool) FollowerOption {
	return func(f *Follower) {
		f.track = track
	}
}

// WithFollowerLogger sets the logger.
func WithFollowerLogger(l *logging.Logger) FollowerOption {
	return func(f *Follower) {
		if l != nil {
			f.log = l
		}
	}
}

// WithOnReload registers a callback run after every reload attempt.
func WithOnReload(fn func(ReloadEvent)) FollowerOption {
	return func(f *Follower) {
		f.onReload = fn
	}
}

// Follower reloads a Loader whenever its file changes on disk.
//
// The containing directory is watched rather than the file itself, so
// editors that save by renaming a temporary file over the original are
// followed too.
type Follower struct {
	path     string
	target   Loader
	fsys     ReadFileFS
	encoding string
	track    bool
	delay    time.Duration
	log      *logging.Logger
	onReload func(ReloadEvent)

	mu      sync.Mutex
	running bool
}

// NewFollower creates a follower for path. Nothing is watched until Run.
func NewFollower(path string, target Loader, opts ...FollowerOption) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f := &Follower{
		path:   abs,
		target: target,
		fsys:   OS,
		delay:  DefaultDebounce,
		log:    logging.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.WithComponent("follow").WithField("path", abs)
	return f, nil
}

// Path returns the absolute path being followed.
func (f *Follower) Path() string {
	return f.path
}

// Reload reads the file now and loads it into the target.
func (f *Follower) Reload() (*patch.Patch, error) {
	text, err := ReadText(f.fsys, f.path, f.encoding)
	if err != nil {
		return nil, err
	}
	p, err := f.target.LoadFromText(text, f.track)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", f.path, err)
	}
	return p, nil
}

// Run watches the file until ctx is done. Bursts of changes closer
// together than the debounce delay cause a single reload. Run returns
// nil when ctx is cancelled.
func (f *Follower) Run(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return ErrFollowerRunning
	}
	f.running = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
	}()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", f.path, err)
	}
	f.log.Debug("following")

	timer := time.NewTimer(f.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			f.log.Debug("stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if f.relevant(ev) {
				timer.Reset(f.delay)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("watch error: %v", err)

		case <-timer.C:
			f.reload()
		}
	}
}

// relevant reports whether ev may have changed the followed file's content.
func (f *Follower) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != f.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

func (f *Follower) reload() {
	p, err := f.Reload()
	if err != nil {
		f.log.Warn("reload failed: %v", err)
	} else {
		f.log.Debug("reloaded with %d changes", p.ChangeCount())
	}
	if f.onReload != nil {
		f.onReload(ReloadEvent{Path: f.path, Patch: p, Err: err})
	}
}
