// Package watch re-validates a discovery model file whenever it changes on
// disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andreagrandi/conformance-wizard/internal/conformance"
	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounceInterval is the time to wait after the last change before
// reloading the file.
const DefaultDebounceInterval = 250 * time.Millisecond

// Session is the part of the wizard store a watcher drives.
type Session interface {
	SetDiscoveryModel(editorText string) ([]conformance.Problem, error)
	ValidateDiscoveryConfig(ctx context.Context) wizard.DiscoveryResult
	Step() wizard.Step
}

// Result reports one reload of the watched file.
type Result struct {
	// ParseProblems is set when the file is not valid JSON.
	ParseProblems []conformance.Problem
	// Validation is set when the model was sent to the suite.
	Validation *wizard.DiscoveryResult
	// Err is set when the file could not be read or the session is closed.
	Err error
}

// Option customises a DiscoveryWatcher.
type Option func(*DiscoveryWatcher)

// WithDebounce overrides DefaultDebounceInterval.
func WithDebounce(interval time.Duration) Option {
	return func(w *DiscoveryWatcher) {
		if interval > 0 {
			w.debounce = interval
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(w *DiscoveryWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// DiscoveryWatcher feeds a discovery model file into a wizard session each
// time the file is written.
type DiscoveryWatcher struct {
	mu sync.Mutex

	path     string
	session  Session
	onResult func(Result)
	debounce time.Duration
	logger   *logrus.Entry

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool
	ctx       context.Context

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewDiscoveryWatcher creates a watcher for path. onResult is called after
// every reload, from the watcher goroutine.
func NewDiscoveryWatcher(path string, session Session, onResult func(Result), opts ...Option) (*DiscoveryWatcher, error) {
	if session == nil {
		return nil, errors.New("watch session is required")
	}

	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve discovery file %q: %w", path, err)
	}

	if onResult == nil {
		onResult = func(Result) {}
	}

	w := &DiscoveryWatcher{
		path:     absolutePath,
		session:  session,
		onResult: onResult,
		debounce: DefaultDebounceInterval,
		logger:   logging.Discard(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *DiscoveryWatcher) Path() string {
	return w.path
}

// Start loads the file once and then watches its directory for changes
// until Stop is called or ctx is done.
func (w *DiscoveryWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	// Editors often replace the file, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory %q: %w", filepath.Dir(w.path), err)
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.ctx = ctx
	w.running = true

	eventsCh := watcher.Events
	errorsCh := watcher.Errors
	stopCh := w.stopCh

	go func() {
		w.deliver(w.Reload(ctx))
		w.processEvents(ctx, stopCh, eventsCh, errorsCh)
	}()

	w.logger.WithField("path", w.path).Info("watching discovery model")

	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *DiscoveryWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.running = false
	close(w.stopCh)

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
}

// Reload reads the file and applies it to the session. The model is sent to
// the suite only when the session is waiting on validation, so rewriting an
// accepted model unchanged costs no remote call.
func (w *DiscoveryWatcher) Reload(ctx context.Context) Result {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return Result{Err: fmt.Errorf("read discovery file %q: %w", w.path, err)}
	}

	problems, err := w.session.SetDiscoveryModel(string(data))
	if err != nil {
		return Result{Err: err}
	}

	if len(problems) > 0 {
		return Result{ParseProblems: problems}
	}

	if w.session.Step() != wizard.StepTwo {
		return Result{}
	}

	validation := w.session.ValidateDiscoveryConfig(ctx)

	return Result{Validation: &validation}
}

func (w *DiscoveryWatcher) processEvents(ctx context.Context, stopCh <-chan struct{}, eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-stopCh:
			return

		case <-ctx.Done():
			w.Stop()
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("file watcher error")
		}
	}
}

func (w *DiscoveryWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.logger.WithField("op", event.Op.String()).Debug("discovery model changed")

	w.reloadDebounced()
}

func (w *DiscoveryWatcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		ctx := w.ctx
		w.mu.Unlock()

		if !running {
			return
		}

		w.deliver(w.Reload(ctx))
	})
}

func (w *DiscoveryWatcher) deliver(result Result) {
	if result.Err != nil {
		w.logger.WithError(result.Err).Warn("discovery reload failed")
	}

	w.onResult(result)
}
