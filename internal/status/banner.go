// Package status holds the global error banner shown above the wizard.
package status

import (
	"sort"
	"sync"

	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/sirupsen/logrus"
)

// Listener is called with the banner errors after every change. An empty
// slice means the banner was cleared.
type Listener func(errs []error)

// Banner is the process-wide error banner of a wizard session.
type Banner struct {
	mu        sync.RWMutex
	errs      []error
	listeners map[int]Listener
	nextID    int
	logger    *logrus.Entry
}

// NewBanner creates an empty banner.
func NewBanner(logger *logrus.Entry) *Banner {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Banner{
		errs:      []error{},
		listeners: map[int]Listener{},
		logger:    logger,
	}
}

// SetErrors replaces the banner contents.
func (b *Banner) SetErrors(errs []error) {
	b.mu.Lock()
	b.errs = compact(errs)
	snapshot := append([]error{}, b.errs...)
	listeners := b.listenersLocked()
	b.mu.Unlock()

	b.logger.WithField("errors", len(snapshot)).Debug("banner errors set")
	notify(listeners, snapshot)
}

// ClearErrors empties the banner.
func (b *Banner) ClearErrors() {
	b.mu.Lock()
	b.errs = []error{}
	listeners := b.listenersLocked()
	b.mu.Unlock()

	b.logger.Debug("banner cleared")
	notify(listeners, []error{})
}

// Errors returns the current banner errors.
func (b *Banner) Errors() []error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]error{}, b.errs...)
}

// Messages returns the banner errors as strings.
func (b *Banner) Messages() []string {
	errs := b.Errors()

	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}

	return messages
}

// Empty reports whether the banner has nothing to show.
func (b *Banner) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.errs) == 0
}

// Subscribe registers a listener and returns a function that removes it.
func (b *Banner) Subscribe(listener Listener) (cancel func()) {
	if listener == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = listener
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

func (b *Banner) listenersLocked() []Listener {
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, b.listeners[id])
	}

	return listeners
}

func notify(listeners []Listener, errs []error) {
	for _, listener := range listeners {
		listener(append([]error{}, errs...))
	}
}

func compact(errs []error) []error {
	result := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}

	return result
}
