package queue

import (
	"sync"
	"time"

	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/types"
)

const (
	// DefaultBackoffSeed is used when an app definition carries no seed
	DefaultBackoffSeed = time.Second
	// DefaultBackoffMax caps the delay when an app carries no bound
	DefaultBackoffMax = time.Hour
)

// entry tracks pending launch attempts and the backoff delay for one app
type entry struct {
	pending  int
	delay    time.Duration
	deadline time.Time // launches before this instant are held back
}

// Launcher holds pending launch attempts with a per-application backoff
// delay. Each failed launch doubles the delay up to the app's bound;
// ResetDelay drops it back to the seed so a re-created application starts
// with a clean slate.
type Launcher struct {
	mu      sync.Mutex
	entries map[types.AppID]*entry
}

// NewLauncher creates an empty launch queue
func NewLauncher() *Launcher {
	return &Launcher{
		entries: make(map[types.AppID]*entry),
	}
}

// Enqueue registers a launch attempt for the app and advances its backoff
func (l *Launcher) Enqueue(app *types.App) {
	seed, max := backoffBounds(app)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[app.ID]
	if !ok {
		e = &entry{delay: seed}
		l.entries[app.ID] = e
	}
	e.pending++
	e.deadline = time.Now().Add(e.delay)

	e.delay *= 2
	if e.delay > max {
		e.delay = max
	}
}

// Purge drops all pending launch attempts for the app. One-way; safe to
// call for an unknown id.
func (l *Launcher) Purge(id types.AppID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[id]; ok {
		e.pending = 0
	}
	log.WithAppID(id).Debug().Msg("purged pending launches")
}

// ResetDelay resets the app's backoff delay to its initial value and clears
// any deadline. One-way.
func (l *Launcher) ResetDelay(app *types.App) {
	seed, _ := backoffBounds(app)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[app.ID]
	if !ok {
		return
	}
	e.delay = seed
	e.deadline = time.Time{}
	log.WithAppID(app.ID).Debug().Dur("delay", seed).Msg("reset launch backoff")
}

// Forget removes the app's entry entirely
func (l *Launcher) Forget(id types.AppID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
}

// Pending returns the number of pending launch attempts for the app
func (l *Launcher) Pending(id types.AppID) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[id]; ok {
		return e.pending
	}
	return 0
}

// Delay returns the app's current backoff delay (zero for unknown apps)
func (l *Launcher) Delay(id types.AppID) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[id]; ok {
		return e.delay
	}
	return 0
}

func backoffBounds(app *types.App) (seed, max time.Duration) {
	seed = app.BackoffSeed
	if seed <= 0 {
		seed = DefaultBackoffSeed
	}
	max = app.BackoffMax
	if max <= 0 {
		max = DefaultBackoffMax
	}
	return seed, max
}
