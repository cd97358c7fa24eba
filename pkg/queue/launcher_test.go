package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ferryhq/ferry/pkg/types"
)

func app(id types.AppID, seed, max time.Duration) *types.App {
	return &types.App{ID: id, BackoffSeed: seed, BackoffMax: max}
}

func TestEnqueueTracksPending(t *testing.T) {
	l := NewLauncher()
	a := app("/a", time.Second, time.Minute)

	assert.Equal(t, 0, l.Pending("/a"))

	l.Enqueue(a)
	l.Enqueue(a)
	assert.Equal(t, 2, l.Pending("/a"))
}

func TestBackoffDoublesUpToMax(t *testing.T) {
	l := NewLauncher()
	a := app("/a", time.Second, 5*time.Second)

	l.Enqueue(a)
	assert.Equal(t, 2*time.Second, l.Delay("/a"))

	l.Enqueue(a)
	assert.Equal(t, 4*time.Second, l.Delay("/a"))

	l.Enqueue(a)
	assert.Equal(t, 5*time.Second, l.Delay("/a"))

	l.Enqueue(a)
	assert.Equal(t, 5*time.Second, l.Delay("/a"))
}

func TestBackoffDefaults(t *testing.T) {
	l := NewLauncher()
	a := app("/a", 0, 0)

	l.Enqueue(a)
	assert.Equal(t, 2*DefaultBackoffSeed, l.Delay("/a"))
}

func TestPurgeClearsPendingOnly(t *testing.T) {
	l := NewLauncher()
	a := app("/a", time.Second, time.Minute)

	l.Enqueue(a)
	l.Enqueue(a)

	l.Purge("/a")
	assert.Equal(t, 0, l.Pending("/a"))
	// Backoff state survives a purge; only ResetDelay clears it
	assert.Equal(t, 4*time.Second, l.Delay("/a"))
}

func TestPurgeUnknownApp(t *testing.T) {
	l := NewLauncher()
	l.Purge("/missing") // must not panic
	assert.Equal(t, 0, l.Pending("/missing"))
}

func TestResetDelay(t *testing.T) {
	l := NewLauncher()
	a := app("/a", time.Second, time.Minute)

	l.Enqueue(a)
	l.Enqueue(a)
	assert.Equal(t, 4*time.Second, l.Delay("/a"))

	l.ResetDelay(a)
	assert.Equal(t, time.Second, l.Delay("/a"))
}

func TestResetDelayUnknownApp(t *testing.T) {
	l := NewLauncher()
	l.ResetDelay(app("/missing", time.Second, time.Minute)) // must not panic
	assert.Equal(t, time.Duration(0), l.Delay("/missing"))
}

func TestForget(t *testing.T) {
	l := NewLauncher()
	a := app("/a", time.Second, time.Minute)

	l.Enqueue(a)
	l.Forget("/a")

	assert.Equal(t, 0, l.Pending("/a"))
	assert.Equal(t, time.Duration(0), l.Delay("/a"))
}
