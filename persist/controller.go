package persist

import (
	"sync"
	"time"
)

// Controller owns the pause/resume/flush/purge lifecycle for one
// persistence key. Controllers are process-wide (spec.md §4.11/§5): an
// enhancer and a middleware configured with the same key share one, so
// pausing from the middleware also gates the enhancer's debounced write.
type Controller struct {
	mu      sync.Mutex
	key     string
	storage Storage
	paused  bool
	timer   *time.Timer
	flusher func()
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Controller{}
)

// GetController returns the process-wide Controller for key, creating it
// (with storage as its backend) on first use. Later calls for the same
// key ignore the storage argument and return the existing controller.
func GetController(key string, storage Storage) *Controller {
	registryMu.Lock()
	defer registryMu.Unlock()
	if c, ok := registry[key]; ok {
		return c
	}
	c := &Controller{key: key, storage: storage}
	registry[key] = c
	return c
}

// forgetController drops key from the registry. Unexported: production
// controllers live for the process lifetime, but tests need isolation
// between cases that reuse a key.
func forgetController(key string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, key)
}

// Pause suspends scheduled writes. A write already in flight via Flush
// still completes; only the debounce scheduling is gated.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume lets new writes be scheduled again.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// IsPaused reports the current pause state.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SetFlusher installs the function Flush calls to perform an immediate
// write. The enhancer installs this once it has a snapshot of the store
// to read from; a Flush before that is a no-op.
func (c *Controller) SetFlusher(fn func()) {
	c.mu.Lock()
	c.flusher = fn
	c.mu.Unlock()
}

// Schedule arms a trailing debounce of d, calling fn when it fires
// unless a later Schedule, Flush or Purge call cancels it first. While
// paused, Schedule arms nothing; Pause does not cancel a debounce that
// is already armed.
func (c *Controller) Schedule(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(d, fn)
}

// Flush cancels any pending debounce and writes immediately via the
// installed flusher.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	fn := c.flusher
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Purge cancels any pending debounce and removes the storage entry.
// Storage errors are swallowed per spec.md §7 (StorageError).
func (c *Controller) Purge() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	storage := c.storage
	key := c.key
	c.mu.Unlock()
	if storage != nil {
		_ = storage.RemoveItem(key)
	}
}
