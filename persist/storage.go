package persist

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Storage is the external key-value backend a persistence controller
// writes through to. Every operation may fail; callers are expected to
// tolerate that (spec.md §6/§7 — storage errors are swallowed, not
// propagated).
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is the always-available default: a process-local map.
// It never fails, which makes it the natural fallback when no durable
// backend is configured (the browser-storage-with-in-memory-fallback
// behavior spec.md §6 describes, minus the browser).
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage persists each key as its own JSON file under dir, named
// "<key>.json". It watches dir with fsnotify so that an external process
// rewriting a persisted file is noticed and logged rather than silently
// shadowed by the next debounced write — the same "watch, log, keep
// going" posture the teacher's dev-server file watcher uses.
type FileStorage struct {
	dir     string
	log     *zap.Logger
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stop    chan struct{}
}

// FileStorageOption configures a FileStorage.
type FileStorageOption func(*FileStorage)

// WithLogger overrides the zap.Logger used for watch notifications.
// Defaults to zap.NewNop() so constructing a FileStorage never panics
// in a test without an explicit logger.
func WithLogger(l *zap.Logger) FileStorageOption {
	return func(f *FileStorage) { f.log = l }
}

// NewFileStorage creates dir if needed and starts watching it for
// external changes. The watcher runs until Close is called; a failure to
// start the watcher is logged and otherwise ignored, since file storage
// remains usable without it.
func NewFileStorage(dir string, opts ...FileStorageOption) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fs := &FileStorage{dir: dir, log: zap.NewNop(), stop: make(chan struct{})}
	for _, opt := range opts {
		opt(fs)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fs.log.Warn("persist: file watcher unavailable", zap.Error(err))
		return fs, nil
	}
	if err := watcher.Add(dir); err != nil {
		fs.log.Warn("persist: could not watch directory", zap.String("dir", dir), zap.Error(err))
		watcher.Close()
		return fs, nil
	}
	fs.watcher = watcher
	go fs.watch()
	return fs, nil
}

func (f *FileStorage) watch() {
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				f.log.Info("persist: external write to persisted file detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn("persist: watcher error", zap.Error(err))
		case <-f.stop:
			return
		}
	}
}

// Close stops the directory watcher.
func (f *FileStorage) Close() error {
	close(f.stop)
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (f *FileStorage) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return os.WriteFile(f.path(key), []byte(value), 0o644)
}

func (f *FileStorage) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
