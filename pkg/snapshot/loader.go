package snapshot

import (
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/gnana997/stylelens/pkg/util"
)

// Loaded pairs a snapshot with the file it came from.
type Loaded struct {
	Path     string
	Snapshot *Snapshot
}

// Loader reads snapshots through a FileCache.
//
// A mapping is only valid until the cache remaps or drops it, so decoding a
// path and invalidating it are serialized per path, and Close waits for
// every in-flight Load.
type Loader struct {
	cache  util.FileCache
	logger *slog.Logger

	closeMu sync.RWMutex
	paths   sync.Map // path -> *sync.Mutex
}

// NewLoader creates a Loader. A nil cache gets a default one.
func NewLoader(cache util.FileCache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cache == nil {
		cfg := util.DefaultFileCacheConfig()
		cfg.Logger = logger
		cache = util.NewFileCache(cfg)
	}
	return &Loader{cache: cache, logger: logger}
}

// Load reads and decodes one snapshot file.
func (l *Loader) Load(path string) (*Snapshot, error) {
	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	mu := l.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	mf, err := l.cache.Get(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	s, err := Decode(mf.Data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	l.logger.Debug("snapshot loaded", "path", path, "samples", len(s.Samples))
	return s, nil
}

// Invalidate forgets any cached bytes for path.
func (l *Loader) Invalidate(path string) error {
	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	mu := l.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	return l.cache.Invalidate(path)
}

func (l *Loader) pathLock(path string) *sync.Mutex {
	mu, _ := l.paths.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// LoadAll loads paths concurrently. Results keep the order of paths; files
// that fail are left out and their errors combined.
func (l *Loader) LoadAll(paths []string) ([]Loaded, error) {
	results := make([]*Snapshot, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range util.PoolSize(len(paths), 0) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = l.Load(paths[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []Loaded
	var err error
	for i, s := range results {
		if errs[i] != nil {
			err = multierr.Append(err, errs[i])
			continue
		}
		out = append(out, Loaded{Path: paths[i], Snapshot: s})
	}
	return out, err
}

// Stats returns the underlying cache metrics.
func (l *Loader) Stats() util.FileCacheStats {
	return l.cache.Stats()
}

// Close releases the cache.
func (l *Loader) Close() error {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	return l.cache.Close()
}
