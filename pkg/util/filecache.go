package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache serves snapshot files through read-only memory maps.
//
// Entries are revalidated against the file's size and modification time on
// every Get, so a snapshot rewritten by the host is remapped on next access.
// Safe for concurrent use.
type FileCache interface {
	// Get returns the mapped file, loading or remapping it as needed.
	Get(path string) (*MappedFile, error)

	// Invalidate drops path from the cache and releases its mapping.
	Invalidate(path string) error

	// Size returns the number of cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close releases every mapping.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles caps the number of cached files. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps the total mapped size (virtual memory). 0 means unlimited.
	MaxMemoryMB int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suited to a directory of page snapshots.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    1000,
		MaxMemoryMB: 512,
	}
}

// MappedFile is one cached file.
type MappedFile struct {
	Path string

	// Data is the mapped region. Nil for empty files. Must not be written to
	// and must not be retained past Invalidate or Close.
	Data mmap.MMap

	Size    int64
	ModTime time.Time

	// mapped is false when Data was read into memory after mmap failed.
	mapped bool
	file   *os.File
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64   `json:"filesLoaded"`
	FilesCached   int     `json:"filesCached"`
	CacheHits     int64   `json:"cacheHits"`
	CacheMisses   int64   `json:"cacheMisses"`
	Reloads       int64   `json:"reloads"`
	MmapFailures  int64   `json:"mmapFailures"`
	TotalMappedMB float64 `json:"totalMappedMB"`
}

// ErrCacheFull is returned when loading a file would exceed a cache limit.
var ErrCacheFull = errors.New("file cache limit reached")

// NewFileCache creates a FileCache. If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCache{
		config: *config,
		logger: logger,
		files:  make(map[string]*MappedFile),
	}
}

type fileCache struct {
	config FileCacheConfig
	logger *slog.Logger

	mu    sync.Mutex
	files map[string]*MappedFile
	stats FileCacheStats
}

func (fc *fileCache) Get(path string) (*MappedFile, error) {
	stat, err := os.Stat(path)
	if err != nil {
		fc.mu.Lock()
		fc.stats.CacheMisses++
		fc.mu.Unlock()
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.files[path]; ok {
		if mf.Size == stat.Size() && mf.ModTime.Equal(stat.ModTime()) {
			fc.stats.CacheHits++
			return mf, nil
		}
		fc.logger.Debug("snapshot changed on disk, remapping", "path", path)
		if err := fc.releaseLocked(path, mf); err != nil {
			fc.logger.Warn("failed to release stale mapping", "path", path, "error", err)
		}
		fc.stats.Reloads++
	}
	fc.stats.CacheMisses++

	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err := fc.load(path)
	if err != nil {
		return nil, err
	}
	fc.files[path] = mf
	fc.stats.FilesLoaded++
	return mf, nil
}

func (fc *fileCache) checkLimitsLocked(newSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return fmt.Errorf("%w: %d files (limit: %d)", ErrCacheFull, len(fc.files), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 {
		after := fc.mappedMBLocked() + float64(newSize)/(1024*1024)
		if after >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("%w: %.2f MB after load (limit: %d MB)", ErrCacheFull, after, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// load maps path read-only, falling back to a plain read when mmap fails.
func (fc *fileCache) load(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	mf := &MappedFile{Path: path, Size: stat.Size(), ModTime: stat.ModTime()}
	if stat.Size() == 0 {
		file.Close()
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback", "file", path, "size", stat.Size(), "error", err)
		fc.stats.MmapFailures++
		file.Close()

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w", path, err, readErr)
		}
		mf.Data = mmap.MMap(raw)
		mf.Size = int64(len(raw))
		return mf, nil
	}

	mf.Data = data
	mf.mapped = true
	mf.file = file
	return mf, nil
}

func (fc *fileCache) Invalidate(path string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.files[path]
	if !ok {
		return nil
	}
	return fc.releaseLocked(path, mf)
}

func (fc *fileCache) releaseLocked(path string, mf *MappedFile) error {
	delete(fc.files, path)

	var errs []error
	if mf.mapped && mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", path, err))
		}
	}
	if mf.file != nil {
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", path, err))
		}
	}
	mf.Data = nil
	return errors.Join(errs...)
}

func (fc *fileCache) Size() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.files)
}

func (fc *fileCache) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	stats := fc.stats
	stats.FilesCached = len(fc.files)
	stats.TotalMappedMB = fc.mappedMBLocked()
	return stats
}

func (fc *fileCache) mappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.files {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := fc.releaseLocked(path, mf); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"reloads", fc.stats.Reloads)

	return errors.Join(errs...)
}
