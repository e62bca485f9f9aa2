package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-job-harvester/internal/logger"
)

// SeenStore remembers detail URLs enriched by earlier runs.
type SeenStore interface {
	IsSeen(ctx context.Context, url string) (bool, error)
	Add(ctx context.Context, urls []string) error
}

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// JobCache is a SeenStore backed by a JSON file. Entries older than ttl are
// dropped on load.
type JobCache struct {
	mu       sync.Mutex
	filePath string
	ttl      time.Duration
	seen     map[string]int64
	log      logger.Logger
	now      func() time.Time
}

// NewJobCache creates or loads seen_jobs.json under cacheDir.
func NewJobCache(cacheDir string, ttl time.Duration, log logger.Logger) (*JobCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	cache := &JobCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		ttl:      ttl,
		seen:     make(map[string]int64),
		log:      log,
		now:      time.Now,
	}
	if err := cache.load(); err != nil {
		return nil, err
	}
	return cache, nil
}

// IsSeen checks if a URL has already been processed
func (jc *JobCache) IsSeen(_ context.Context, url string) (bool, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	_, exists := jc.seen[url]
	return exists, nil
}

func (jc *JobCache) Add(_ context.Context, urls []string) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now().UnixMilli()
	changed := false
	for _, url := range urls {
		if _, exists := jc.seen[url]; !exists {
			jc.seen[url] = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return jc.save()
}

// load reads the cache from disk into the in-memory map
func (jc *JobCache) load() error {
	data, err := os.ReadFile(jc.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read seen jobs: %w", err)
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		//a corrupt cache only costs re-enrichment
		jc.log.Warn("⚠️ Ignoring unreadable seen jobs cache", logger.String("path", jc.filePath), logger.Error(err))
		return nil
	}

	cutoff := jc.now().Add(-jc.ttl).UnixMilli()
	for _, e := range entries {
		if jc.ttl <= 0 || e.Timestamp > cutoff {
			jc.seen[e.URL] = e.Timestamp
		}
	}
	jc.log.Info("📋 Loaded previously seen jobs",
		logger.Int("loaded", len(jc.seen)),
		logger.Int("expired", len(entries)-len(jc.seen)))
	return nil
}

// save writes the current cache to disk
func (jc *JobCache) save() error {
	entries := make([]seenEntry, 0, len(jc.seen))
	for url, ts := range jc.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen jobs: %w", err)
	}
	if err := os.WriteFile(jc.filePath, data, 0644); err != nil {
		return fmt.Errorf("write seen jobs: %w", err)
	}
	jc.log.Debug("💾 Saved seen jobs", logger.Int("count", len(entries)))
	return nil
}
