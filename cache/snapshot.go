package cache

import (
	"encoding/json"
	"fieldops-client/utils/logger"
	"os"
	"sync"
	"time"
)

// SnapshotCache is the device-local last-known-good store. Values are kept
// as JSON so readers get their own copy, each entry carries its capture
// timestamp, and writes are last-writer-wins. The whole store is mirrored to
// a snapshot file so cached values survive a restart; persistence is best
// effort and never fails a write.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]entry
	path    string
	now     func() time.Time
	logger  logger.Logger
}

type entry struct {
	Value      json.RawMessage `json:"value"`
	CapturedAt time.Time       `json:"capturedAt"`
}

// NewSnapshotCache creates the cache and loads any existing snapshot file.
// path may be empty for a purely in-memory cache (tests). now is injected so
// capture timestamps are controllable.
func NewSnapshotCache(path string, now func() time.Time, log logger.Logger) *SnapshotCache {
	if now == nil {
		now = time.Now
	}

	c := &SnapshotCache{
		entries: make(map[string]entry),
		path:    path,
		now:     now,
		logger:  log,
	}
	c.load()
	return c
}

// Set stores a value under key, stamped with capturedAt. A zero capturedAt
// uses the injected clock.
func (c *SnapshotCache) Set(key string, value interface{}, capturedAt time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if capturedAt.IsZero() {
		capturedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{Value: raw, CapturedAt: capturedAt}
	c.persist()
	return nil
}

// Get reads the entry under key into out and returns its capture timestamp.
// The second return is false when the key is absent.
func (c *SnapshotCache) Get(key string, out interface{}) (time.Time, bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return time.Time{}, false, nil
	}

	if out != nil {
		if err := json.Unmarshal(e.Value, out); err != nil {
			return time.Time{}, false, err
		}
	}
	return e.CapturedAt, true, nil
}

// Delete removes one entry.
func (c *SnapshotCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.persist()
}

// Clear drops every entry and the snapshot file content.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.persist()
}

// load reads the snapshot file, ignoring a missing or unreadable file.
func (c *SnapshotCache) load() {
	if c.path == "" {
		return
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) && c.logger != nil {
			c.logger.Warnf("Failed to read snapshot file %s: %v", c.path, err)
		}
		return
	}

	entries := make(map[string]entry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		if c.logger != nil {
			c.logger.Warnf("Snapshot file %s is corrupt, starting empty: %v", c.path, err)
		}
		return
	}

	c.entries = entries
}

// persist writes the store to the snapshot file. Caller holds the lock.
func (c *SnapshotCache) persist() {
	if c.path == "" {
		return
	}

	raw, err := json.Marshal(c.entries)
	if err != nil {
		if c.logger != nil {
			c.logger.Warnf("Failed to encode snapshots: %v", err)
		}
		return
	}

	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		if c.logger != nil {
			c.logger.Warnf("Failed to write snapshot file %s: %v", c.path, err)
		}
	}
}
