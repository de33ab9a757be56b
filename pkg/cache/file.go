package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// otherStage holds entries whose key carries no known stage.
const otherStage Stage = "other"

// FileCache stores each entry as a JSON file under dir/<stage>/, spread
// over subdirectories named by the first two hex digits of the key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache returns a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// fileEntry is the on-disk form of an entry. The key is kept so entries
// can be listed by stage.
type fileEntry struct {
	Key       string    `json:"key"`
	Stage     Stage     `json:"stage"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry for key. Corrupt and expired entries are removed
// and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	e, err := readEntry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e == nil || e.Key != key || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry for key. A ttl of zero never expires.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	stage, _ := StageOf(key)
	e := fileEntry{Key: key, Stage: stage, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Usage is the number and total size of the live entries of one stage.
type Usage struct {
	Entries int
	Bytes   int64
}

// Usage reports live entries per stage. Expired entries are not counted.
func (c *FileCache) Usage() (map[Stage]Usage, error) {
	out := make(map[Stage]Usage)
	now := c.now()
	err := c.walk("", func(stage Stage, path string, info fs.FileInfo) {
		if e, err := readEntry(path); err == nil && e != nil && !e.expired(now) {
			u := out[stage]
			u.Entries++
			u.Bytes += info.Size()
			out[stage] = u
		}
	})
	return out, err
}

// Clear removes every entry of stage, or of all stages when stage is
// empty, and returns how many files were removed.
func (c *FileCache) Clear(stage Stage) (int, error) {
	count := 0
	err := c.walk(stage, func(_ Stage, path string, _ fs.FileInfo) {
		if os.Remove(path) == nil {
			count++
		}
	})
	if err != nil {
		return count, err
	}
	c.pruneDirs()
	return count, nil
}

// walk calls fn for every entry file, restricted to one stage if given.
func (c *FileCache) walk(only Stage, fn func(Stage, string, fs.FileInfo)) error {
	roots, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, r := range roots {
		stage := Stage(r.Name())
		if !r.IsDir() || (only != "" && stage != only) {
			continue
		}
		err := filepath.WalkDir(filepath.Join(c.dir, r.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
				return nil
			}
			if info, err := d.Info(); err == nil {
				fn(stage, path, info)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// pruneDirs removes emptied stage and shard directories.
func (c *FileCache) pruneDirs() {
	stages, _ := os.ReadDir(c.dir)
	for _, s := range stages {
		if !s.IsDir() {
			continue
		}
		root := filepath.Join(c.dir, s.Name())
		shards, _ := os.ReadDir(root)
		for _, sh := range shards {
			_ = os.Remove(filepath.Join(root, sh.Name()))
		}
		_ = os.Remove(root)
	}
}

// path maps key to dir/<stage>/<hh>/<rest of hash>.json.
func (c *FileCache) path(key string) string {
	stage, ok := StageOf(key)
	if !ok {
		stage = otherStage
	}
	h := Hash([]byte(key))
	return filepath.Join(c.dir, string(stage), h[:2], h[2:]+".json")
}

// readEntry decodes an entry file. A corrupt file yields a nil entry.
func readEntry(path string) (*fileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if json.Unmarshal(raw, &e) != nil {
		return nil, nil
	}
	return &e, nil
}

var _ Cache = (*FileCache)(nil)
