package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peoplepack/pkg/cache"
	"github.com/matzehuels/peoplepack/pkg/observability"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
	"github.com/matzehuels/peoplepack/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the HTTP host use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	snap, loadHit, err := r.LoadWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.People = len(snap.People)
	result.CacheInfo.LoadHit = loadHit
	if data, err := json.Marshal(snap); err == nil {
		result.SnapshotHash = cache.Hash(data)
	}

	r.Logger.Info("loaded records",
		"source", src.Name(),
		"people", len(snap.People),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	sc, layoutHit, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = sc
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Circles = len(sc.Circles)
	result.Stats.Badges = len(sc.Badges)
	result.Stats.Overflow = len(sc.Overflow)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"circles", len(sc.Circles),
		"badges", len(sc.Badges),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sc, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads a snapshot with caching and returns cache hit info.
// Set opts.Refresh to bypass the cache for sources that change between calls.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, src source.Source, opts Options) (snap *roster.Snapshot, hit bool, err error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	name := "<nil>"
	if src != nil {
		name = src.Name()
	}

	start := time.Now()
	hooks.OnLoadStart(ctx, name)
	defer func() {
		people := 0
		if snap != nil {
			people = len(snap.People)
		}
		hooks.OnLoadComplete(ctx, name, people, time.Since(start), err)
	}()

	cacheKey := r.Keyer.SnapshotKey(name, opts.SnapshotKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.get(ctx, cacheKey, cache.StageSnapshot); ok {
			var cached roster.Snapshot
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, true, nil // Cache hit
			}
		}
	}

	snap, err = Load(ctx, src)
	if err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		if data, err := json.Marshal(snap); err == nil {
			r.set(ctx, cacheKey, cache.StageSnapshot, data)
		}
	}
	return snap, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, src source.Source, opts Options) (*roster.Snapshot, error) {
	snap, _, err := r.LoadWithCacheInfo(ctx, src, opts)
	return snap, err
}

// LayoutWithCacheInfo computes a scene with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, snap *roster.Snapshot, opts Options) (sc *scene.Scene, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()

	people := 0
	if snap != nil {
		people = len(snap.People)
	}
	start := time.Now()
	hooks.OnLayoutStart(ctx, opts.Width, opts.Height, people)
	defer func() {
		var stats observability.LayoutStats
		if sc != nil {
			stats = observability.LayoutStats{
				Circles:    len(sc.Circles),
				Badges:     len(sc.Badges),
				Overflow:   len(sc.Overflow),
				Compressed: sc.Compressed,
			}
		}
		hooks.OnLayoutComplete(ctx, stats, time.Since(start), err)
	}()

	// Compute cache key
	snapData, err := json.Marshal(snap)
	if err != nil {
		return nil, false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	cacheKey := r.Keyer.SceneKey(cache.Hash(snapData), opts.SceneKeyOpts())

	// Try cache first
	if data, ok := r.get(ctx, cacheKey, cache.StageScene); ok {
		var cached scene.Scene
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	sc = ComputeScene(snap, opts)
	if n := len(sc.Overflow); n > 0 {
		opts.Logger.Warn("badges did not fit", "circles", n)
	}

	// Cache the result
	if data, err := json.Marshal(sc); err == nil {
		r.set(ctx, cacheKey, cache.StageScene, data)
	}

	return sc, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, snap *roster.Snapshot, opts Options) (*scene.Scene, error) {
	sc, _, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	return sc, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sc *scene.Scene, snap *roster.Snapshot, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	keyHash, err := r.artifactHash(sc, snap, opts)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.get(ctx, r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)), cache.StageArtifact)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := RenderScene(ctx, sc, snap, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		r.set(ctx, r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)), cache.StageArtifact, data)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, sc *scene.Scene, snap *roster.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, sc, snap, opts)
	return artifacts, err
}

// artifactHash identifies everything an artifact is drawn from: the scene,
// and the snapshot when person details or the hierarchy are rendered.
func (r *Runner) artifactHash(sc *scene.Scene, snap *roster.Snapshot, opts Options) (string, error) {
	var parts []byte
	if !opts.IsOrgChart() {
		data, err := json.Marshal(sc)
		if err != nil {
			return "", fmt.Errorf("serialize scene for cache key: %w", err)
		}
		parts = append(parts, data...)
	}
	if opts.IsOrgChart() || opts.Interactive {
		data, err := json.Marshal(snap)
		if err != nil {
			return "", fmt.Errorf("serialize snapshot for cache key: %w", err)
		}
		parts = append(parts, data...)
		rules, _ := json.Marshal(Rules(snap, opts))
		parts = append(parts, rules...)
	}
	return cache.Hash(parts), nil
}

func (r *Runner) get(ctx context.Context, key string, stage cache.Stage) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "stage", stage, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, string(stage))
	} else {
		observability.Cache().OnCacheMiss(ctx, string(stage))
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, key string, stage cache.Stage, data []byte) {
	if err := r.Cache.Set(ctx, key, data, stage.TTL()); err != nil {
		r.Logger.Debug("cache write failed", "stage", stage, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, string(stage), len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
