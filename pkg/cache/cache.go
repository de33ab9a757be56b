// Package cache provides key-value caching for roster snapshots, computed
// scenes and rendered artifacts.
//
// Every stage of the render pipeline is a pure function of its inputs, so
// results are cached under a key derived from a hash of those inputs:
//
//	snapshot (records) -> scene (layout) -> artifact (SVG, PNG, PDF, JSON)
//
// # Backends
//
//   - [FileCache]: entries stored as files under a directory, for the CLI
//   - [RedisCache]: entries stored in Redis, for a shared HTTP host
//   - [NullCache]: stores nothing
//
// Entries of the file backend are grouped by [Stage], so one stage can be
// listed or cleared without touching the others.
//
// # Keys
//
// A [Keyer] derives keys. [DefaultKeyer] hashes its options so that any
// change of size, weighting or styling yields a fresh key. [ScopedKeyer]
// prefixes keys for isolation between tenants.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. The bool reports whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts identifies the source a snapshot was loaded from.
type SnapshotKeyOpts struct {
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// SceneKeyOpts holds every input of a layout besides the records.
type SceneKeyOpts struct {
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Margin      float64   `json:"margin"`
	Padding     []float64 `json:"padding,omitempty"`
	WeightBy    string    `json:"weight_by"`
	CatchAll    string    `json:"catch_all,omitempty"`
	SubCatchAll string    `json:"sub_catch_all,omitempty"`
	Marker      string    `json:"marker,omitempty"`
	Measurer    string    `json:"measurer,omitempty"`
}

// ArtifactKeyOpts holds the rendering inputs of an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style"`
	Interactive bool    `json:"interactive,omitempty"`
	Title       string  `json:"title,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// SnapshotKey keys the records loaded from source (a path or URI).
	SnapshotKey(source string, opts SnapshotKeyOpts) string

	// SceneKey keys a layout of the snapshot with the given content hash.
	SceneKey(snapshotHash string, opts SceneKeyOpts) string

	// ArtifactKey keys a rendering of the scene with the given content hash.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SnapshotKey returns "snapshot:<hash>".
func (DefaultKeyer) SnapshotKey(source string, opts SnapshotKeyOpts) string {
	return stageKey(StageSnapshot, source, opts)
}

// SceneKey returns "scene:<hash>".
func (DefaultKeyer) SceneKey(snapshotHash string, opts SceneKeyOpts) string {
	return stageKey(StageScene, snapshotHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return stageKey(StageArtifact, sceneHash, opts)
}

var _ Keyer = DefaultKeyer{}

// NullCache stores nothing, so every pipeline stage recomputes. It backs
// --no-cache and runners built without a cache.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
