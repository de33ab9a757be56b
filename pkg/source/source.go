// Package source supplies roster snapshots to the render pipeline.
//
// The records themselves live in an external store; a [Source] only ever
// returns a point-in-time copy. Implementations:
//
//   - [file]: a YAML, JSON or TOML roster file, with change notifications
//   - [mongo]: the document-store collections, loaded concurrently
//   - [Static]: a fixed in-memory snapshot, for tests and embedding
//
// [file]: github.com/matzehuels/peoplepack/pkg/source/file
// [mongo]: github.com/matzehuels/peoplepack/pkg/source/mongo
package source

import (
	"context"

	"github.com/matzehuels/peoplepack/pkg/roster"
)

// Source loads the current records.
type Source interface {
	// Snapshot returns a fresh copy of the records. Callers may keep the
	// result; later calls never mutate it.
	Snapshot(ctx context.Context) (*roster.Snapshot, error)

	// Name identifies the source in logs and cache keys.
	Name() string
}

// Static serves a fixed snapshot.
type Static struct {
	Label string
	Data  *roster.Snapshot
}

// Snapshot returns the fixed snapshot, or an empty one when unset.
func (s Static) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Data == nil {
		return &roster.Snapshot{}, nil
	}
	return s.Data, nil
}

// Name returns the label, or "static".
func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

var _ Source = Static{}
