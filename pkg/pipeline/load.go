package pipeline

import (
	"context"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/source"
)

// Load reads a snapshot from src and checks it for duplicate ids. Errors
// that carry no code are reported as SOURCE_UNAVAILABLE.
func Load(ctx context.Context, src source.Source) (*roster.Snapshot, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source configured")
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "load %s", src.Name())
	}
	if snap == nil {
		snap = &roster.Snapshot{}
	}
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid records from %s", src.Name())
	}
	return snap, nil
}
