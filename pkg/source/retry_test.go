package source

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

func TestRetry(t *testing.T) {
	transient := &RetryableError{Err: stderrors.New("connection refused")}
	permanent := stderrors.New("bad document")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 3, 1, false},
		{"transient then success", 2, transient, 3, 3, false},
		{"transient exhausted", 5, transient, 3, 3, true},
		{"permanent fails fast", 5, permanent, 3, 1, true},
		{"unavailable is retried", 1, errors.New(errors.ErrCodeSourceUnavailable, "down"), 2, 2, false},
		{"zero attempts runs once", 0, nil, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: stderrors.New("timeout")}
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type flakySource struct {
	fails int
	calls int
}

func (f *flakySource) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, errors.New(errors.ErrCodeSourceUnavailable, "store down")
	}
	return &roster.Snapshot{People: []*roster.Person{{ID: "a"}}}, nil
}

func (f *flakySource) Name() string { return "flaky" }

func TestWithRetry(t *testing.T) {
	inner := &flakySource{fails: 1}
	src := WithRetry(inner, 3, time.Millisecond)

	snap, err := src.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.People) != 1 || inner.calls != 2 {
		t.Errorf("people=%d calls=%d", len(snap.People), inner.calls)
	}
	if src.Name() != "flaky" {
		t.Errorf("Name() = %q", src.Name())
	}
}
