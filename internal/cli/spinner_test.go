package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is written by the spinner goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSpinnerFollowsLayoutStages(t *testing.T) {
	var out lockedBuffer
	s := newSpinnerWithContext(context.Background(), "Loading records...")
	s.out = &out
	s.Start()

	waitFor(t, func() bool { return strings.Contains(out.String(), "Loading records...") })
	s.SetMessage("Packing 3 people...")
	waitFor(t, func() bool { return strings.Contains(out.String(), "Packing 3 people...") })
	s.Stop()

	if s.Cancelled() {
		t.Error("a stopped spinner is not cancelled")
	}
	if got := out.String(); !strings.HasSuffix(got, "\r") {
		t.Errorf("Stop should clear the line, got %q", got[max(len(got)-20, 0):])
	}
}

func TestSpinnerSetMessagePadsShorterText(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Packing circles...")
	s.SetMessage("Done")
	if len(s.message) != len("Packing circles...") || !strings.HasPrefix(s.message, "Done ") {
		t.Errorf("message = %q", s.message)
	}
}

func TestSpinnerCancelledWithCommand(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"interrupt", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()
			s := newSpinnerWithContext(ctx, "Rendering...")
			s.out = &lockedBuffer{}
			s.Start()
			waitFor(t, s.Cancelled)
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Rendering...")
	s.out = &lockedBuffer{}
	s.Stop()
	s.Start()
	s.Stop()
	s.Stop()
}
