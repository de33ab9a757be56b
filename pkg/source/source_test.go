package source

import (
	"context"
	"testing"

	"github.com/matzehuels/peoplepack/pkg/roster"
)

func TestStatic(t *testing.T) {
	snap := &roster.Snapshot{People: []*roster.Person{{ID: "a"}}}
	s := Static{Data: snap}

	got, err := s.Snapshot(context.Background())
	if err != nil || got != snap {
		t.Errorf("Snapshot() = %v, %v", got, err)
	}
	if s.Name() != "static" {
		t.Errorf("Name() = %q", s.Name())
	}

	empty, err := Static{Label: "none"}.Snapshot(context.Background())
	if err != nil || empty == nil || len(empty.People) != 0 {
		t.Errorf("empty Static = %v, %v", empty, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Snapshot(ctx); err == nil {
		t.Error("cancelled context should fail")
	}
}
