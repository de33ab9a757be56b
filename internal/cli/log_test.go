package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		wantOut bool
	}{
		{"verbose shows layout debug", log.DebugLevel, true},
		{"default hides layout debug", log.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(&buf, tt.level).Debug("recomputing scene", "width", 1200)
			if got := buf.Len() > 0; got != tt.wantOut {
				t.Errorf("wrote output = %v, want %v", got, tt.wantOut)
			}
		})
	}
}

func TestProgressSummary(t *testing.T) {
	team := &roster.Snapshot{
		People:     []*roster.Person{{ID: "1"}, {ID: "2"}, {ID: "3"}},
		Categories: []roster.Category{{Name: "Eng"}, {Name: "Ops"}},
	}
	packed := &scene.Scene{
		Circles:  []scene.Circle{{ID: "/"}, {ID: "/Eng"}, {ID: "/Ops"}},
		Overflow: []string{"/Eng"},
	}
	tests := []struct {
		name     string
		snap     *roster.Snapshot
		sc       *scene.Scene
		verb     string
		want     []string
		overflow bool
	}{
		{"records only", team, nil, "Exported", []string{"Exported 3 people across 2 categories", "people=3"}, false},
		{"with scene", team, packed, "Packed", []string{"Packed 3 people in 3 circles", "circles=3"}, true},
		{"single person", &roster.Snapshot{People: []*roster.Person{{ID: "1"}}}, nil, "Exported", []string{"Exported 1 person ("}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := newProgress(newLogger(&buf, log.InfoLevel))
			p.snapshot(tt.snap)
			p.scene(tt.sc)
			p.done(tt.verb)

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if got := strings.Contains(out, "overflow"); got != tt.overflow {
				t.Errorf("overflow warning = %v, want %v:\n%s", got, tt.overflow, out)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := newLogger(&buf, log.InfoLevel).With("request_id", "req-7")

	r := httptest.NewRequest("GET", "/api/people/1", nil)
	ctx := withLogger(r.Context(), reqLogger)
	loggerFromContext(ctx).Error("render index", "err", "boom")

	if out := buf.String(); !strings.Contains(out, "request_id=req-7") || !strings.Contains(out, "render index") {
		t.Errorf("request logger output = %q", out)
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a context without a logger should fall back to log.Default()")
	}
}
