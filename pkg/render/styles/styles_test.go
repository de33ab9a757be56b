package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want Style
		ok   bool
	}{
		{"", Simple{}, true},
		{NameSimple, Simple{}, true},
		{NameOutline, Outline{}, true},
		{"handdrawn", nil, false},
	}
	for _, tt := range tests {
		got, ok := ByName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ByName(%q) = %v, %v", tt.name, got, ok)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Ada", 10, "Ada"},
		{"Bartholomew", 10, "Bartholom…"},
		{"  Zoë  ", 10, "Zoë"},
		{"Anything", 1, "…"},
		{"Keep", 0, "Keep"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestTagFill(t *testing.T) {
	if got := TagFill("Eng", "#123456"); got != "#123456" {
		t.Errorf("declared colour ignored: %s", got)
	}
	if TagFill("Eng", "") != TagFill("Eng", "not-a-colour") {
		t.Error("derived colour should be stable")
	}
	if !ValidColor(TagFill("Design", "")) {
		t.Error("derived colour should be a hex colour")
	}
}

func TestRgba(t *testing.T) {
	if got := rgba("#ff0080", 0.5); got != "rgba(255,0,128,0.50)" {
		t.Errorf("rgba = %s", got)
	}
	if got := rgba("#f08", 1); got != "rgba(255,0,136,1.00)" {
		t.Errorf("short rgba = %s", got)
	}
}

func TestRenderBadgeEscapesAndMarks(t *testing.T) {
	b := scene.Badge{CircleID: "/A", PersonID: `x"y`, Name: "<Ada>", Flagged: true, Marker: "★", AbsX: 10, AbsY: 20, R: 8}
	for _, s := range []Style{Simple{}, Outline{}} {
		var buf bytes.Buffer
		s.RenderBadge(&buf, b)
		out := buf.String()
		if !strings.Contains(out, "&lt;Ada&gt;") {
			t.Errorf("%T: name not escaped: %s", s, out)
		}
		if !strings.Contains(out, `data-person="x&#34;y"`) {
			t.Errorf("%T: id not escaped: %s", s, out)
		}
		if !strings.Contains(out, "flagged") || !strings.Contains(out, "★") {
			t.Errorf("%T: flagged badge lacks marker: %s", s, out)
		}
	}
}

func TestRenderLabel(t *testing.T) {
	tag := label.Label{Text: "Eng", X: 100, Y: 50, Kind: label.KindTag,
		Pill: &label.Pill{X: 100, Y: 50, Width: 40, Height: 20, RX: 10}}
	var buf bytes.Buffer
	Simple{}.RenderLabel(&buf, tag)
	if !strings.Contains(buf.String(), `x="80.00" y="40.00" width="40.00"`) {
		t.Errorf("pill rect not centred on label: %s", buf.String())
	}

	buf.Reset()
	Outline{}.RenderLabel(&buf, label.Label{Text: "Backend", X: 1, Y: 2, Kind: label.KindSubLabel})
	if strings.Contains(buf.String(), "<rect") {
		t.Error("sub-labels have no pill")
	}
}
