package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

const sampleYAML = `
categories:
  - name: Engineering
    color: "#2563eb"
  - name: Backend
    parent: Engineering
people:
  - id: ada
    name: Ada Lovelace
    flagged: true
    categories: [Backend]
    skill_ids: [go]
  - name: Grace Hopper
    categories: [Engineering]
skills:
  - name: Go
targets:
  - id: wh
    name: Warehouse
assignments:
  - person_id: ada
    target_id: wh
    hours: 6
`

func TestReadYAML(t *testing.T) {
	snap, err := Read(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(snap.People) != 2 || len(snap.Categories) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.People[0].ID != "ada" {
		t.Errorf("explicit id replaced: %q", snap.People[0].ID)
	}
	if got, want := snap.People[1].ID, ID("person", "Grace Hopper"); got != want {
		t.Errorf("generated id = %q, want %q", got, want)
	}
	if snap.Skills[0].ID != ID("skill", "Go") {
		t.Errorf("skill id = %q", snap.Skills[0].ID)
	}
	if snap.Categories[1].Parent != "Engineering" {
		t.Errorf("category parent = %q", snap.Categories[1].Parent)
	}
}

func TestIDStable(t *testing.T) {
	if ID("person", "Ada") != ID("person", " Ada ") {
		t.Error("ids should ignore surrounding space")
	}
	if ID("person", "Ada") == ID("skill", "Ada") {
		t.Error("ids should differ by kind")
	}
}

func TestRoundTrip(t *testing.T) {
	want, err := Read(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []Format{FormatYAML, FormatJSON, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(want, &buf, f); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			got, err := Read(&buf, f)
			if err != nil {
				t.Fatalf("Read() error: %v\n%s", err, buf.String())
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		format Format
		code   errors.Code
	}{
		{"unknown yaml field", "people:\n  - name: A\n    age: 3\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"unknown json field", `{"people": [], "teams": []}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"unknown toml field", "[[people]]\nname = \"A\"\nshoe = 9\n", FormatTOML, errors.ErrCodeInvalidInput},
		{"duplicate id", "people:\n  - {id: a, name: A}\n  - {id: a, name: B}\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"malformed", "{", FormatJSON, errors.ErrCodeInvalidInput},
		{"format", "", Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.body), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	snap, err := Read(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if len(snap.People) != 0 {
		t.Errorf("people = %d", len(snap.People))
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	snap := &roster.Snapshot{People: []*roster.Person{{ID: "1", Name: "Ann", Categories: []string{"A"}}}}

	path := filepath.Join(dir, "roster.toml")
	if err := Export(snap, path); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	got, err := Import(path)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("Import(Export()) mismatch (-want +got):\n%s", diff)
	}

	if _, err := Import(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "r.csv"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Import(filepath.Join(dir, "r.csv")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv error = %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.yaml": FormatYAML, "a.YML": FormatYAML, "dir/a.json": FormatJSON, "a.toml": FormatTOML,
	}
	for path, want := range tests {
		if got, err := FormatFor(path); err != nil || got != want {
			t.Errorf("FormatFor(%q) = %q, %v", path, got, err)
		}
	}
}

func TestImportSampleRoster(t *testing.T) {
	snap, err := Import(filepath.Join("..", "..", "examples", "team.yaml"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(snap.People) != 6 || len(snap.Assignments) != 4 {
		t.Errorf("people=%d assignments=%d", len(snap.People), len(snap.Assignments))
	}
	p, ok := snap.Person("p5")
	if !ok || !p.HasCategory("Platform") {
		t.Errorf("p5 = %+v", p)
	}
}
