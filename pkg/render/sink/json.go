package sink

import (
	"encoding/json"

	"github.com/matzehuels/peoplepack/pkg/interact"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style    string
	snapshot *roster.Snapshot
}

// WithJSONStyle records the style name so the scene can be re-rendered
// identically.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONPeople adds the resolved detail record of every person with a
// badge, keyed by person id.
func WithJSONPeople(snap *roster.Snapshot) JSONOption {
	return func(r *jsonRenderer) { r.snapshot = snap }
}

type jsonOutput struct {
	*scene.Scene
	Style  string                      `json:"style,omitempty"`
	People map[string]*interact.Detail `json:"people,omitempty"`
}

// RenderJSON exports the scene as an indented JSON document. The output
// decodes back into a [scene.Scene].
func RenderJSON(sc *scene.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Scene: sc, Style: r.style}
	if r.snapshot != nil {
		out.People = buildInteractionData(sc, r.snapshot).People
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON decodes a scene written by [RenderJSON].
func ReadJSON(data []byte) (*scene.Scene, error) {
	var sc scene.Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
