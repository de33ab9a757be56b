// Package scene assembles a render-ready description of the visualization.
//
// A [Scene] is a pure function of the record snapshot, the container size and
// the options: the hierarchy is rebuilt, packed, labelled and populated with
// badges from scratch on every call. Nothing in a Scene refers back to the
// tree it was computed from, so scenes are safe to share between goroutines
// and to serialize.
package scene

import (
	"github.com/matzehuels/peoplepack/pkg/badge"
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/pack"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

// Placeholder is shown instead of circles when there is nothing to draw.
const Placeholder = "No people to display"

// Size is a container size in pixels.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Circle is a laid-out group.
type Circle struct {
	ID     string  `json:"id" bson:"id"`
	Parent string  `json:"parent,omitempty" bson:"parent,omitempty"`
	Name   string  `json:"name" bson:"name"`
	Color  string  `json:"color,omitempty" bson:"color,omitempty"`
	Depth  int     `json:"depth" bson:"depth"`
	Weight int     `json:"weight" bson:"weight"`
	Leaf   bool    `json:"leaf,omitempty" bson:"leaf,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	R      float64 `json:"r" bson:"r"`
}

// Badge is a placed person. X and Y are relative to the owning circle; AbsX
// and AbsY are container coordinates.
type Badge struct {
	CircleID string  `json:"circle_id" bson:"circle_id"`
	PersonID string  `json:"person_id" bson:"person_id"`
	Name     string  `json:"name" bson:"name"`
	Flagged  bool    `json:"flagged,omitempty" bson:"flagged,omitempty"`
	Marker   string  `json:"marker,omitempty" bson:"marker,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	AbsX     float64 `json:"abs_x" bson:"abs_x"`
	AbsY     float64 `json:"abs_y" bson:"abs_y"`
	R        float64 `json:"r" bson:"r"`
}

// Scene is the complete layout for one container size.
type Scene struct {
	Width       float64       `json:"width" bson:"width"`
	Height      float64       `json:"height" bson:"height"`
	Empty       bool          `json:"empty,omitempty" bson:"empty,omitempty"`
	Placeholder string        `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Circles     []Circle      `json:"circles" bson:"circles"`
	Labels      []label.Label `json:"labels" bson:"labels"`
	Badges      []Badge       `json:"badges" bson:"badges"`

	// Overflow lists circles whose badges did not fit at the minimum radius.
	Overflow []string `json:"overflow,omitempty" bson:"overflow,omitempty"`

	Scale      float64 `json:"scale" bson:"scale"`
	Compressed bool    `json:"compressed,omitempty" bson:"compressed,omitempty"`
}

// Circle returns the circle with the given id.
func (s *Scene) Circle(id string) (Circle, bool) {
	for _, c := range s.Circles {
		if c.ID == id {
			return c, true
		}
	}
	return Circle{}, false
}

// BadgesIn returns the badges drawn in the given circle.
func (s *Scene) BadgesIn(circleID string) []Badge {
	var out []Badge
	for _, b := range s.Badges {
		if b.CircleID == circleID {
			out = append(out, b)
		}
	}
	return out
}

// PersonCount returns the number of distinct people with a badge.
func (s *Scene) PersonCount() int {
	seen := make(map[string]bool, len(s.Badges))
	for _, b := range s.Badges {
		seen[b.PersonID] = true
	}
	return len(seen)
}

type config struct {
	rules    *hierarchy.Rules
	packOpts []pack.Option
	measurer label.Measurer
	marker   string
}

// Option configures scene computation.
type Option func(*config)

// WithRules overrides the grouping rules derived from the snapshot.
func WithRules(r hierarchy.Rules) Option {
	return func(c *config) { c.rules = &r }
}

// WithPackOptions passes options to the packing engine.
func WithPackOptions(opts ...pack.Option) Option {
	return func(c *config) { c.packOpts = append(c.packOpts, opts...) }
}

// WithMeasurer sets the text measurer used for tag pills.
func WithMeasurer(m label.Measurer) Option {
	return func(c *config) {
		if m != nil {
			c.measurer = m
		}
	}
}

// WithMarker sets the status marker for flagged people.
func WithMarker(m string) Option {
	return func(c *config) { c.marker = m }
}

func newConfig(opts []Option) config {
	cfg := config{measurer: label.FixedMeasurer{}}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Compute builds the hierarchy from a snapshot and composes its scene.
func Compute(snap *roster.Snapshot, size Size, opts ...Option) *Scene {
	cfg := newConfig(opts)
	rules := hierarchy.RulesFromSnapshot(snap)
	if cfg.rules != nil {
		rules = *cfg.rules
	}
	var people []*roster.Person
	if snap != nil {
		people = snap.People
	}
	return compose(hierarchy.Build(people, rules), size, cfg)
}

// Compose lays out an already built hierarchy. Circles are written to the
// tree's nodes as a side effect.
func Compose(root *hierarchy.Node, size Size, opts ...Option) *Scene {
	return compose(root, size, newConfig(opts))
}

func compose(root *hierarchy.Node, size Size, cfg config) *Scene {
	s := &Scene{
		Width:   size.Width,
		Height:  size.Height,
		Circles: []Circle{},
		Labels:  []label.Label{},
		Badges:  []Badge{},
	}
	res := pack.Pack(root, size.Width, size.Height, cfg.packOpts...)
	if res.Placed == 0 {
		s.Empty = true
		s.Placeholder = Placeholder
		return s
	}
	s.Scale = res.Scale
	s.Compressed = res.Compressed

	var badgeOpts []badge.Option
	if cfg.marker != "" {
		badgeOpts = append(badgeOpts, badge.WithMarker(cfg.marker))
	}

	hierarchy.Walk(root, func(n, parent *hierarchy.Node) bool {
		if !n.HasCircle() {
			return false
		}
		c := Circle{
			ID: n.ID, Name: n.Name, Color: n.Color, Depth: n.Depth, Weight: n.Weight,
			Leaf: n.IsLeaf(), X: n.Circle.X, Y: n.Circle.Y, R: n.Circle.R,
		}
		if parent != nil {
			c.Parent = parent.ID
		}
		s.Circles = append(s.Circles, c)

		l, ok := label.Place(n, parent, cfg.measurer)
		if ok {
			s.Labels = append(s.Labels, l)
		}
		if !n.IsLeaf() {
			return true
		}

		opts := append([]badge.Option{badge.WithReserve(label.ReserveFor(l, ok))}, badgeOpts...)
		br := badge.Layout(n, opts...)
		if br.Overflow {
			s.Overflow = append(s.Overflow, n.ID)
		}
		for _, b := range br.Badges {
			abs := badge.Absolute(b, n.Circle)
			s.Badges = append(s.Badges, Badge{
				CircleID: n.ID,
				PersonID: b.PersonID,
				Name:     b.Name,
				Flagged:  b.Flagged,
				Marker:   b.Marker,
				X:        b.X,
				Y:        b.Y,
				AbsX:     abs.X,
				AbsY:     abs.Y,
				R:        b.R,
			})
		}
		return true
	})
	return s
}
