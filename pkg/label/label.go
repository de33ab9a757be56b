// Package label positions category names on the packed circles.
//
// Depth-1 circles get a pill-shaped tag centred just inside their top edge.
// Deeper circles get a plain text label at the top, which is moved to the
// bottom edge when it would collide with the enclosing depth-1 tag. The
// collision test is purely vertical: a sub-circle whose top lies inside its
// parent's tag band is flipped, regardless of horizontal position.
//
// Placement is read-only: labels never change the layout geometry.
package label

import (
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
)

const (
	// FontSize is the label text size in pixels.
	FontSize = 12.0

	// TagOffset is the distance from a depth-1 circle's top to its tag centre.
	TagOffset = 14.0

	// TagPadX and TagPadY pad the tag text inside its pill.
	TagPadX = 10.0
	TagPadY = 4.0

	// TagBand is the strip below a depth-1 circle's top that its tag may
	// occupy. Sub-labels inside the band are flipped.
	TagBand = 44.0

	// TagReserve is the vertical space badges leave free under a tag.
	TagReserve = 28.0

	// SubLabelOffset is the distance from the circle edge to a sub-label.
	SubLabelOffset = 14.0

	// SubLabelReserve is the vertical space badges leave free for a sub-label.
	SubLabelReserve = 22.0
)

// Kind distinguishes tag pills from plain sub-labels.
type Kind string

const (
	KindTag      Kind = "tag"
	KindSubLabel Kind = "sublabel"
)

// Anchor names the circle edge a label is attached to.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// Pill is the rounded rectangle behind a tag, centred on (X, Y).
type Pill struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	RX     float64 `json:"rx" bson:"rx"`
}

// Label is a positioned category name. (X, Y) is the centre of the text line.
type Label struct {
	NodeID string  `json:"node_id" bson:"node_id"`
	Text   string  `json:"text" bson:"text"`
	Color  string  `json:"color,omitempty" bson:"color,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Anchor Anchor  `json:"anchor" bson:"anchor"`
	Kind   Kind    `json:"kind" bson:"kind"`
	Pill   *Pill   `json:"pill,omitempty" bson:"pill,omitempty"`
}

// Flipped reports whether the label moved to the bottom of its circle.
func (l Label) Flipped() bool { return l.Anchor == AnchorBottom }

// Place positions the label for n. parent may be nil. It returns false for
// the root and for nodes without a circle.
func Place(n, parent *hierarchy.Node, m Measurer) (Label, bool) {
	if n == nil || n.Depth == 0 || !n.HasCircle() {
		return Label{}, false
	}
	if m == nil {
		m = FixedMeasurer{}
	}
	c := n.Circle
	if n.Depth == 1 {
		h := FontSize + 2*TagPadY
		y := c.Top() + TagOffset
		return Label{
			NodeID: n.ID,
			Text:   n.Name,
			Color:  n.Color,
			X:      c.X,
			Y:      y,
			Anchor: AnchorTop,
			Kind:   KindTag,
			Pill: &Pill{
				X:      c.X,
				Y:      y,
				Width:  m.Measure(n.Name, FontSize) + 2*TagPadX,
				Height: h,
				RX:     h / 2,
			},
		}, true
	}

	l := Label{NodeID: n.ID, Text: n.Name, X: c.X, Y: c.Top() + SubLabelOffset, Anchor: AnchorTop, Kind: KindSubLabel}
	if InTagBand(n, parent) {
		l.Y = c.Bottom() - SubLabelOffset
		l.Anchor = AnchorBottom
	}
	return l, true
}

// InTagBand reports whether a sub-label at the top of n would fall inside
// the tag band of its depth-1 parent.
func InTagBand(n, parent *hierarchy.Node) bool {
	if parent == nil || parent.Depth != 1 || !parent.HasCircle() {
		return false
	}
	return n.Circle.Top()+SubLabelOffset < parent.Circle.Top()+TagBand
}

// Layout places labels for every laid-out node under root in pre-order.
func Layout(root *hierarchy.Node, m Measurer) []Label {
	var out []Label
	hierarchy.Walk(root, func(n, parent *hierarchy.Node) bool {
		if !n.HasCircle() {
			return false
		}
		if l, ok := Place(n, parent, m); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// Reserve is the vertical space kept free of badges at the top and bottom
// of a circle.
type Reserve struct {
	Top    float64
	Bottom float64
}

// ReserveFor returns the band a node's own label occupies.
func ReserveFor(l Label, ok bool) Reserve {
	if !ok {
		return Reserve{}
	}
	if l.Kind == KindTag {
		return Reserve{Top: TagReserve}
	}
	if l.Flipped() {
		return Reserve{Bottom: SubLabelReserve}
	}
	return Reserve{Top: SubLabelReserve}
}
