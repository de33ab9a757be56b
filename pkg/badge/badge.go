// Package badge arranges the people of a leaf circle as a grid of badges.
//
// A badge is a small disc with the person's first name underneath. Rows are
// centred horizontally and the whole grid is centred vertically in the part
// of the circle not reserved for the circle's own label. The badge radius
// shrinks in half-pixel steps until every badge lies inside the circle; if
// even the minimum radius does not fit, the grid is laid out at the minimum
// with its first row just under the reserved band, running downward, and the
// result is marked as overflowing.
package badge

import (
	"math"
	"sort"

	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
	"github.com/matzehuels/peoplepack/pkg/label"
)

const (
	// MinRadius and MaxRadius clamp the badge radius.
	MinRadius = 6.0
	MaxRadius = 14.0

	// RadiusRatio is the preferred badge radius relative to the circle radius.
	RadiusRatio = 0.12

	// SideMargin is the total horizontal space kept free beside the grid.
	SideMargin = 40.0

	// NameWidth is the horizontal slot reserved for a first name.
	NameWidth = 56.0

	// SpacingFactor is the minimum centre spacing in badge diameters.
	SpacingFactor = 2.2

	// CaptionHeight is the space under each glyph for the name.
	CaptionHeight = 16.0

	// RadiusStep is the decrement used while searching for a fitting radius.
	RadiusStep = 0.5

	// DefaultMarker is drawn inside the glyph of flagged people.
	DefaultMarker = "★"

	// maxCapacity bounds the capacity search.
	maxCapacity = 10000
)

// Badge is one placed person. X and Y are relative to the circle centre.
type Badge struct {
	PersonID string  `json:"person_id" bson:"person_id"`
	Name     string  `json:"name" bson:"name"`
	Flagged  bool    `json:"flagged,omitempty" bson:"flagged,omitempty"`
	Marker   string  `json:"marker,omitempty" bson:"marker,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	R        float64 `json:"r" bson:"r"`
}

// Result is the badge grid of one circle.
type Result struct {
	Badges   []Badge
	Radius   float64
	PerRow   int
	Rows     int
	Spacing  float64
	Overflow bool
}

type config struct {
	reserve label.Reserve
	marker  string
}

// Option configures Layout.
type Option func(*config)

// WithReserve keeps bands at the top and bottom of the circle free.
func WithReserve(r label.Reserve) Option {
	return func(c *config) { c.reserve = r }
}

// WithMarker sets the status marker drawn for flagged people.
func WithMarker(m string) Option {
	return func(c *config) {
		if m != "" {
			c.marker = m
		}
	}
}

// PreferredRadius returns the badge radius for a circle before fitting.
func PreferredRadius(circleR float64) float64 {
	return math.Max(MinRadius, math.Min(MaxRadius, RadiusRatio*circleR))
}

// Layout places a badge for every member of n. Nodes without members or
// without a circle yield an empty result.
func Layout(n *hierarchy.Node, opts ...Option) Result {
	cfg := config{marker: DefaultMarker}
	for _, o := range opts {
		o(&cfg)
	}
	if n == nil || !n.HasCircle() || len(n.Members) == 0 {
		return Result{}
	}

	r := n.Circle.R
	k := len(n.Members)
	g, ok := search(r, k, cfg.reserve)

	res := Result{
		Radius:   g.br,
		PerRow:   g.perRow,
		Rows:     g.rows,
		Spacing:  g.spacing,
		Overflow: !ok,
		Badges:   make([]Badge, k),
	}
	for i, p := range n.Members {
		x, y := g.position(i, k)
		b := Badge{PersonID: p.ID, Name: p.FirstName(), Flagged: p.Flagged, X: x, Y: y, R: g.br}
		if p.Flagged {
			b.Marker = cfg.marker
		}
		res.Badges[i] = b
	}
	return res
}

// Capacity returns the largest badge count that fits a circle of radius r
// with the given reserve. Every count up to Capacity fits.
func Capacity(r float64, reserve label.Reserve) int {
	// No grid holds more rows or columns than at the minimum radius.
	n := maxCapacity
	perRow := math.Max(2, math.Floor((2*r-SideMargin)/NameWidth))
	rows := math.Floor(2 * r / (2*MinRadius + CaptionHeight))
	if bound := perRow * rows; bound >= 0 && bound < float64(n) {
		n = int(bound)
	}
	fail := sort.Search(n+1, func(k int) bool {
		if k == 0 {
			return false
		}
		_, ok := search(r, k, reserve)
		return !ok
	})
	return fail - 1
}

// grid is a candidate arrangement.
type grid struct {
	br      float64
	spacing float64
	perRow  int
	rows    int
	pitch   float64
	top     float64 // y of the first glyph centre
}

func newGrid(r, br float64, k int, reserve label.Reserve) grid {
	spacing := math.Max(NameWidth, SpacingFactor*2*br)
	perRow := 2
	if avail := 2*r - SideMargin; avail > 0 {
		if n := int(math.Floor(avail / spacing)); n > perRow {
			perRow = n
		}
	}
	rows := (k + perRow - 1) / perRow
	pitch := 2*br + CaptionHeight
	cy := (reserve.Top - reserve.Bottom) / 2
	h := float64(rows) * pitch
	return grid{
		br:      br,
		spacing: spacing,
		perRow:  perRow,
		rows:    rows,
		pitch:   pitch,
		top:     cy - h/2 + br,
	}
}

// position returns the centre of badge i out of k.
func (g grid) position(i, k int) (float64, float64) {
	row, col := i/g.perRow, i%g.perRow
	inRow := g.perRow
	if rest := k - row*g.perRow; rest < inRow {
		inRow = rest
	}
	x := (float64(col) - float64(inRow-1)/2) * g.spacing
	y := g.top + float64(row)*g.pitch
	return x, y
}

// fits reports whether every glyph lies inside the circle and the grid
// stays out of the reserved bands.
func (g grid) fits(r float64, k int, reserve label.Reserve) bool {
	if float64(g.rows)*g.pitch > 2*r-reserve.Top-reserve.Bottom {
		return false
	}
	origin := geom.Point{}
	for i := 0; i < k; i++ {
		x, y := g.position(i, k)
		if geom.Distance(origin, geom.Point{X: x, Y: y})+g.br > r {
			return false
		}
	}
	return true
}

// search tries radii from the preferred one down to MinRadius and returns
// the first grid that fits, or the minimum-radius grid and false.
func search(r float64, k int, reserve label.Reserve) (grid, bool) {
	br := PreferredRadius(r)
	for {
		g := newGrid(r, br, k, reserve)
		if g.fits(r, k, reserve) {
			return g, true
		}
		if br <= MinRadius {
			g.top = -r + reserve.Top + g.br
			return g, false
		}
		br = math.Max(MinRadius, br-RadiusStep)
	}
}

// Absolute converts a badge to container coordinates.
func Absolute(b Badge, c geom.Circle) geom.Point {
	return geom.Point{X: c.X + b.X, Y: c.Y + b.Y}
}
