// Package geom provides the small set of planar primitives shared by the
// packing, badge and label stages.
//
// All coordinates use the SVG convention: x grows to the right, y grows
// downward. The "top" of a circle is therefore its smallest y value.
package geom

import "math"

// Point is a position in user units (pixels in SVG output).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Circle is a disc given by its centre and radius.
type Circle struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	R float64 `json:"r" bson:"r"`
}

// Center returns the centre of the circle.
func (c Circle) Center() Point { return Point{X: c.X, Y: c.Y} }

// Top returns the smallest y coordinate covered by the circle.
func (c Circle) Top() float64 { return c.Y - c.R }

// Bottom returns the largest y coordinate covered by the circle.
func (c Circle) Bottom() float64 { return c.Y + c.R }

// IsZero reports whether the circle was never assigned a radius.
func (c Circle) IsZero() bool { return c.R <= 0 }

// Translate returns the circle moved by (dx, dy).
func (c Circle) Translate(dx, dy float64) Circle {
	return Circle{X: c.X + dx, Y: c.Y + dy, R: c.R}
}

// Scale returns the circle with centre and radius multiplied by k.
func (c Circle) Scale(k float64) Circle {
	return Circle{X: c.X * k, Y: c.Y * k, R: c.R * k}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Contains reports whether o lies inside c with at least margin to spare,
// accepting an error of eps.
func (c Circle) Contains(o Circle, margin, eps float64) bool {
	return Distance(c.Center(), o.Center())+o.R <= c.R-margin+eps
}

// Overlaps reports whether c and o intersect by more than eps.
func (c Circle) Overlaps(o Circle, eps float64) bool {
	return Distance(c.Center(), o.Center()) < c.R+o.R-eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
