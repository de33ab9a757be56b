package pack

import (
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
)

// Tolerance absorbs floating-point error when checking invariants.
const Tolerance = 1e-4

// Violation kinds.
const (
	KindContainment = "containment"
	KindOverlap     = "overlap"
)

// Violation is one broken layout invariant.
type Violation struct {
	Kind   string
	Node   string  // offending child (containment) or first sibling (overlap)
	Other  string  // parent (containment) or second sibling (overlap)
	Excess float64 // how far the invariant is exceeded, in pixels
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s vs %s exceeds by %.6f", v.Kind, v.Node, v.Other, v.Excess)
}

// Verify checks every laid-out node: each child must sit inside its parent
// with the parent's padding to spare, and siblings must keep at least the
// parent's padding between them.
func Verify(root *hierarchy.Node, padding PaddingFunc) []Violation {
	if padding == nil {
		padding = DefaultPadding
	}
	var out []Violation
	hierarchy.Walk(root, func(n, _ *hierarchy.Node) bool {
		if !n.HasCircle() {
			return false
		}
		pad := padding(n.Depth)
		var placed []*hierarchy.Node
		for _, c := range n.Children {
			if c.HasCircle() {
				placed = append(placed, c)
			}
		}
		for _, c := range placed {
			d := geom.Distance(n.Circle.Center(), c.Circle.Center()) + c.Circle.R
			if excess := d - (n.Circle.R - pad); excess > Tolerance {
				out = append(out, Violation{Kind: KindContainment, Node: c.ID, Other: n.ID, Excess: excess})
			}
		}
		for i := 0; i < len(placed); i++ {
			for j := i + 1; j < len(placed); j++ {
				a, b := placed[i].Circle, placed[j].Circle
				gap := geom.Distance(a.Center(), b.Center()) - a.R - b.R
				if excess := pad - gap; excess > Tolerance {
					out = append(out, Violation{Kind: KindOverlap, Node: placed[i].ID, Other: placed[j].ID, Excess: excess})
				}
			}
		}
		return true
	})
	return out
}
