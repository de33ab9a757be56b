package pack

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

// tree builds a hierarchy from a compact spec: top-level bucket name to
// member count, and sub-category counts for nested buckets.
func tree(top map[string]int, order []string, subs map[string][]int) *hierarchy.Node {
	var people []*roster.Person
	var cats []roster.Category
	id := 0
	addPeople := func(cat string, n int) {
		for i := 0; i < n; i++ {
			id++
			people = append(people, &roster.Person{ID: fmt.Sprint(id), Name: fmt.Sprint("p", id), Categories: []string{cat}})
		}
	}
	for _, name := range order {
		cats = append(cats, roster.Category{Name: name})
		if counts, ok := subs[name]; ok {
			for i, c := range counts {
				sub := fmt.Sprintf("%s-%d", name, i)
				cats = append(cats, roster.Category{Name: sub, Parent: name})
				addPeople(sub, c)
			}
			continue
		}
		addPeople(name, top[name])
	}
	return hierarchy.Build(people, hierarchy.Rules{Categories: cats})
}

func TestPackThreeCategories(t *testing.T) {
	root := tree(map[string]int{"A": 5, "B": 3, "C": 2}, []string{"A", "B", "C"}, nil)
	res := Pack(root, 1200, 960)

	if res.Compressed {
		t.Fatal("unexpected compression")
	}
	want := geom.Circle{X: 600, Y: 480, R: 470}
	if root.Circle != want {
		t.Errorf("root circle = %+v, want %+v", root.Circle, want)
	}
	if res.Placed != 4 {
		t.Errorf("placed = %d, want 4", res.Placed)
	}
	a, b, c := root.Children[0].Circle, root.Children[1].Circle, root.Children[2].Circle
	if !(a.R > b.R && b.R > c.R) {
		t.Errorf("radii not ordered by weight: %.2f %.2f %.2f", a.R, b.R, c.R)
	}
	if v := res.Verify(); len(v) > 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestPackInvariants(t *testing.T) {
	tests := []struct {
		name  string
		top   map[string]int
		order []string
		subs  map[string][]int
		w, h  float64
	}{
		{"single", map[string]int{"A": 1}, []string{"A"}, nil, 800, 800},
		{"two", map[string]int{"A": 4, "B": 1}, []string{"A", "B"}, nil, 1000, 800},
		{"many equal", map[string]int{"A": 3, "B": 3, "C": 3, "D": 3, "E": 3, "F": 3}, []string{"A", "B", "C", "D", "E", "F"}, nil, 1200, 960},
		{"skewed", map[string]int{"A": 40, "B": 1, "C": 1, "D": 7, "E": 2}, []string{"A", "B", "C", "D", "E"}, nil, 1400, 1120},
		{"nested", map[string]int{"X": 4}, []string{"Eng", "Ops", "X"}, map[string][]int{"Eng": {6, 2, 1, 3}, "Ops": {5}}, 1200, 960},
		{"deep fanout", nil, []string{"A", "B"}, map[string][]int{"A": {1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, "B": {9, 4}}, 900, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree(tt.top, tt.order, tt.subs)
			res := Pack(root, tt.w, tt.h)
			if v := res.Verify(); len(v) > 0 {
				t.Fatalf("violations: %v", v)
			}
			hierarchy.Walk(root, func(n, _ *hierarchy.Node) bool {
				if n.Weight > 0 && !n.HasCircle() {
					t.Errorf("node %s has weight but no circle", n.ID)
				}
				return true
			})
			bound := math.Min(tt.w, tt.h)/2 - DefaultMargin
			if math.Abs(root.Circle.R-bound) > 1e-9 {
				t.Errorf("root radius = %v, want %v", root.Circle.R, bound)
			}
		})
	}
}

func TestPackSiblingAreaMonotonic(t *testing.T) {
	tests := []struct {
		name  string
		top   map[string]int
		order []string
		subs  map[string][]int
	}{
		{"flat", map[string]int{"A": 1, "B": 7, "C": 3, "D": 3, "E": 12}, []string{"A", "B", "C", "D", "E"}, nil},
		{"split lighter than flat", map[string]int{"B": 6}, []string{"A", "B"}, map[string][]int{"A": {1, 1, 1, 1, 1}}},
		{"mixed", map[string]int{"C": 4, "D": 9}, []string{"A", "B", "C", "D"}, map[string][]int{"A": {2, 2, 2, 1}, "B": {9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree(tt.top, tt.order, tt.subs)
			if v := Pack(root, 1200, 960).Verify(); len(v) > 0 {
				t.Fatalf("violations: %v", v)
			}
			hierarchy.Walk(root, func(n, _ *hierarchy.Node) bool {
				for _, a := range n.Children {
					for _, b := range n.Children {
						if a.Weight > b.Weight && !(a.Circle.R > b.Circle.R) {
							t.Errorf("%s (w=%d, r=%.2f) not larger than %s (w=%d, r=%.2f)",
								a.Name, a.Weight, a.Circle.R, b.Name, b.Weight, b.Circle.R)
						}
						if a.Weight == b.Weight && math.Abs(a.Circle.R-b.Circle.R) > 1e-9 {
							t.Errorf("%s and %s have equal weight but different radii", a.Name, b.Name)
						}
					}
				}
				return true
			})
		})
	}
}

func TestPackLeafAreaProportional(t *testing.T) {
	root := tree(map[string]int{"A": 9, "B": 4}, []string{"A", "B"}, nil)
	Pack(root, 1000, 1000)
	a, b := root.Children[0].Circle.R, root.Children[1].Circle.R
	if got := a / b; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("radius ratio = %v, want 1.5", got)
	}

	nested := tree(map[string]int{"C": 4}, []string{"P", "C"}, map[string][]int{"P": {16, 1}})
	Pack(nested, 1000, 1000)
	p, c := nested.Children[0], nested.Children[1]
	if got, want := p.Circle.R/c.Circle.R, math.Sqrt(17.0/4); math.Abs(got-want) > 1e-9 {
		t.Errorf("parent/leaf radius ratio = %v, want %v", got, want)
	}
	if got := p.Children[0].Circle.R / p.Children[1].Circle.R; math.Abs(got-4) > 1e-9 {
		t.Errorf("sub-category radius ratio = %v, want 4", got)
	}
}

func TestPackSingleChildConcentric(t *testing.T) {
	root := tree(map[string]int{"Solo": 6}, []string{"Solo"}, nil)
	Pack(root, 800, 800)

	child := root.Children[0].Circle
	if child.X != root.Circle.X || child.Y != root.Circle.Y {
		t.Errorf("child centre %v, want %v", child.Center(), root.Circle.Center())
	}
	if want := root.Circle.R - DefaultPadding(0); math.Abs(child.R-want) > 1e-6 {
		t.Errorf("child radius = %v, want %v", child.R, want)
	}
}

func TestPackDeterministic(t *testing.T) {
	build := func() *hierarchy.Node {
		return tree(map[string]int{"X": 2}, []string{"Eng", "X", "Ops"}, map[string][]int{"Eng": {3, 3, 1}, "Ops": {2, 2}})
	}
	r1, r2 := build(), build()
	Pack(r1, 1200, 960)
	Pack(r2, 1200, 960)

	a, b := hierarchy.ByID(r1), hierarchy.ByID(r2)
	for id, n := range a {
		if n.Circle != b[id].Circle {
			t.Errorf("%s: %+v != %+v", id, n.Circle, b[id].Circle)
		}
	}
}

func TestPackTieBreakKeepsInputOrder(t *testing.T) {
	root := tree(map[string]int{"A": 2, "B": 2}, []string{"A", "B"}, nil)
	Pack(root, 800, 800)
	// The first two circles are placed left then right of the origin.
	if !(root.Children[0].Circle.X < root.Children[1].Circle.X) {
		t.Errorf("A at x=%v should be left of B at x=%v", root.Children[0].Circle.X, root.Children[1].Circle.X)
	}
}

func TestPackExcludesInvalidWeights(t *testing.T) {
	root := tree(map[string]int{"A": 3, "B": 3, "C": 3}, []string{"A", "B", "C"}, nil)
	weights := map[string]float64{"A": 2, "B": -1, "C": math.NaN()}
	res := Pack(root, 800, 800, WithWeight(func(n *hierarchy.Node) float64 { return weights[n.Name] }))

	if !root.Children[0].HasCircle() {
		t.Error("A should be placed")
	}
	for _, n := range root.Children[1:] {
		if n.HasCircle() {
			t.Errorf("%s should be excluded, got %+v", n.Name, n.Circle)
		}
	}
	if res.Placed != 2 {
		t.Errorf("placed = %d, want 2", res.Placed)
	}
}

func TestPackEmpty(t *testing.T) {
	root := hierarchy.Build(nil, hierarchy.Rules{})
	res := Pack(root, 800, 800)
	if root.HasCircle() || res.Placed != 0 {
		t.Errorf("empty tree should not be placed: %+v", root.Circle)
	}
	if Pack(nil, 800, 800).Placed != 0 {
		t.Error("nil root should not be placed")
	}
}

func TestPackDegenerateContainer(t *testing.T) {
	root := tree(map[string]int{"A": 3}, []string{"A"}, nil)
	for _, size := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if res := Pack(root, size, size); res.Placed != 0 {
			t.Errorf("size %v: placed %d", size, res.Placed)
		}
	}
}

func TestPackCompressed(t *testing.T) {
	root := tree(nil, []string{"A", "B"}, map[string][]int{"A": {1, 1, 1, 1, 1}, "B": {1, 1, 1}})
	res := Pack(root, 60, 60, WithMargin(0))
	if !res.Compressed {
		t.Fatal("expected compression in a tiny container")
	}
	if res.PaddingScale >= 1 || res.PaddingScale <= 0 {
		t.Errorf("padding scale = %v", res.PaddingScale)
	}
	if math.Abs(root.Circle.R-30) > 1e-9 {
		t.Errorf("root radius = %v, want 30", root.Circle.R)
	}
	if v := res.Verify(); len(v) > 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestPackResetsStaleCircles(t *testing.T) {
	root := tree(map[string]int{"A": 1, "B": 1}, []string{"A", "B"}, nil)
	Pack(root, 800, 800)
	Pack(root, 800, 800, WithWeight(func(n *hierarchy.Node) float64 {
		if n.Name == "B" {
			return 0
		}
		return 1
	}))
	if root.Children[1].HasCircle() {
		t.Error("stale circle kept after re-pack")
	}
}

func TestVerifyReportsViolations(t *testing.T) {
	parent := &hierarchy.Node{ID: "/", Circle: geom.Circle{X: 0, Y: 0, R: 10}}
	a := &hierarchy.Node{ID: "/a", Depth: 1, Circle: geom.Circle{X: -3, Y: 0, R: 5}}
	b := &hierarchy.Node{ID: "/b", Depth: 1, Circle: geom.Circle{X: 3, Y: 0, R: 5}}
	parent.Children = []*hierarchy.Node{a, b}

	v := Verify(parent, func(int) float64 { return 0 })
	kinds := map[string]int{}
	for _, x := range v {
		kinds[x.Kind]++
	}
	if kinds[KindOverlap] != 1 {
		t.Errorf("overlaps = %d, want 1", kinds[KindOverlap])
	}
	if kinds[KindContainment] != 0 {
		t.Errorf("containment = %d, want 0", kinds[KindContainment])
	}

	v = Verify(parent, func(int) float64 { return 3 })
	if len(v) != 3 {
		t.Errorf("with padding 3 expected 3 violations, got %v", v)
	}
}
