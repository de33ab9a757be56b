// Package pack computes the nested circle layout for a category tree.
//
// Every node with positive weight receives a circle. Sibling radii are
// proportional to the square root of weight, so sibling areas are
// proportional to weight; a parent circle encloses its children with a
// depth-dependent padding, and siblings never overlap.
//
// # Algorithm
//
// Sizing runs top-down. The root fills the container minus margin. For each
// parent of radius r, its children are ordered by descending weight (ties
// keep input order), given radius t·√weight and placed with the front-chain
// heuristic: each circle is put tangent to the chain pair closest to the
// origin. Children are inflated by half the parent's padding before packing,
// and t is found by bisection as the largest scale whose enclosure fits r,
// so that
//
//	dist(child, parent) + child.r <= parent.r - padding(parent.depth)
//
// and the gap between siblings is at least that padding.
//
// # Usage
//
//	res := pack.Pack(root, 1200, 960)
//	if v := res.Verify(); len(v) > 0 {
//	    // layout invariant broken
//	}
package pack

import (
	"math"
	"sort"

	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/hierarchy"
)

const (
	// DefaultMargin is kept between the root circle and the container edge.
	DefaultMargin = 10.0

	// bisectIterations fixes the bisection depth so results are reproducible.
	bisectIterations = 60
)

// PaddingFunc returns the padding kept inside a node at the given depth.
type PaddingFunc func(depth int) float64

// WeightFunc returns the weight of a leaf node. Non-positive or non-finite
// weights exclude the node from the layout.
type WeightFunc func(n *hierarchy.Node) float64

// DefaultPadding reserves room for the depth-1 tag pill.
func DefaultPadding(depth int) float64 {
	switch depth {
	case 0:
		return 12
	case 1:
		return 24
	default:
		return 6
	}
}

// MemberWeight weighs a leaf by its badge count.
func MemberWeight(n *hierarchy.Node) float64 { return float64(len(n.Members)) }

type config struct {
	padding PaddingFunc
	margin  float64
	weight  WeightFunc
}

// Option configures Pack.
type Option func(*config)

// WithPadding sets the per-depth padding.
func WithPadding(fn PaddingFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.padding = fn
		}
	}
}

// WithMargin sets the gap between the root circle and the container.
func WithMargin(m float64) Option {
	return func(c *config) {
		if m >= 0 && geom.IsFinite(m) {
			c.margin = m
		}
	}
}

// WithWeight sets how leaves are weighed.
func WithWeight(fn WeightFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.weight = fn
		}
	}
}

// Result describes a completed layout. Circles are written to the nodes.
type Result struct {
	Root   *hierarchy.Node
	Width  float64
	Height float64

	// Scale is the radius per square root of weight of the root's children.
	Scale float64

	// PaddingScale is 1 unless some parent was too small for the padding
	// alone, in which case every padding was shrunk by this factor.
	PaddingScale float64
	Compressed   bool

	// Placed is the number of nodes that received a circle.
	Placed int

	padding PaddingFunc
}

// Padding returns the effective padding at depth, after compression.
func (r Result) Padding(depth int) float64 {
	if r.padding == nil {
		return 0
	}
	return r.padding(depth) * r.PaddingScale
}

// Verify checks the containment and overlap invariants of the layout.
func (r Result) Verify() []Violation {
	return Verify(r.Root, r.Padding)
}

// Pack lays out root inside a width×height container, centred, and assigns
// Circle on every node. Nodes excluded from the layout get a zero circle.
// Pack never fails: an empty tree or a degenerate container leaves every
// circle zero.
func Pack(root *hierarchy.Node, width, height float64, opts ...Option) Result {
	cfg := config{padding: DefaultPadding, margin: DefaultMargin, weight: MemberWeight}
	for _, o := range opts {
		o(&cfg)
	}
	res := Result{Root: root, Width: width, Height: height, PaddingScale: 1, padding: cfg.padding}
	if root == nil {
		return res
	}
	hierarchy.Walk(root, func(n, _ *hierarchy.Node) bool {
		n.Circle = geom.Circle{}
		return true
	})
	if !geom.IsFinite(width) || !geom.IsFinite(height) {
		return res
	}

	target := math.Min(width, height)/2 - cfg.margin
	if target <= 0 {
		target = math.Min(width, height) / 2
	}
	if target <= 0 {
		return res
	}

	p := newPacker(root, cfg)
	if p.value[root] <= 0 {
		return res
	}

	k := 1.0
	if !p.layout(root, target, k) {
		res.Compressed = true
		k = p.compress(target)
		res.PaddingScale = k
		p.layout(root, target, k)
	}
	res.Scale = p.scale
	res.Placed = p.assign(root, width/2, height/2)
	return res
}

// packer holds per-node state for repeated layouts at different scales.
type packer struct {
	cfg   config
	value map[*hierarchy.Node]float64
	local map[*hierarchy.Node]*circle
	kids  map[*hierarchy.Node][]*hierarchy.Node
	root  *hierarchy.Node
	scale float64
}

func newPacker(root *hierarchy.Node, cfg config) *packer {
	p := &packer{
		cfg:   cfg,
		value: make(map[*hierarchy.Node]float64),
		local: make(map[*hierarchy.Node]*circle),
		kids:  make(map[*hierarchy.Node][]*hierarchy.Node),
		root:  root,
	}
	p.measure(root)
	return p
}

// measure computes node values and the ordered list of laid-out children.
func (p *packer) measure(n *hierarchy.Node) float64 {
	var v float64
	if n.IsLeaf() {
		v = p.cfg.weight(n)
		if !(v > 0) || math.IsInf(v, 0) {
			v = 0
		}
	} else {
		var kids []*hierarchy.Node
		for _, c := range n.Children {
			if cv := p.measure(c); cv > 0 {
				kids = append(kids, c)
				v += cv
			}
		}
		sort.SliceStable(kids, func(i, j int) bool {
			return p.value[kids[i]] > p.value[kids[j]]
		})
		p.kids[n] = kids
		if math.IsInf(v, 0) {
			v = 0
		}
	}
	p.value[n] = v
	if v > 0 {
		p.local[n] = &circle{}
	}
	return v
}

// layout sizes the subtree of n inside radius r with every padding scaled
// by k. It reports false when some parent cannot hold its children at any
// positive scale.
func (p *packer) layout(n *hierarchy.Node, r, k float64) bool {
	p.local[n].r = r
	kids := p.kids[n]
	if len(kids) == 0 {
		return true
	}

	half := p.cfg.padding(n.Depth) * k / 2
	if half < 0 || !geom.IsFinite(half) {
		half = 0
	}
	circles := make([]*circle, len(kids))
	for i := range circles {
		circles[i] = &circle{}
	}
	enclose := func(t float64) float64 {
		for i, kid := range kids {
			circles[i].r = t*math.Sqrt(p.value[kid]) + half
		}
		return packSiblings(circles) + half
	}
	if half > 0 && !(enclose(0) < r) {
		return false
	}

	lo, hi := 0.0, r/math.Sqrt(p.value[kids[0]])
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		if enclose(mid) <= r {
			lo = mid
		} else {
			hi = mid
		}
	}
	if !(lo > 0) {
		return false
	}
	enclose(lo)
	if n == p.root {
		p.scale = lo
	}
	for i, kid := range kids {
		lc := p.local[kid]
		lc.x, lc.y = circles[i].x, circles[i].y
		if !p.layout(kid, lo*math.Sqrt(p.value[kid]), k) {
			return false
		}
	}
	return true
}

// compress bisects for the largest padding scale at which every parent can
// hold its children.
func (p *packer) compress(target float64) float64 {
	lo, hi := 0.0, 1.0
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		if p.layout(p.root, target, mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// assign converts local positions to absolute circles.
func (p *packer) assign(n *hierarchy.Node, cx, cy float64) int {
	lc, ok := p.local[n]
	if !ok {
		return 0
	}
	n.Circle = geom.Circle{X: cx, Y: cy, R: lc.r}
	placed := 1
	for _, kid := range p.kids[n] {
		kc := p.local[kid]
		placed += p.assign(kid, cx+kc.x, cy+kc.y)
	}
	return placed
}
