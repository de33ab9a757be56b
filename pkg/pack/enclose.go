package pack

import "math"

// enclose returns the smallest circle enclosing every circle, using the
// incremental basis method of Welzl generalized to discs. Circles are
// consumed in slice order so the result is reproducible.
//
// If the basis search fails numerically, a centroid bound is returned
// instead. Either way the radius is widened to cover every input exactly.
func enclose(circles []*circle) circle {
	if len(circles) == 0 {
		return circle{}
	}
	e, ok := encloseBasisSearch(circles)
	if !ok {
		e = centroidBound(circles)
	}
	for _, c := range circles {
		if d := math.Hypot(c.x-e.x, c.y-e.y) + c.r; d > e.r {
			e.r = d
		}
	}
	return e
}

func encloseBasisSearch(circles []*circle) (circle, bool) {
	var (
		basis []circle
		e     circle
		have  bool
	)
	limit := 4*len(circles)*len(circles) + 16
	for i, steps := 0, 0; i < len(circles); steps++ {
		if steps > limit {
			return circle{}, false
		}
		p := *circles[i]
		if have && enclosesWeak(e, p) {
			i++
			continue
		}
		var ok bool
		basis, ok = extendBasis(basis, p)
		if !ok {
			return circle{}, false
		}
		e, have, i = encloseBasis(basis), true, 0
		if !finite(e) {
			return circle{}, false
		}
	}
	return e, true
}

func extendBasis(basis []circle, p circle) ([]circle, bool) {
	if enclosesWeakAll(p, basis) {
		return []circle{p}, true
	}
	for i := range basis {
		if enclosesNot(p, basis[i]) && enclosesWeakAll(encloseBasis2(basis[i], p), basis) {
			return []circle{basis[i], p}, true
		}
	}
	for i := 0; i < len(basis)-1; i++ {
		for j := i + 1; j < len(basis); j++ {
			if enclosesNot(encloseBasis2(basis[i], basis[j]), p) &&
				enclosesNot(encloseBasis2(basis[i], p), basis[j]) &&
				enclosesNot(encloseBasis2(basis[j], p), basis[i]) &&
				enclosesWeakAll(encloseBasis3(basis[i], basis[j], p), basis) {
				return []circle{basis[i], basis[j], p}, true
			}
		}
	}
	return nil, false
}

func enclosesNot(a, b circle) bool {
	dr := a.r - b.r
	dx, dy := b.x-a.x, b.y-a.y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b circle) bool {
	dr := a.r - b.r + math.Max(math.Max(a.r, b.r), 1)*1e-9
	dx, dy := b.x-a.x, b.y-a.y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a circle, basis []circle) bool {
	for _, b := range basis {
		if !enclosesWeak(a, b) {
			return false
		}
	}
	return true
}

func encloseBasis(basis []circle) circle {
	switch len(basis) {
	case 1:
		return basis[0]
	case 2:
		return encloseBasis2(basis[0], basis[1])
	default:
		return encloseBasis3(basis[0], basis[1], basis[2])
	}
}

func encloseBasis2(a, b circle) circle {
	x21, y21, r21 := b.x-a.x, b.y-a.y, b.r-a.r
	l := math.Sqrt(x21*x21 + y21*y21)
	if l == 0 {
		if a.r >= b.r {
			return a
		}
		return b
	}
	return circle{
		x: (a.x + b.x + x21/l*r21) / 2,
		y: (a.y + b.y + y21/l*r21) / 2,
		r: (l + a.r + b.r) / 2,
	}
}

// encloseBasis3 solves for the circle internally tangent to a, b and c.
func encloseBasis3(a, b, c circle) circle {
	x1, y1, r1 := a.x, a.y, a.r
	x2, y2, r2 := b.x, b.y, b.r
	x3, y3, r3 := c.x, c.y, c.r

	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3

	ab := a3*b2 - a2*b3
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab

	qa := xb*xb + yb*yb - 1
	qb := 2 * (r1 + xa*xb + ya*yb)
	qc := xa*xa + ya*ya - r1*r1

	var r float64
	if math.Abs(qa) > 1e-6 {
		r = -(qb + math.Sqrt(qb*qb-4*qa*qc)) / (2 * qa)
	} else {
		r = -qc / qb
	}
	return circle{x: x1 + xa + xb*r, y: y1 + ya + yb*r, r: r}
}

// centroidBound centres a bound on the area-weighted centroid.
func centroidBound(circles []*circle) circle {
	var sx, sy, sw float64
	for _, c := range circles {
		w := c.r*c.r + 1e-12
		sx += c.x * w
		sy += c.y * w
		sw += w
	}
	return circle{x: sx / sw, y: sy / sw}
}

func finite(c circle) bool {
	return !math.IsNaN(c.x) && !math.IsNaN(c.y) && !math.IsNaN(c.r) &&
		!math.IsInf(c.x, 0) && !math.IsInf(c.y, 0) && !math.IsInf(c.r, 0)
}
