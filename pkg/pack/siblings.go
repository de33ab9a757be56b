package pack

import "math"

// circle is a disc in the local frame of its parent during packing.
type circle struct {
	x, y, r float64
}

// chainNode is one link of the circular front chain.
type chainNode struct {
	c          *circle
	next, prev *chainNode
}

// packSiblings positions circles around the origin without overlap and
// returns the radius of their enclosing circle, which is centred on the
// origin afterwards. Circles are placed in slice order.
//
// Each new circle is placed tangent to the pair a, b of the front chain whose
// weighted midpoint is nearest the origin. When the candidate hits a chain
// circle, the nearest hit along the chain replaces a or b and the placement
// is retried.
func packSiblings(circles []*circle) float64 {
	n := len(circles)
	if n == 0 {
		return 0
	}

	a := circles[0]
	a.x, a.y = 0, 0
	if n == 1 {
		return a.r
	}

	b := circles[1]
	a.x, b.x, b.y = -b.r, a.r, 0
	if n == 2 {
		return a.r + b.r
	}

	c := circles[2]
	place(b, a, c)

	na, nb, nc := &chainNode{c: a}, &chainNode{c: b}, &chainNode{c: c}
	na.next, nc.prev = nb, nb
	nb.next, na.prev = nc, nc
	nc.next, nb.prev = na, na

pack:
	for i := 3; i < n; i++ {
		cc := circles[i]
		place(na.c, nb.c, cc)
		node := &chainNode{c: cc}

		j, k := nb.next, na.prev
		sj, sk := nb.c.r, na.c.r
		for {
			if sj <= sk {
				if intersects(j.c, cc) {
					nb = j
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sj += j.c.r
				j = j.next
			} else {
				if intersects(k.c, cc) {
					na = k
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sk += k.c.r
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		node.prev, node.next = na, nb
		na.next, nb.prev = node, node
		nb = node

		best := score(na)
		for cur := node.next; cur != nb; cur = cur.next {
			if s := score(cur); s < best {
				na, best = cur, s
			}
		}
		nb = na.next
	}

	e := enclose(circles)
	shift(circles, -e.x, -e.y)
	return e.r
}

// place positions c tangent to both a and b, on the left of the vector a→b.
func place(b, a, c *circle) {
	dx, dy := b.x-a.x, b.y-a.y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.x, c.y = a.x+c.r, a.y
		return
	}
	a2 := (a.r + c.r) * (a.r + c.r)
	b2 := (b.r + c.r) * (b.r + c.r)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.x = b.x - x*dx - y*dy
		c.y = b.y - x*dy + y*dx
		return
	}
	x := (d2 + a2 - b2) / (2 * d2)
	y := math.Sqrt(math.Max(0, a2/d2-x*x))
	c.x = a.x + x*dx - y*dy
	c.y = a.y + x*dy + y*dx
}

// intersectEpsilon lets tangent circles touch.
const intersectEpsilon = 1e-6

func intersects(a, b *circle) bool {
	dr := a.r + b.r - intersectEpsilon
	dx, dy := b.x-a.x, b.y-a.y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the radius-weighted
// midpoint of the chain pair starting at n.
func score(n *chainNode) float64 {
	a, b := n.c, n.next.c
	ab := a.r + b.r
	if ab == 0 {
		return a.x*a.x + a.y*a.y
	}
	dx := (a.x*b.r + b.x*a.r) / ab
	dy := (a.y*b.r + b.y*a.r) / ab
	return dx*dx + dy*dy
}

func shift(circles []*circle, dx, dy float64) {
	for _, c := range circles {
		c.x += dx
		c.y += dy
	}
}
