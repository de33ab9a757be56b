package hierarchy

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's subtree.
func Walk(n *Node, fn func(n, parent *Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *Node, fn func(n, parent *Node) bool) {
	if n == nil || !fn(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, fn)
	}
}

// Leaves returns the member-bearing nodes under n in pre-order.
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(c, _ *Node) bool {
		if c.IsLeaf() && len(c.Members) > 0 {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Find returns the node reached by following child names from n.
func Find(n *Node, names ...string) (*Node, bool) {
	cur := n
	for _, name := range names {
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// ByID indexes every node under n by its ID.
func ByID(n *Node) map[string]*Node {
	out := make(map[string]*Node)
	Walk(n, func(c, _ *Node) bool {
		out[c.ID] = c
		return true
	})
	return out
}

// CountMembers returns the number of badges in n's subtree, recomputed from
// the members rather than read from Weight.
func CountMembers(n *Node) int {
	total := 0
	Walk(n, func(c, _ *Node) bool {
		total += len(c.Members)
		return true
	})
	return total
}

// Nodes returns the number of nodes in the tree, root included.
func Nodes(n *Node) int {
	count := 0
	Walk(n, func(*Node, *Node) bool {
		count++
		return true
	})
	return count
}
