// Package hierarchy groups a flat list of people into the nested category
// tree that the packing engine lays out.
//
// The tree is a tagged variant: every [Node] holds either child groups or
// people, never both. Depth 0 is the synthetic root, depth 1 the declared
// top-level categories and depth 2 their sub-categories.
//
// A person listing several categories appears under every matching bucket,
// so a node's Weight is the number of badges drawn in its subtree rather than
// the number of distinct people.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/roster"
)

const (
	// DefaultCatchAll collects people that list no declared category.
	DefaultCatchAll = "Other"

	// DefaultSubCatchAll collects people of a top-level category that list
	// none of its sub-categories.
	DefaultSubCatchAll = "General"

	// Drop, used as a catch-all name, discards the people it would collect.
	Drop = "-"

	// RootName is the name of the synthetic depth-0 node.
	RootName = "All"
)

// Node is one group in the category tree.
type Node struct {
	ID       string           `json:"id" bson:"id"`
	Name     string           `json:"name" bson:"name"`
	Color    string           `json:"color,omitempty" bson:"color,omitempty"`
	Depth    int              `json:"depth" bson:"depth"`
	Weight   int              `json:"weight" bson:"weight"`
	Children []*Node          `json:"children,omitempty" bson:"children,omitempty"`
	Members  []*roster.Person `json:"members,omitempty" bson:"members,omitempty"`

	// Circle is assigned by the packing engine. A zero radius means the node
	// was not laid out.
	Circle geom.Circle `json:"circle" bson:"circle"`
}

// IsLeaf reports whether the node holds people rather than groups.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasCircle reports whether packing assigned the node a circle.
func (n *Node) HasCircle() bool { return n != nil && n.Circle.R > 0 }

// Rules declares the buckets people are grouped into.
type Rules struct {
	// Categories in declaration order. Entries with a Parent are
	// sub-categories; a Parent that is not itself declared top-level makes
	// the entry top-level.
	Categories []roster.Category

	// CatchAll names the bucket for people without a declared category.
	// Empty means DefaultCatchAll, Drop discards them.
	CatchAll string

	// SubCatchAll names the bucket inside a top-level category with
	// sub-categories for members that list none of them. Empty means
	// DefaultSubCatchAll.
	SubCatchAll string
}

func (r Rules) catchAll() string {
	if r.CatchAll == "" {
		return DefaultCatchAll
	}
	return r.CatchAll
}

func (r Rules) subCatchAll() string {
	if r.SubCatchAll == "" {
		return DefaultSubCatchAll
	}
	return r.SubCatchAll
}

// group is a declared top-level category and its sub-categories.
type group struct {
	cat  roster.Category
	subs []roster.Category
}

func (r Rules) groups() []*group {
	top := make(map[string]*group)
	var order []*group
	for _, c := range r.Categories {
		if c.Name == "" || c.Parent != "" {
			continue
		}
		if _, dup := top[c.Name]; dup {
			continue
		}
		g := &group{cat: c}
		top[c.Name] = g
		order = append(order, g)
	}
	seen := make(map[string]bool)
	for _, c := range r.Categories {
		if c.Name == "" || c.Parent == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if g, ok := top[c.Parent]; ok {
			g.subs = append(g.subs, c)
			continue
		}
		if _, dup := top[c.Name]; dup {
			continue
		}
		g := &group{cat: roster.Category{Name: c.Name, Color: c.Color}}
		top[c.Name] = g
		order = append(order, g)
	}
	return order
}

// Build groups people into a tree according to rules.
//
// Empty buckets are pruned, so every node in the result has a positive
// Weight except the root of an empty input. People listed twice in the input
// are only counted once.
func Build(people []*roster.Person, rules Rules) *Node {
	root := &Node{ID: "", Name: RootName, Depth: 0}
	groups := rules.groups()

	var unassigned []*roster.Person
	top := make([]*Node, len(groups))
	for i, g := range groups {
		top[i] = &Node{ID: path(g.cat.Name), Name: g.cat.Name, Color: g.cat.Color, Depth: 1}
		for _, s := range g.subs {
			childNamed(top[i], s)
		}
	}

	for _, p := range dedupe(people) {
		cats := categorySet(p)
		matched := false
		for i, g := range groups {
			if placeInGroup(top[i], g, p, cats, rules.subCatchAll()) {
				matched = true
			}
		}
		if !matched {
			unassigned = append(unassigned, p)
		}
	}

	if name := rules.catchAll(); name != Drop && len(unassigned) > 0 {
		top = addCatchAll(top, name, unassigned, rules.subCatchAll())
	}
	for _, n := range top {
		if n.Weight > 0 {
			n.Children = pruneEmpty(n.Children)
			root.Children = append(root.Children, n)
			root.Weight += n.Weight
		}
	}
	return root
}

// addCatchAll puts the unassigned people into the top-level bucket called
// name. A declared category with the same ID absorbs them, into its
// sub-category catch-all when it has sub-categories, so IDs stay unique.
func addCatchAll(top []*Node, name string, people []*roster.Person, general string) []*Node {
	id := path(name)
	for _, n := range top {
		if n.ID != id {
			continue
		}
		bucket := n
		if len(n.Children) > 0 {
			bucket = childNamed(n, roster.Category{Name: general, Color: n.Color})
			bucket.Weight += len(people)
		}
		bucket.Members = append(bucket.Members, people...)
		n.Weight += len(people)
		return top
	}
	return append(top, &Node{ID: id, Name: name, Depth: 1, Members: people, Weight: len(people)})
}

// placeInGroup adds p to the top-level node built for g when p belongs to it.
func placeInGroup(n *Node, g *group, p *roster.Person, cats map[string]bool, general string) bool {
	inTop := cats[g.cat.Name]
	var hits []roster.Category
	for _, s := range g.subs {
		if cats[s.Name] {
			hits = append(hits, s)
		}
	}
	if !inTop && len(hits) == 0 {
		return false
	}
	if len(g.subs) == 0 {
		n.Members = append(n.Members, p)
		n.Weight++
		return true
	}
	if len(hits) == 0 {
		hits = []roster.Category{{Name: general, Color: g.cat.Color}}
	}
	for _, s := range hits {
		child := childNamed(n, s)
		child.Members = append(child.Members, p)
		child.Weight++
		n.Weight++
	}
	return true
}

// childNamed returns the sub-category node of n called c.Name, creating it.
// Sub-categories keep their declaration order; the catch-all is appended
// last because it is only created on demand.
func childNamed(n *Node, c roster.Category) *Node {
	for _, ch := range n.Children {
		if ch.Name == c.Name {
			return ch
		}
	}
	ch := &Node{ID: n.ID + "/" + escape(c.Name), Name: c.Name, Color: c.Color, Depth: n.Depth + 1}
	n.Children = append(n.Children, ch)
	return ch
}

func pruneEmpty(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Weight > 0 {
			out = append(out, n)
		}
	}
	return out
}

func categorySet(p *roster.Person) map[string]bool {
	set := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		set[strings.TrimSpace(c)] = true
	}
	return set
}

func dedupe(people []*roster.Person) []*roster.Person {
	seen := make(map[string]bool, len(people))
	out := make([]*roster.Person, 0, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		if p.ID != "" {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
		}
		out = append(out, p)
	}
	return out
}

func path(name string) string { return "/" + escape(name) }

func escape(name string) string { return strings.ReplaceAll(name, "/", "∕") }

// RulesFromSnapshot derives grouping rules from a snapshot. Declared
// categories are used as-is; without any, the distinct category strings
// listed by people become top-level buckets in sorted order.
func RulesFromSnapshot(s *roster.Snapshot) Rules {
	if s == nil {
		return Rules{}
	}
	if len(s.Categories) > 0 {
		return Rules{Categories: append([]roster.Category(nil), s.Categories...)}
	}
	seen := make(map[string]bool)
	var names []string
	for _, p := range s.People {
		if p == nil {
			continue
		}
		for _, c := range p.Categories {
			c = strings.TrimSpace(c)
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			names = append(names, c)
		}
	}
	sort.Strings(names)
	rules := Rules{Categories: make([]roster.Category, len(names))}
	for i, n := range names {
		rules.Categories[i] = roster.Category{Name: n}
	}
	return rules
}
