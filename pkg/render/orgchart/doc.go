// Package orgchart renders the group hierarchy as a top-down org chart with
// Graphviz.
//
// The chart shows the same tree the circle packing is computed from, one box
// per group labelled with its member count, and optionally one leaf per
// person. It is a secondary view for printing and for checking category
// assignments; it never uses packed geometry.
//
//	root := hierarchy.Build(snap.People, hierarchy.RulesFromSnapshot(snap))
//	dot := orgchart.ToDOT(root, orgchart.Options{Members: true})
//	svg, err := orgchart.RenderSVG(ctx, dot)
package orgchart
