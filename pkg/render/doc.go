// Package render turns computed scenes into files.
//
// # Overview
//
//   - [sink]: SVG (optionally interactive), JSON, PDF and PNG of a scene
//   - [styles]: visual styles for the SVG sink
//   - [orgchart]: the same hierarchy as a Graphviz org chart
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both the scene sinks and the org chart use them.
//
//	svg := sink.RenderSVG(sc, sink.WithStyle(styles.Simple{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/peoplepack/pkg/render/sink
// [styles]: github.com/matzehuels/peoplepack/pkg/render/styles
// [orgchart]: github.com/matzehuels/peoplepack/pkg/render/orgchart
package render
