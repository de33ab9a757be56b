// Package sink writes a computed [scene.Scene] in its output formats.
//
//   - SVG: static drawing, optionally with hover tooltip and click detail
//   - JSON: the scene itself, optionally with resolved person details
//   - PDF and PNG: SVG converted with rsvg-convert
//
// Basic usage:
//
//	svg := sink.RenderSVG(sc,
//	    sink.WithStyle(styles.Outline{}),
//	    sink.WithInteractive(snapshot),
//	)
//
// The interactive SVG embeds one detail record per person with a badge and
// a small script. Tooltip placement follows the pointer and is kept inside
// the frame the same way [interact.BuildTooltip] clamps it.
//
// [scene.Scene]: github.com/matzehuels/peoplepack/pkg/scene.Scene
// [interact.BuildTooltip]: github.com/matzehuels/peoplepack/pkg/interact.BuildTooltip
package sink
