package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/render/orgchart"
	"github.com/matzehuels/peoplepack/pkg/render/sink"
	"github.com/matzehuels/peoplepack/pkg/render/styles"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// RenderScene generates output artifacts in the requested formats. The
// snapshot supplies person details for interactive output and the org chart.
func RenderScene(ctx context.Context, sc *scene.Scene, snap *roster.Snapshot, opts Options) (map[string][]byte, error) {
	if opts.IsOrgChart() {
		return renderOrgChart(ctx, snap, opts)
	}
	return renderPack(ctx, sc, snap, opts)
}

// =============================================================================
// Pack
// =============================================================================

func renderPack(ctx context.Context, sc *scene.Scene, snap *roster.Snapshot, opts Options) (map[string][]byte, error) {
	style, ok := styles.ByName(opts.Style)
	if !ok {
		return nil, fmt.Errorf("unknown style: %s", opts.Style)
	}

	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteractive(snap))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(sc, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, sc, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, sc, svgOpts...)
		case FormatJSON:
			jsonOpts := []sink.JSONOption{sink.WithJSONStyle(opts.Style)}
			if opts.Interactive {
				jsonOpts = append(jsonOpts, sink.WithJSONPeople(snap))
			}
			data, err = sink.RenderJSON(sc, jsonOpts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// =============================================================================
// Org chart
// =============================================================================

func renderOrgChart(ctx context.Context, snap *roster.Snapshot, opts Options) (map[string][]byte, error) {
	dot := orgchart.ToDOT(BuildHierarchy(snap, opts), orgchart.Options{Members: opts.Members})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = orgchart.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = orgchart.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = orgchart.RenderPDF(ctx, dot)
		default:
			return nil, fmt.Errorf("unsupported org chart format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
