package sink

import (
	"context"

	"github.com/matzehuels/peoplepack/pkg/render"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// RenderPDF renders the scene as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, sc *scene.Scene, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(sc, opts...))
}
