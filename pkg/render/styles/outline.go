package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// Outline draws strokes only. Depth is shown by stroke weight.
type Outline struct{}

const outlineCSS = `
    .group { fill: none; stroke: #111827; }
    .tag { fill: #ffffff; stroke: #111827; stroke-width: 1.2; }
    .tag-text, .sublabel, .badge-name { fill: #111827; }
    .badge-glyph { fill: #ffffff; stroke: #111827; stroke-width: 1.2; }
    .badge.flagged .badge-glyph { stroke-width: 2.4; }
    .badge-marker { fill: #111827; }`

func (Outline) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", outlineCSS)
}

func (Outline) RenderCircle(buf *bytes.Buffer, c scene.Circle) {
	width := 2.0 - 0.5*float64(c.Depth)
	if width < 0.5 {
		width = 0.5
	}
	dash := ""
	if c.Depth == 0 {
		dash = ` stroke-dasharray="4 4"`
	}
	fmt.Fprintf(buf, `  <circle id="circle-%s" class="group depth-%d" cx="%.2f" cy="%.2f" r="%.2f" stroke-width="%.2f"%s/>`+"\n",
		EscapeXML(c.ID), c.Depth, c.X, c.Y, c.R, width, dash)
}

func (Outline) RenderLabel(buf *bytes.Buffer, l label.Label) {
	if l.Pill != nil {
		p := l.Pill
		fmt.Fprintf(buf, `  <rect class="tag" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
			p.X-p.Width/2, p.Y-p.Height/2, p.Width, p.Height, p.RX)
		fmt.Fprintf(buf, `  <text class="tag-text" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f">%s</text>`+"\n",
			l.X, l.Y, FontFamily, label.FontSize, EscapeXML(l.Text))
		return
	}
	fmt.Fprintf(buf, `  <text class="sublabel" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f" font-style="italic">%s</text>`+"\n",
		l.X, l.Y, FontFamily, label.FontSize, EscapeXML(l.Text))
}

func (Outline) RenderBadge(buf *bytes.Buffer, b scene.Badge) {
	renderBadge(buf, b, "outline")
}
