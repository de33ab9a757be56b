package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// Simple draws filled circles tinted by depth, coloured tag pills and solid
// person badges.
type Simple struct{}

const simpleCSS = `
    .group { stroke: #9ca3af; stroke-width: 1; }
    .group.depth-0 { stroke: none; }
    .tag-text { fill: #ffffff; font-weight: 600; }
    .sublabel { fill: #374151; }
    .badge-glyph { fill: #4b5563; stroke: #ffffff; stroke-width: 1.5; }
    .badge.flagged .badge-glyph { fill: #dc2626; }
    .badge-marker { fill: #ffffff; }
    .badge-name { fill: #111827; }`

func (Simple) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", simpleCSS)
}

func (Simple) RenderCircle(buf *bytes.Buffer, c scene.Circle) {
	fill := DepthFill(c.Depth)
	if c.Depth > 0 && ValidColor(c.Color) {
		fill = rgba(c.Color, 0.18)
	}
	fmt.Fprintf(buf, `  <circle id="circle-%s" class="group depth-%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
		EscapeXML(c.ID), c.Depth, c.X, c.Y, c.R, fill)
}

func (Simple) RenderLabel(buf *bytes.Buffer, l label.Label) {
	if l.Pill != nil {
		p := l.Pill
		fmt.Fprintf(buf, `  <rect class="tag" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
			p.X-p.Width/2, p.Y-p.Height/2, p.Width, p.Height, p.RX, TagFill(l.Text, l.Color))
		fmt.Fprintf(buf, `  <text class="tag-text" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f">%s</text>`+"\n",
			l.X, l.Y, FontFamily, label.FontSize, EscapeXML(l.Text))
		return
	}
	fmt.Fprintf(buf, `  <text class="sublabel" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f">%s</text>`+"\n",
		l.X, l.Y, FontFamily, label.FontSize, EscapeXML(l.Text))
}

func (Simple) RenderBadge(buf *bytes.Buffer, b scene.Badge) {
	renderBadge(buf, b, "")
}

// renderBadge writes the badge group shared by all styles.
func renderBadge(buf *bytes.Buffer, b scene.Badge, extraClass string) {
	class := "badge"
	if b.Flagged {
		class += " flagged"
	}
	if extraClass != "" {
		class += " " + extraClass
	}
	fmt.Fprintf(buf, `  <g class="%s" data-person="%s" data-circle="%s">`+"\n", class, EscapeXML(b.PersonID), EscapeXML(b.CircleID))
	fmt.Fprintf(buf, `    <circle class="badge-glyph" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", b.AbsX, b.AbsY, b.R)
	if b.Flagged && b.Marker != "" {
		fmt.Fprintf(buf, `    <text class="badge-marker" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-size="%.1f">%s</text>`+"\n",
			b.AbsX, b.AbsY, b.R*1.2, EscapeXML(b.Marker))
	}
	fmt.Fprintf(buf, `    <text class="badge-name" x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="10">%s</text>`+"\n",
		b.AbsX, captionY(b), FontFamily, EscapeXML(Truncate(b.Name, 10)))
	buf.WriteString("  </g>\n")
}
