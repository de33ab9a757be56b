package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/render/styles"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    styles.Style
	snapshot *roster.Snapshot
	title    string
}

// WithStyle sets the visual style. The default is [styles.Simple].
func WithStyle(s styles.Style) SVGOption {
	return func(r *svgRenderer) {
		if s != nil {
			r.style = s
		}
	}
}

// WithInteractive embeds the hover tooltip and click detail view. The
// snapshot supplies the person records shown in them.
func WithInteractive(snap *roster.Snapshot) SVGOption {
	return func(r *svgRenderer) { r.snapshot = snap }
}

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws the scene. Circles are drawn outermost first, then labels,
// then badges, so badges stay clickable above everything else.
func RenderSVG(sc *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", styles.EscapeXML(r.title))
	}
	r.style.RenderDefs(&buf)

	if sc.Empty || len(sc.Circles) == 0 {
		text := sc.Placeholder
		if text == "" {
			text = scene.Placeholder
		}
		styles.RenderPlaceholder(&buf, sc.Width, sc.Height, text)
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	for _, c := range sc.Circles {
		r.style.RenderCircle(&buf, c)
	}
	for _, l := range sc.Labels {
		r.style.RenderLabel(&buf, l)
	}
	for _, b := range sc.Badges {
		r.style.RenderBadge(&buf, b)
	}

	if r.snapshot != nil {
		if err := renderInteraction(&buf, sc, r.snapshot); err != nil {
			// The static drawing is still complete.
			fmt.Fprintf(&buf, "  <!-- interaction disabled: %s -->\n", styles.EscapeXML(err.Error()))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
