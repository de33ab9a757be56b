// Package styles draws scene elements as SVG.
//
// A [Style] decides how circles, labels and badges look; geometry always
// comes from the scene. Two styles are provided: [Simple] with depth-tinted
// fills, and [Outline], a stroke-only style suited to print.
package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// Names of the built-in styles.
const (
	NameSimple  = "simple"
	NameOutline = "outline"
)

// Names lists the built-in style names.
var Names = []string{NameSimple, NameOutline}

// Style defines the visual appearance of a scene.
type Style interface {
	// RenderDefs writes SVG <defs> content and shared CSS.
	RenderDefs(buf *bytes.Buffer)
	// RenderCircle writes one group circle.
	RenderCircle(buf *bytes.Buffer, c scene.Circle)
	// RenderLabel writes a tag pill or sub-label.
	RenderLabel(buf *bytes.Buffer, l label.Label)
	// RenderBadge writes one person badge with its caption.
	RenderBadge(buf *bytes.Buffer, b scene.Badge)
}

// ByName returns the built-in style called name.
func ByName(name string) (Style, bool) {
	switch name {
	case NameSimple, "":
		return Simple{}, true
	case NameOutline:
		return Outline{}, true
	}
	return nil, false
}

// RenderPlaceholder writes the empty-state message centred in the frame.
func RenderPlaceholder(buf *bytes.Buffer, width, height float64, text string) {
	fmt.Fprintf(buf, `  <text class="placeholder" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="16" fill="#6b7280">%s</text>`+"\n",
		width/2, height/2, FontFamily, EscapeXML(text))
}

// captionY is the baseline of a badge's name caption.
func captionY(b scene.Badge) float64 {
	return b.AbsY + b.R + 11
}
