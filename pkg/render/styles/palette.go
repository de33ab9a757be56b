package styles

import (
	"fmt"
	"hash/fnv"
	"regexp"
)

// depthFills tints group circles by depth when no colour is declared.
var depthFills = []string{"#f3f4f6", "#e0ecf8", "#f8f1dc", "#e6f4ea"}

// tagFills colour depth-1 pills when their category declares no colour.
var tagFills = []string{"#2563eb", "#059669", "#d97706", "#7c3aed", "#db2777", "#0891b2", "#4b5563"}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// ValidColor reports whether c is a #rgb or #rrggbb colour.
func ValidColor(c string) bool { return hexColor.MatchString(c) }

// DepthFill returns the fill for a group circle.
func DepthFill(depth int) string {
	if depth < 0 {
		depth = 0
	}
	return depthFills[depth%len(depthFills)]
}

// TagFill returns the pill colour for a top-level group. A declared colour
// wins; otherwise the colour is derived from the name so it is stable
// across renders.
func TagFill(name, declared string) string {
	if ValidColor(declared) {
		return declared
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return tagFills[h.Sum32()%uint32(len(tagFills))]
}

// rgba renders a #rrggbb colour with alpha.
func rgba(hex string, alpha float64) string {
	if len(hex) == 4 {
		hex = fmt.Sprintf("#%c%c%c%c%c%c", hex[1], hex[1], hex[2], hex[2], hex[3], hex[3])
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", r, g, b, alpha)
}
