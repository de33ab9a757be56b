package label

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered width of text at a font size.
type Measurer interface {
	Measure(text string, size float64) float64
}

// FixedMeasurer approximates every glyph as a fixed fraction of the font
// size. It needs no font data and is stable across platforms.
type FixedMeasurer struct {
	// CharWidth is the glyph advance as a fraction of the font size.
	// Zero means 0.6.
	CharWidth float64
}

// Measure implements Measurer.
func (m FixedMeasurer) Measure(text string, size float64) float64 {
	w := m.CharWidth
	if w <= 0 {
		w = 0.6
	}
	return float64(len([]rune(text))) * size * w
}

// FontMeasurer measures text with a TrueType face. Faces are cached per size.
type FontMeasurer struct {
	name string
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontMeasurer parses the embedded Go Regular font.
func NewFontMeasurer() (*FontMeasurer, error) {
	return NewFontMeasurerFrom("goregular", goregular.TTF)
}

// NewFontMeasurerFrom parses TrueType or OpenType font data. The name
// identifies the font in layout cache keys.
func NewFontMeasurerFrom(name string, data []byte) (*FontMeasurer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &FontMeasurer{name: name, font: f, faces: make(map[float64]font.Face)}, nil
}

// Name returns the font name the measurer was created with.
func (m *FontMeasurer) Name() string { return "font:" + m.name }

// Measure implements Measurer. Sizes the face cannot be built for fall back
// to the fixed approximation.
func (m *FontMeasurer) Measure(text string, size float64) float64 {
	face, err := m.face(size)
	if err != nil {
		return FixedMeasurer{}.Measure(text, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(face, text)) / 64
}

func (m *FontMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// Ensure implementations satisfy Measurer.
var (
	_ Measurer = FixedMeasurer{}
	_ Measurer = (*FontMeasurer)(nil)
)
