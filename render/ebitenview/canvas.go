// Package ebitenview shows a render.Host in an Ebiten window.
package ebitenview

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/blockfall/engine"
)

type Palette struct {
	Background color.Color
	GridLine   color.Color
	Shadow     color.Color
	Block      color.Color
}

// DefaultPalette is black blocks on white with faint grid lines and a
// translucent shadow.
var DefaultPalette = Palette{
	Background: color.White,
	GridLine:   color.RGBA{0xf0, 0xf0, 0xf0, 0xff},
	Shadow:     color.RGBA{0, 0, 0, 51},
	Block:      color.Black,
}

func (p Palette) Color(t engine.Tone) color.Color {
	switch t {
	case engine.ToneGridLine:
		return p.GridLine
	case engine.ToneShadow:
		return p.Shadow
	case engine.ToneBlock:
		return p.Block
	default:
		return p.Background
	}
}

// Canvas paints engine tones onto an ebiten image.
type Canvas struct {
	Image   *ebiten.Image
	Palette Palette
}

func (c Canvas) Clear() {
	c.Image.Fill(c.Palette.Background)
}

func (c Canvas) FillRect(x, y, w, h int, tone engine.Tone) {
	vector.DrawFilledRect(c.Image, float32(x), float32(y), float32(w), float32(h), c.Palette.Color(tone), false)
}

// StrokeLine draws a one pixel line centered on the pixel row or column.
func (c Canvas) StrokeLine(x0, y0, x1, y1 int, tone engine.Tone) {
	vector.StrokeLine(c.Image, float32(x0)+0.5, float32(y0)+0.5, float32(x1)+0.5, float32(y1)+0.5, 1, c.Palette.Color(tone), false)
}
