// Package termview shows a render.Host in a terminal. Each board cell takes
// one row and two columns so that blocks look roughly square.
package termview

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/plus3/blockfall/engine"
)

const columnsPerCell = 2

type Glyphs struct {
	Empty rune
	Block rune
}

var DefaultGlyphs = Glyphs{Empty: '·', Block: '█'}

// Canvas maps the pixel coordinates simulators paint in onto terminal cells.
// Only block fills are shown; grid lines and shadows have no terminal form.
type Canvas struct {
	Screen   tcell.Screen
	OriginX  int
	OriginY  int
	CellSize int
	Cols     int
	Rows     int
	Glyphs   Glyphs
	Empty    tcell.Style
	Block    tcell.Style

	width *runewidth.Condition
}

func NewCanvas(screen tcell.Screen) *Canvas {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return &Canvas{
		Screen: screen,
		Glyphs: DefaultGlyphs,
		Empty:  tcell.StyleDefault.Foreground(tcell.ColorGray),
		Block:  tcell.StyleDefault.Foreground(tcell.ColorWhite),
		width:  cond,
	}
}

// Resize sets the board geometry from a pixel size and cell size.
func (c *Canvas) Resize(w, h, cellSize int) {
	c.CellSize = cellSize
	c.Cols = w / cellSize
	c.Rows = h / cellSize
}

func (c *Canvas) Clear() {
	for y := 0; y < c.Rows; y++ {
		for x := 0; x < c.Cols; x++ {
			c.put(x, y, c.Glyphs.Empty, c.Empty)
		}
	}
}

func (c *Canvas) FillRect(x, y, w, h int, tone engine.Tone) {
	if tone != engine.ToneBlock || c.CellSize <= 0 {
		return
	}
	for cy := y / c.CellSize; cy*c.CellSize < y+h; cy++ {
		for cx := x / c.CellSize; cx*c.CellSize < x+w; cx++ {
			if cx >= 0 && cx < c.Cols && cy >= 0 && cy < c.Rows {
				c.put(cx, cy, c.Glyphs.Block, c.Block)
			}
		}
	}
}

func (c *Canvas) StrokeLine(x0, y0, x1, y1 int, tone engine.Tone) {}

// put writes one board cell. Wide glyphs fill both columns on their own.
func (c *Canvas) put(x, y int, r rune, style tcell.Style) {
	sx := c.OriginX + x*columnsPerCell
	sy := c.OriginY + y
	if c.width.RuneWidth(r) >= columnsPerCell {
		c.Screen.SetContent(sx, sy, r, nil, style)
		return
	}
	for i := 0; i < columnsPerCell; i++ {
		c.Screen.SetContent(sx+i, sy, r, nil, style)
	}
}

// Text writes s at (x, y), cut to cols columns.
func (c *Canvas) Text(x, y, cols int, s string, style tcell.Style) {
	s = c.width.Truncate(s, cols, "~")
	for _, r := range s {
		c.Screen.SetContent(x, y, r, nil, style)
		x += c.width.RuneWidth(r)
	}
}
