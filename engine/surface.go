package engine

// Tone is the role of a painted region. Renderers map tones to colors or glyphs.
type Tone uint8

const (
	ToneBackground Tone = iota
	ToneGridLine
	ToneShadow
	ToneBlock
)

func (t Tone) String() string {
	switch t {
	case ToneBackground:
		return "background"
	case ToneGridLine:
		return "grid"
	case ToneShadow:
		return "shadow"
	case ToneBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Surface is what simulators paint on. Coordinates are in pixels with the
// origin at the top-left corner of the board.
type Surface interface {
	Clear()
	FillRect(x, y, w, h int, tone Tone)
	StrokeLine(x0, y0, x1, y1 int, tone Tone)
}

const (
	blockInset   = 1
	shadowOffset = 3
)

func drawGridLines(s Surface, cols, rows, cellSize int) {
	w, h := cols*cellSize, rows*cellSize
	for x := 0; x <= cols; x++ {
		s.StrokeLine(x*cellSize, 0, x*cellSize, h, ToneGridLine)
	}
	for y := 0; y <= rows; y++ {
		s.StrokeLine(0, y*cellSize, w, y*cellSize, ToneGridLine)
	}
}

func fillBlock(s Surface, x, y, cellSize int) {
	s.FillRect(x*cellSize+blockInset, y*cellSize+blockInset, cellSize-2*blockInset, cellSize-2*blockInset, ToneBlock)
}

// fillShadedBlock paints a block with a drop shadow offset to the lower right.
func fillShadedBlock(s Surface, x, y, cellSize int) {
	s.FillRect(x*cellSize+shadowOffset, y*cellSize+shadowOffset, cellSize-2*blockInset, cellSize-2*blockInset, ToneShadow)
	fillBlock(s, x, y, cellSize)
}
