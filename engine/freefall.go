package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	DefaultCols         = 8
	DefaultRows         = 13
	DefaultCellSize     = 30
	DefaultFallInterval = 450 * time.Millisecond
)

type FreeFallState uint8

const (
	NoActivePiece FreeFallState = iota
	Descending
)

func (s FreeFallState) String() string {
	if s == Descending {
		return "descending"
	}
	return "no_active_piece"
}

// FreeFallConfig configures a FreeFall. Zero fields take the Default*
// constants, the Tetrominoes catalog and a randomly seeded source.
type FreeFallConfig struct {
	Cols         int
	Rows         int
	CellSize     int
	FallInterval time.Duration
	Catalog      []Shape
	Rand         Rand
	Listener     Listener
}

// Piece is the active falling unit. X is the column of its leftmost cell and
// Y the row of its topmost cell, negative while it enters from above.
type Piece struct {
	Shape Shape
	X, Y  int
}

type FreeFallStats struct {
	Spawns      int64
	Steps       int64
	Landings    int64
	RowsCleared int64
	Resets      int64
}

// FreeFall drops random pieces onto a grid forever. When a spawned piece
// would not fit at row 0 the grid is emptied and the simulation carries on.
type FreeFall struct {
	grid     *Grid
	catalog  []Shape
	rnd      Rand
	listener Listener
	cellSize int
	interval time.Duration

	piece    Piece
	active   bool
	lastStep time.Duration
	stopped  bool
	stats    FreeFallStats
}

// NewFreeFall creates a simulator in the NoActivePiece state. It panics on an
// empty catalog or a shape wider than the grid.
func NewFreeFall(cfg FreeFallConfig) *FreeFall {
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.CellSize == 0 {
		cfg.CellSize = DefaultCellSize
	}
	if cfg.FallInterval == 0 {
		cfg.FallInterval = DefaultFallInterval
	}
	if cfg.Catalog == nil {
		cfg.Catalog = Tetrominoes
	}
	if cfg.Rand == nil {
		cfg.Rand = NewRand(rand.Uint64())
	}

	if len(cfg.Catalog) == 0 {
		panic("engine: free-fall catalog is empty")
	}
	if cfg.CellSize < 0 {
		panic(fmt.Sprintf("engine: invalid cell size %d", cfg.CellSize))
	}
	for _, s := range cfg.Catalog {
		if s.Width() > cfg.Cols {
			panic(fmt.Sprintf("engine: shape %q is %d wide, grid has %d columns", s.Name, s.Width(), cfg.Cols))
		}
	}

	return &FreeFall{
		grid:     NewGrid(cfg.Cols, cfg.Rows),
		catalog:  cfg.Catalog,
		rnd:      cfg.Rand,
		listener: cfg.Listener,
		cellSize: cfg.CellSize,
		interval: cfg.FallInterval,
	}
}

// Tick advances the simulation to now. A missing piece is spawned first; the
// piece then moves down one row if more than the fall interval has passed
// since the previous step.
func (f *FreeFall) Tick(now time.Duration) {
	if f.stopped {
		return
	}
	if !f.active {
		f.spawn()
	}
	if now-f.lastStep <= f.interval {
		return
	}
	f.lastStep = now
	f.stats.Steps++

	f.piece.Y++
	if !Collides(f.piece.Shape, f.grid, f.piece.X, f.piece.Y) {
		return
	}
	f.piece.Y--
	f.land()
}

func (f *FreeFall) spawn() {
	shape := f.catalog[f.rnd.IntN(len(f.catalog))]
	x := f.rnd.IntN(f.grid.cols - shape.Width() + 1)

	if Collides(shape, f.grid, x, 0) {
		f.grid.Reset()
		f.stats.Resets++
		f.emit(Event{Kind: EventOverflowReset, Shape: shape.Name, X: x})
	}

	f.piece = Piece{Shape: shape, X: x, Y: -shape.Height()}
	f.active = true
	f.stats.Spawns++
	f.emit(Event{Kind: EventSpawn, Shape: shape.Name, X: x, Y: f.piece.Y})
}

// land merges the piece's on-grid cells and clears full rows. Cells still
// above the grid are dropped.
func (f *FreeFall) land() {
	for c := range f.piece.Shape.Cells() {
		f.grid.Settle(f.piece.X+c.X, f.piece.Y+c.Y)
	}
	f.active = false
	f.stats.Landings++
	f.emit(Event{Kind: EventLand, Shape: f.piece.Shape.Name, X: f.piece.X, Y: f.piece.Y})

	if n := f.grid.ClearFullRows(); n > 0 {
		f.stats.RowsCleared += int64(n)
		f.emit(Event{Kind: EventRowsCleared, Rows: n})
	}
}

func (f *FreeFall) emit(e Event) {
	if f.listener != nil {
		f.listener(e)
	}
}

// Draw paints the grid lines, the settled cells and the visible part of the
// active piece. It does not change any state.
func (f *FreeFall) Draw(s Surface) {
	s.Clear()
	drawGridLines(s, f.grid.cols, f.grid.rows, f.cellSize)

	for y := 0; y < f.grid.rows; y++ {
		for x := 0; x < f.grid.cols; x++ {
			if f.grid.cells[y*f.grid.cols+x] {
				fillShadedBlock(s, x, y, f.cellSize)
			}
		}
	}

	if !f.active {
		return
	}
	for c := range f.piece.Shape.Cells() {
		y := f.piece.Y + c.Y
		if y >= 0 {
			fillShadedBlock(s, f.piece.X+c.X, y, f.cellSize)
		}
	}
}

// Execute implements System.
func (f *FreeFall) Execute(frame *UpdateFrame) {
	f.Tick(frame.Now)
	if frame.Surface != nil {
		f.Draw(frame.Surface)
	}
}

// Stop makes Tick a no-op until Resume is called.
func (f *FreeFall) Stop() { f.stopped = true }

func (f *FreeFall) Resume() { f.stopped = false }

func (f *FreeFall) Running() bool { return !f.stopped }

func (f *FreeFall) State() FreeFallState {
	if f.active {
		return Descending
	}
	return NoActivePiece
}

// Active returns the falling piece, if any.
func (f *FreeFall) Active() (Piece, bool) {
	return f.piece, f.active
}

// Grid exposes the settled cells. Callers outside the simulator should treat
// it as read-only.
func (f *FreeFall) Grid() *Grid { return f.grid }

// Size returns the surface size in pixels.
func (f *FreeFall) Size() (int, int) {
	return f.grid.cols * f.cellSize, f.grid.rows * f.cellSize
}

func (f *FreeFall) CellSize() int { return f.cellSize }

func (f *FreeFall) Stats() FreeFallStats { return f.stats }
