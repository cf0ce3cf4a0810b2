package engine

import (
	"context"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/errs"
)

const (
	DefaultPatternCellSize = 10
	DefaultDropInterval    = 15 * time.Millisecond
)

type SequencerState uint8

const (
	Loading SequencerState = iota
	Ready
	Building
	Done
	Stopped
)

func (s SequencerState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Building:
		return "building"
	case Done:
		return "done"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ColumnBatch is the set of target cells of one column, sorted by row. It
// falls as a single unit.
type ColumnBatch struct {
	X     int
	Cells []Cell
}

func (b ColumnBatch) Height() int { return len(b.Cells) }

func (b ColumnBatch) clone() ColumnBatch {
	return ColumnBatch{X: b.X, Cells: append([]Cell(nil), b.Cells...)}
}

// Bottom is the lowest target row of the batch.
func (b ColumnBatch) Bottom() int { return b.Cells[len(b.Cells)-1].Y }

// BuildQueue partitions a bitmap into column batches, left to right. Columns
// without set cells are skipped.
func BuildQueue(bm *bitmap.Bitmap) []ColumnBatch {
	queue := make([]ColumnBatch, 0, bm.Width)
	for x := 0; x < bm.Width; x++ {
		var cells []Cell
		for y := 0; y < bm.Height; y++ {
			if bm.At(x, y) {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
		if len(cells) > 0 {
			queue = append(queue, ColumnBatch{X: x, Cells: cells})
		}
	}
	return queue
}

type SequencerConfig struct {
	CellSize     int
	DropInterval time.Duration
	Listener     Listener
}

type SequencerStats struct {
	Builds        int64
	Steps         int64
	BatchesLanded int64
	CellsPlaced   int64
}

// Sequencer reveals a target bitmap by dropping one column batch at a time.
// Each batch comes to rest where the target puts it; batches never collide
// with each other or with placed cells.
type Sequencer struct {
	cellSize int
	interval time.Duration
	listener Listener

	state    SequencerState
	target   *bitmap.Bitmap
	queue    []ColumnBatch
	next     int
	active   *ColumnBatch
	offsetY  int
	lastStep time.Duration

	placed []Cell
	index  *intmap.Map[int, struct{}]
	stats  SequencerStats
}

// NewSequencer creates a sequencer in the Loading state.
func NewSequencer(cfg SequencerConfig) *Sequencer {
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultPatternCellSize
	}
	if cfg.DropInterval <= 0 {
		cfg.DropInterval = DefaultDropInterval
	}
	return &Sequencer{
		cellSize: cfg.CellSize,
		interval: cfg.DropInterval,
		listener: cfg.Listener,
		state:    Loading,
		index:    intmap.New[int, struct{}](0),
	}
}

// Load validates bm and prepares its column queue. A malformed bitmap is
// rejected with an errs.Warn error and leaves the sequencer untouched.
// Loading while building discards the build in progress.
func (s *Sequencer) Load(bm *bitmap.Bitmap) error {
	if err := bm.Validate(); err != nil {
		return errs.Wrap(err, "engine: load target")
	}
	target := bm.Clone()

	s.target = target
	s.queue = BuildQueue(target)
	s.next = 0
	s.active = nil
	s.placed = make([]Cell, 0, target.Count())
	s.index = intmap.New[int, struct{}](target.Count())
	s.state = Ready
	return nil
}

// LoadFrom fetches the target for code from src and loads it. It blocks on the
// source, so hosts that tick from a frame loop should call src.Lookup on
// another goroutine and hand the result to Load instead.
func (s *Sequencer) LoadFrom(ctx context.Context, src bitmap.Source, code string) error {
	bm, err := src.Lookup(ctx, code)
	if err != nil {
		return errs.Wrap(err, "engine: fetch target "+code)
	}
	return s.Load(bm)
}

// Start begins a build from an empty board. It is ignored until a target is
// loaded and while already Building.
func (s *Sequencer) Start() {
	if s.target == nil || s.state == Loading || s.state == Building {
		return
	}
	s.placed = s.placed[:0]
	s.index.Clear()
	s.next = 0
	s.active = nil
	s.state = Building
	s.stats.Builds++
}

// Stop cancels a build. Ticks are no-ops afterwards. A finished build stays
// Done and a sequencer without a target stays Loading.
func (s *Sequencer) Stop() {
	if s.state == Done || s.state == Loading {
		return
	}
	s.state = Stopped
}

// Tick advances the build to now. Only a Building sequencer does anything.
func (s *Sequencer) Tick(now time.Duration) {
	if s.state != Building {
		return
	}

	if s.active == nil {
		if s.next >= len(s.queue) {
			s.state = Done
			s.emit(Event{Kind: EventPatternDone, Rows: len(s.placed)})
			return
		}
		s.active = &s.queue[s.next]
		s.next++
		s.offsetY = -s.active.Height()
	}

	if now-s.lastStep <= s.interval {
		return
	}
	s.lastStep = now
	s.stats.Steps++

	s.offsetY++
	if s.offsetY+s.active.Height() > s.active.Bottom()+1 {
		s.land()
	}
}

func (s *Sequencer) land() {
	b := s.active
	for _, c := range b.Cells {
		key := c.Y*s.target.Width + c.X
		if _, ok := s.index.Get(key); ok {
			continue
		}
		s.index.Put(key, struct{}{})
		s.placed = append(s.placed, c)
	}
	s.active = nil
	s.stats.BatchesLanded++
	s.stats.CellsPlaced += int64(len(b.Cells))
	s.emit(Event{Kind: EventBatchLanded, X: b.X, Y: s.offsetY, Rows: len(b.Cells)})
}

func (s *Sequencer) emit(e Event) {
	if s.listener != nil {
		s.listener(e)
	}
}

// Draw paints placed cells and the visible part of the falling batch. Once
// Done it paints the whole target regardless of what was placed. Nothing is
// drawn before a target is loaded.
func (s *Sequencer) Draw(surface Surface) {
	if s.target == nil {
		return
	}
	surface.Clear()
	drawGridLines(surface, s.target.Width, s.target.Height, s.cellSize)

	if s.state == Done {
		for y := 0; y < s.target.Height; y++ {
			for x := 0; x < s.target.Width; x++ {
				if s.target.At(x, y) {
					fillBlock(surface, x, y, s.cellSize)
				}
			}
		}
		return
	}

	for _, c := range s.placed {
		fillBlock(surface, c.X, c.Y, s.cellSize)
	}

	if s.active == nil {
		return
	}
	for i, c := range s.active.Cells {
		y := s.offsetY + i
		if y >= 0 {
			fillBlock(surface, c.X, y, s.cellSize)
		}
	}
}

// Execute implements System.
func (s *Sequencer) Execute(frame *UpdateFrame) {
	s.Tick(frame.Now)
	if frame.Surface != nil {
		s.Draw(frame.Surface)
	}
}

func (s *Sequencer) State() SequencerState { return s.state }

// Target returns the loaded bitmap, or nil while Loading.
func (s *Sequencer) Target() *bitmap.Bitmap { return s.target }

// Queue returns a copy of the column batches in drop order.
func (s *Sequencer) Queue() []ColumnBatch {
	out := make([]ColumnBatch, len(s.queue))
	for i, b := range s.queue {
		out[i] = b.clone()
	}
	return out
}

// Active returns the falling batch and its vertical offset.
func (s *Sequencer) Active() (ColumnBatch, int, bool) {
	if s.active == nil {
		return ColumnBatch{}, 0, false
	}
	return s.active.clone(), s.offsetY, true
}

// Placed returns a copy of the settled cells in landing order.
func (s *Sequencer) Placed() []Cell {
	return append([]Cell(nil), s.placed...)
}

// IsPlaced reports whether (x, y) has settled.
func (s *Sequencer) IsPlaced(x, y int) bool {
	if s.target == nil || x < 0 || x >= s.target.Width || y < 0 || y >= s.target.Height {
		return false
	}
	_, ok := s.index.Get(y*s.target.Width + x)
	return ok
}

// Remaining returns the number of batches not yet dequeued.
func (s *Sequencer) Remaining() int { return len(s.queue) - s.next }

// Size returns the surface size in pixels, zero while Loading.
func (s *Sequencer) Size() (int, int) {
	if s.target == nil {
		return 0, 0
	}
	return s.target.Width * s.cellSize, s.target.Height * s.cellSize
}

func (s *Sequencer) CellSize() int { return s.cellSize }

func (s *Sequencer) Stats() SequencerStats { return s.stats }
