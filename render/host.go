// Package render drives the two simulators for an interactive front-end. Host
// owns the free-fall background and the pattern sequencer, switches between
// them and fetches pattern targets off the frame loop. The ebitenview and
// termview subpackages paint whatever Host shows.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/errs"
)

const DefaultLoadTimeout = 10 * time.Second

type Mode uint8

const (
	ModeFreeFall Mode = iota
	ModePattern
)

func (m Mode) String() string {
	if m == ModePattern {
		return "pattern"
	}
	return "free-fall"
}

type HostConfig struct {
	FreeFall engine.FreeFallConfig
	Pattern  engine.SequencerConfig
	// Source resolves pattern codes. Without one RequestPattern fails.
	Source      bitmap.Source
	Clock       engine.Clock
	LoadTimeout time.Duration
	Log         *slog.Logger
	// Listener sees the events of both simulators after they are logged.
	Listener engine.Listener
}

type loadResult struct {
	id   uint64
	code string
	bm   *bitmap.Bitmap
	err  error
}

// Host is not safe for concurrent use; call it from the frame loop only.
type Host struct {
	log      *slog.Logger
	source   bitmap.Source
	timeout  time.Duration
	listener engine.Listener

	free      *engine.FreeFall
	seq       *engine.Sequencer
	freeSched *engine.Scheduler
	seqSched  *engine.Scheduler

	mode    Mode
	code    string
	reqID   uint64
	loading bool
	cancel  context.CancelFunc
	results chan loadResult
	err     error
}

func NewHost(cfg HostConfig) *Host {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}

	h := &Host{
		log:      cfg.Log,
		source:   cfg.Source,
		timeout:  cfg.LoadTimeout,
		listener: cfg.Listener,
		results:  make(chan loadResult, 4),
	}

	ffCfg := cfg.FreeFall
	ffCfg.Listener = h.chain("freefall", ffCfg.Listener)
	h.free = engine.NewFreeFall(ffCfg)

	seqCfg := cfg.Pattern
	seqCfg.Listener = h.chain("pattern", seqCfg.Listener)
	h.seq = engine.NewSequencer(seqCfg)

	h.freeSched = engine.NewScheduler(cfg.Clock)
	h.freeSched.Register(h.free)
	h.seqSched = engine.NewScheduler(cfg.Clock)
	h.seqSched.Register(h.seq)
	return h
}

func (h *Host) chain(sim string, own engine.Listener) engine.Listener {
	return func(e engine.Event) {
		h.log.Debug("engine event",
			slog.String("sim", sim),
			slog.String("kind", e.Kind.String()),
			slog.String("shape", e.Shape),
			slog.Int("x", e.X),
			slog.Int("y", e.Y),
			slog.Int("rows", e.Rows),
		)
		if own != nil {
			own(e)
		}
		if h.listener != nil {
			h.listener(e)
		}
	}
}

// RequestPattern switches to the pattern view and fetches code's target in
// the background. A newer request supersedes an older one still in flight.
func (h *Host) RequestPattern(code string) {
	h.cancelLoad()
	h.reqID++
	h.mode = ModePattern
	h.code = code
	h.err = nil

	if h.source == nil {
		h.err = errs.NewWarn("render: no pattern source configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	h.cancel = cancel
	h.loading = true
	id, src, results := h.reqID, h.source, h.results
	go func() {
		bm, err := src.Lookup(ctx, code)
		// a superseded or closed request may never be polled again
		select {
		case results <- loadResult{id: id, code: code, bm: bm, err: err}:
		case <-ctx.Done():
		}
	}()
	h.log.Info("pattern requested", slog.String("code", code))
}

func (h *Host) cancelLoad() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.loading = false
}

// Poll applies finished fetches. Results of superseded requests are dropped.
func (h *Host) Poll() {
	for {
		select {
		case r := <-h.results:
			h.apply(r)
		default:
			return
		}
	}
}

func (h *Host) apply(r loadResult) {
	if r.id != h.reqID || !h.loading {
		return
	}
	h.cancelLoad()

	if r.err == nil {
		r.err = h.seq.Load(r.bm)
	}
	if r.err != nil {
		h.err = r.err
		h.log.Warn("pattern load failed", slog.String("code", r.code), slog.Any("err", r.err))
		return
	}
	h.seq.Start()
	h.log.Info("pattern loaded",
		slog.String("code", r.code),
		slog.Int("width", r.bm.Width),
		slog.Int("height", r.bm.Height),
		slog.Int("columns", len(h.seq.Queue())),
	)
}

// ShowFreeFall stops any pattern build and returns to the background.
func (h *Host) ShowFreeFall() {
	h.cancelLoad()
	h.seq.Stop()
	h.mode = ModeFreeFall
	h.err = nil
}

// TogglePause stops or resumes the free-fall simulation.
func (h *Host) TogglePause() {
	if h.free.Running() {
		h.free.Stop()
	} else {
		h.free.Resume()
	}
}

// Update applies fetched patterns and advances the visible simulator.
func (h *Host) Update() {
	h.Poll()
	h.active().Once(nil)
}

func (h *Host) active() *engine.Scheduler {
	if h.mode == ModePattern {
		return h.seqSched
	}
	return h.freeSched
}

// Draw paints the visible simulator. While a pattern is loading the surface
// is only cleared.
func (h *Host) Draw(s engine.Surface) {
	switch {
	case h.mode == ModeFreeFall:
		h.free.Draw(s)
	case h.loading || h.seq.Target() == nil:
		s.Clear()
	default:
		h.seq.Draw(s)
	}
}

// Size is the pixel size of the visible board. The pattern view falls back to
// the free-fall size until a target is loaded.
func (h *Host) Size() (int, int) {
	if h.mode == ModePattern && !h.loading && h.seq.Target() != nil {
		return h.seq.Size()
	}
	return h.free.Size()
}

// CellSize is the pixel size of one board cell in the visible simulator.
func (h *Host) CellSize() int {
	if h.mode == ModePattern && !h.loading && h.seq.Target() != nil {
		return h.seq.CellSize()
	}
	return h.free.CellSize()
}

// Caption is a one-line status for the front-end.
func (h *Host) Caption() string {
	if h.mode == ModeFreeFall {
		st := h.free.Stats()
		status := ""
		if !h.free.Running() {
			status = " (paused)"
		}
		return fmt.Sprintf("free-fall%s  pieces %d  rows %d  resets %d", status, st.Spawns, st.RowsCleared, st.Resets)
	}
	switch {
	case h.err != nil:
		return fmt.Sprintf("pattern %s: %v", h.code, h.err)
	case h.loading:
		return fmt.Sprintf("pattern %s: loading", h.code)
	}
	total := len(h.seq.Queue())
	return fmt.Sprintf("pattern %s: %s %d/%d columns", h.code, h.seq.State(), total-h.seq.Remaining(), total)
}

func (h *Host) Mode() Mode { return h.mode }

func (h *Host) Loading() bool { return h.loading }

// Err is the last pattern fetch or load failure, cleared by the next request.
func (h *Host) Err() error { return h.err }

func (h *Host) FreeFall() *engine.FreeFall { return h.free }

func (h *Host) Sequencer() *engine.Sequencer { return h.seq }

// Schedulers returns the free-fall and pattern schedulers.
func (h *Host) Schedulers() (*engine.Scheduler, *engine.Scheduler) {
	return h.freeSched, h.seqSched
}

// Close cancels an in-flight fetch.
func (h *Host) Close() {
	h.cancelLoad()
}
