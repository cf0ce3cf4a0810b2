package engine_test

import (
	"github.com/plus3/blockfall/engine"
)

type paintOp struct {
	Kind       string
	X, Y, W, H int
	Tone       engine.Tone
}

// recordingSurface keeps the ops painted since the last Clear.
type recordingSurface struct {
	clears int
	ops    []paintOp
}

func (s *recordingSurface) Clear() {
	s.clears++
	s.ops = s.ops[:0]
}

func (s *recordingSurface) FillRect(x, y, w, h int, tone engine.Tone) {
	s.ops = append(s.ops, paintOp{Kind: "rect", X: x, Y: y, W: w, H: h, Tone: tone})
}

func (s *recordingSurface) StrokeLine(x0, y0, x1, y1 int, tone engine.Tone) {
	s.ops = append(s.ops, paintOp{Kind: "line", X: x0, Y: y0, W: x1 - x0, H: y1 - y0, Tone: tone})
}

func (s *recordingSurface) count(tone engine.Tone) int {
	n := 0
	for _, op := range s.ops {
		if op.Tone == tone {
			n++
		}
	}
	return n
}

func (s *recordingSurface) snapshot() []paintOp {
	return append([]paintOp(nil), s.ops...)
}

// scriptedRand replays vals and then keeps returning 0.
type scriptedRand struct {
	vals []int
	i    int
}

func (r *scriptedRand) IntN(n int) int {
	if r.i >= len(r.vals) {
		return 0
	}
	v := r.vals[r.i]
	r.i++
	return v % n
}

type eventLog []engine.Event

func (l *eventLog) listen(e engine.Event) { *l = append(*l, e) }

func (l eventLog) kinds() []engine.EventKind {
	out := make([]engine.EventKind, len(l))
	for i, e := range l {
		out[i] = e.Kind
	}
	return out
}
