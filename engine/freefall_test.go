package engine_test

import (
	"testing"
	"time"

	"github.com/plus3/blockfall/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 451 * time.Millisecond

func TestFreeFallDefaults(t *testing.T) {
	ff := engine.NewFreeFall(engine.FreeFallConfig{})

	assert.Equal(t, 8, ff.Grid().Cols())
	assert.Equal(t, 13, ff.Grid().Rows())
	assert.Equal(t, 30, ff.CellSize())
	w, h := ff.Size()
	assert.Equal(t, 240, w)
	assert.Equal(t, 390, h)
	assert.Equal(t, engine.NoActivePiece, ff.State())
	assert.True(t, ff.Running())
}

func TestFreeFallDropsOPieceToTheFloor(t *testing.T) {
	var events eventLog
	ff := engine.NewFreeFall(engine.FreeFallConfig{
		Rand:     &scriptedRand{vals: []int{1, 3}},
		Listener: events.listen,
	})

	ff.Tick(0)
	piece, ok := ff.Active()
	require.True(t, ok)
	assert.Equal(t, "O", piece.Shape.Name)
	assert.Equal(t, 3, piece.X)
	assert.Equal(t, -2, piece.Y)

	t.Run("no step within the fall interval", func(t *testing.T) {
		ff.Tick(200 * time.Millisecond)
		ff.Tick(450 * time.Millisecond)
		piece, _ := ff.Active()
		assert.Equal(t, -2, piece.Y)
	})

	t.Run("one row per qualifying tick", func(t *testing.T) {
		for i := 1; i <= 13; i++ {
			ff.Tick(time.Duration(i) * step)
			piece, ok := ff.Active()
			require.True(t, ok, "tick %d", i)
			assert.Equal(t, -2+i, piece.Y, "tick %d", i)
		}
	})

	t.Run("merges at the floor", func(t *testing.T) {
		ff.Tick(14 * step)

		assert.Equal(t, engine.NoActivePiece, ff.State())
		assert.Equal(t, 4, ff.Grid().Count())
		for _, c := range []engine.Cell{{X: 3, Y: 11}, {X: 4, Y: 11}, {X: 3, Y: 12}, {X: 4, Y: 12}} {
			assert.True(t, ff.Grid().Settled(c.X, c.Y), "%v", c)
		}
		assert.Equal(t, []engine.EventKind{engine.EventSpawn, engine.EventLand}, events.kinds())
		assert.Equal(t, 11, events[1].Y)
	})

	t.Run("next tick spawns", func(t *testing.T) {
		ff.Tick(14*step + time.Millisecond)
		assert.Equal(t, engine.Descending, ff.State())
		stats := ff.Stats()
		assert.Equal(t, int64(2), stats.Spawns)
		assert.Equal(t, int64(14), stats.Steps)
		assert.Equal(t, int64(1), stats.Landings)
	})
}

func TestFreeFallClearsRows(t *testing.T) {
	var events eventLog
	i, _ := engine.ShapeByName("I")
	ff := engine.NewFreeFall(engine.FreeFallConfig{
		Cols:     4,
		Rows:     3,
		Catalog:  []engine.Shape{i},
		Rand:     &scriptedRand{},
		Listener: events.listen,
	})
	ff.Grid().Settle(1, 2)

	now := time.Duration(0)
	for ff.Stats().Landings == 0 {
		ff.Tick(now)
		now += step
		require.Less(t, now, 10*step)
	}

	assert.Equal(t, int64(1), ff.Stats().RowsCleared)
	assert.Equal(t, "....\n....\n.#..", ff.Grid().String())
	assert.Equal(t, engine.EventRowsCleared, events[len(events)-1].Kind)
	assert.Equal(t, 1, events[len(events)-1].Rows)
}

func TestFreeFallOverflowResetsTheGrid(t *testing.T) {
	var events eventLog
	o, _ := engine.ShapeByName("O")
	ff := engine.NewFreeFall(engine.FreeFallConfig{
		Cols:     3,
		Rows:     2,
		Catalog:  []engine.Shape{o},
		Rand:     &scriptedRand{},
		Listener: events.listen,
	})

	now := time.Duration(0)
	for ff.Stats().Landings == 0 {
		ff.Tick(now)
		now += step
	}
	require.Equal(t, "##.\n##.", ff.Grid().String())

	ff.Tick(now)

	assert.Equal(t, 0, ff.Grid().Count())
	assert.Equal(t, int64(1), ff.Stats().Resets)
	assert.Equal(t, engine.Descending, ff.State())
	n := len(events)
	assert.Equal(t, []engine.EventKind{engine.EventOverflowReset, engine.EventSpawn}, events[n-2:].kinds())
}

func TestFreeFallStop(t *testing.T) {
	ff := engine.NewFreeFall(engine.FreeFallConfig{Rand: engine.NewRand(1)})
	ff.Tick(0)
	before, _ := ff.Active()

	ff.Stop()
	ff.Tick(5 * step)
	after, _ := ff.Active()
	assert.Equal(t, before, after)
	assert.False(t, ff.Running())

	ff.Resume()
	ff.Tick(5 * step)
	after, _ = ff.Active()
	assert.Equal(t, before.Y+1, after.Y)
}

func TestFreeFallDraw(t *testing.T) {
	ff := engine.NewFreeFall(engine.FreeFallConfig{Rand: &scriptedRand{vals: []int{1, 0}}})
	ff.Grid().Settle(7, 12)

	ff.Tick(0)
	ff.Tick(step)

	s := &recordingSurface{}
	ff.Draw(s)

	assert.Equal(t, 1, s.clears)
	assert.Equal(t, 9+14, s.count(engine.ToneGridLine))
	// Settled cell plus the visible bottom row of the O piece.
	assert.Equal(t, 3, s.count(engine.ToneBlock))
	assert.Equal(t, 3, s.count(engine.ToneShadow))
	assert.Contains(t, s.ops, paintOp{Kind: "rect", X: 7*30 + 1, Y: 12*30 + 1, W: 28, H: 28, Tone: engine.ToneBlock})
	assert.Contains(t, s.ops, paintOp{Kind: "rect", X: 7*30 + 3, Y: 12*30 + 3, W: 28, H: 28, Tone: engine.ToneShadow})

	t.Run("idempotent", func(t *testing.T) {
		first := s.snapshot()
		ff.Draw(s)
		assert.Equal(t, first, s.snapshot())
		piece, _ := ff.Active()
		assert.Equal(t, -1, piece.Y)
	})
}

func TestFreeFallExecute(t *testing.T) {
	ff := engine.NewFreeFall(engine.FreeFallConfig{Rand: engine.NewRand(7)})
	scheduler := engine.NewScheduler(engine.NewManualClock(time.Unix(0, 0)))
	scheduler.Register(ff)

	s := &recordingSurface{}
	scheduler.Step(0, s)
	assert.Equal(t, engine.Descending, ff.State())
	assert.Equal(t, 1, s.clears)

	scheduler.Step(step, nil)
	assert.Equal(t, 1, s.clears)
	assert.Equal(t, int64(1), ff.Stats().Steps)
}

func TestFreeFallInvalidConfig(t *testing.T) {
	i, _ := engine.ShapeByName("I")
	assert.Panics(t, func() {
		engine.NewFreeFall(engine.FreeFallConfig{Catalog: []engine.Shape{}})
	})
	assert.Panics(t, func() {
		engine.NewFreeFall(engine.FreeFallConfig{Cols: 3, Catalog: []engine.Shape{i}})
	})
	assert.Panics(t, func() {
		engine.NewFreeFall(engine.FreeFallConfig{CellSize: -1})
	})
}

func TestFreeFallSeededRunsMatch(t *testing.T) {
	run := func() string {
		ff := engine.NewFreeFall(engine.FreeFallConfig{Rand: engine.NewRand(42)})
		for i := 0; i < 400; i++ {
			ff.Tick(time.Duration(i) * step)
		}
		return ff.Grid().String()
	}
	assert.Equal(t, run(), run())
}
