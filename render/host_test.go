package render_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSurface struct{ clears int }

func (s *nopSurface) Clear()                                          { s.clears++ }
func (s *nopSurface) FillRect(x, y, w, h int, tone engine.Tone)       {}
func (s *nopSurface) StrokeLine(x0, y0, x1, y1 int, tone engine.Tone) {}

// blockingSource answers only after release is closed, or fails when ctx ends.
type blockingSource struct {
	release chan struct{}
	bm      *bitmap.Bitmap
}

func (s *blockingSource) Lookup(ctx context.Context, code string) (*bitmap.Bitmap, error) {
	select {
	case <-s.release:
		return s.bm, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func mustBitmap(t *testing.T, matrix [][]int) *bitmap.Bitmap {
	t.Helper()
	bm, err := bitmap.New(matrix)
	require.NoError(t, err)
	return bm
}

// waitLoaded polls the host until the in-flight fetch resolves.
func waitLoaded(t *testing.T, h *render.Host) {
	t.Helper()
	for i := 0; h.Loading(); i++ {
		require.Less(t, i, 400, "pattern never loaded")
		time.Sleep(5 * time.Millisecond)
		h.Poll()
	}
}

func newHost(t *testing.T, src bitmap.Source) (*render.Host, *engine.ManualClock) {
	clock := engine.NewManualClock(time.Unix(0, 0))
	h := render.NewHost(render.HostConfig{
		FreeFall: engine.FreeFallConfig{Rand: engine.NewRand(7)},
		Source:   src,
		Clock:    clock,
	})
	t.Cleanup(h.Close)
	return h, clock
}

func TestHostFreeFall(t *testing.T) {
	h, clock := newHost(t, nil)
	assert.Equal(t, render.ModeFreeFall, h.Mode())

	w, hgt := h.Size()
	assert.Equal(t, 8*30, w)
	assert.Equal(t, 13*30, hgt)

	for i := 0; i < 5; i++ {
		clock.Advance(451 * time.Millisecond)
		h.Update()
	}
	assert.Equal(t, int64(1), h.FreeFall().Stats().Spawns)
	assert.Contains(t, h.Caption(), "pieces 1")

	h.TogglePause()
	assert.False(t, h.FreeFall().Running())
	assert.Contains(t, h.Caption(), "paused")
	h.TogglePause()
	assert.True(t, h.FreeFall().Running())
}

func TestHostPattern(t *testing.T) {
	target := mustBitmap(t, [][]int{{1, 0}, {1, 1}})
	h, clock := newHost(t, bitmap.Static{"abc123": target})

	h.RequestPattern("abc123")
	assert.Equal(t, render.ModePattern, h.Mode())
	assert.Contains(t, h.Caption(), "loading")

	s := &nopSurface{}
	h.Draw(s)
	assert.Equal(t, 1, s.clears)

	waitLoaded(t, h)
	require.NoError(t, h.Err())
	assert.Equal(t, engine.Building, h.Sequencer().State())

	w, hgt := h.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, hgt)

	spawnsBefore := h.FreeFall().Stats().Spawns
	for i := 0; i < 100 && h.Sequencer().State() == engine.Building; i++ {
		clock.Advance(16 * time.Millisecond)
		h.Update()
	}
	assert.Equal(t, engine.Done, h.Sequencer().State())
	assert.Equal(t, spawnsBefore, h.FreeFall().Stats().Spawns, "free-fall is not advanced while hidden")
	assert.Equal(t, "pattern abc123: done 2/2 columns", h.Caption())

	h.ShowFreeFall()
	assert.Equal(t, render.ModeFreeFall, h.Mode())
}

func TestHostPatternNotFound(t *testing.T) {
	h, _ := newHost(t, bitmap.Static{})

	h.RequestPattern("missing")
	waitLoaded(t, h)

	require.Error(t, h.Err())
	assert.ErrorIs(t, h.Err(), bitmap.ErrNotFound)
	assert.Equal(t, engine.Loading, h.Sequencer().State())
	assert.Contains(t, h.Caption(), "pattern missing:")
}

func TestHostWithoutSource(t *testing.T) {
	h, _ := newHost(t, nil)
	h.RequestPattern("abc123")
	assert.False(t, h.Loading())
	assert.Error(t, h.Err())
}

func TestHostNewerRequestWins(t *testing.T) {
	slow := &blockingSource{release: make(chan struct{}), bm: mustBitmap(t, [][]int{{1}})}
	h, _ := newHost(t, slow)

	h.RequestPattern("first")
	h.RequestPattern("second")
	close(slow.release)
	waitLoaded(t, h)

	require.NoError(t, h.Err())
	assert.Contains(t, h.Caption(), "pattern second")
	assert.Equal(t, engine.Building, h.Sequencer().State())
}

func TestHostEscapeCancelsLoad(t *testing.T) {
	slow := &blockingSource{release: make(chan struct{})}
	h, _ := newHost(t, slow)

	h.RequestPattern("abc123")
	h.ShowFreeFall()
	assert.False(t, h.Loading())

	// the cancelled fetch still reports back and must be ignored
	time.Sleep(20 * time.Millisecond)
	h.Poll()
	assert.Equal(t, render.ModeFreeFall, h.Mode())
	assert.NoError(t, h.Err())
}

func TestHostSupersededFetchesExit(t *testing.T) {
	src := bitmap.Static{"abc123": mustBitmap(t, [][]int{{1}})}
	before := runtime.NumGoroutine()

	h, _ := newHost(t, src)
	for range 10 {
		h.RequestPattern("abc123")
	}
	h.Close()

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 5*time.Millisecond)
}
