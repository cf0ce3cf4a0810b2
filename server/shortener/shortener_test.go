package shortener_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/plus3/blockfall/errs"
	"github.com/plus3/blockfall/server/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand returns vals in order, then repeats the last one.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	v := r.vals[min(r.i, len(r.vals)-1)]
	r.i++
	return v % n
}

func fixedNow() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newService(rnd shortener.Rand) *shortener.Service {
	return shortener.NewService(shortener.NewMemoryStore(), shortener.Config{
		BaseURL: "http://blk.test/",
		Rand:    rnd,
		Now:     fixedNow(),
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"  http://example.com ", "http://example.com"},
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := shortener.Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := shortener.Normalize("   ")
	require.Error(t, err)
	assert.Equal(t, "URL is required", err.Error())
	assert.Equal(t, errs.Warn, errs.LevelOf(err))
}

func TestShorten(t *testing.T) {
	ctx := context.Background()
	svc := newService(&seqRand{vals: []int{10, 11, 12, 13, 14, 15, 36}})

	e, err := svc.Shorten(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", e.ShortCode)
	assert.Equal(t, "https://example.com", e.OriginalURL)
	assert.Equal(t, "http://blk.test/ABCDEF", svc.ShortURL(e.ShortCode))

	again, err := svc.Shorten(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, e, again, "known URLs keep their code")
}

func TestShortenRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	// The first two codes are both "000000"; the second attempt collides.
	svc := newService(&seqRand{vals: []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}})

	first, err := svc.Shorten(ctx, "a.example")
	require.NoError(t, err)
	second, err := svc.Shorten(ctx, "b.example")
	require.NoError(t, err)

	assert.Equal(t, "000000", first.ShortCode)
	assert.Equal(t, "111111", second.ShortCode)
}

func TestShortenGivesUp(t *testing.T) {
	ctx := context.Background()
	svc := newService(&seqRand{vals: []int{0}})

	_, err := svc.Shorten(ctx, "a.example")
	require.NoError(t, err)
	_, err = svc.Shorten(ctx, "b.example")
	require.Error(t, err)
	assert.Equal(t, errs.Fatal, errs.LevelOf(err))
}

func TestFollowCountsClicks(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)

	e, err := svc.Shorten(ctx, "example.com")
	require.NoError(t, err)
	_, err = svc.Shorten(ctx, "example.org")
	require.NoError(t, err)

	for range 3 {
		u, err := svc.Follow(ctx, e.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", u)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, shortener.Stats{TotalURLs: 2, TotalClicks: 3}, stats)

	_, err = svc.Follow(ctx, "nope")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	for _, u := range []string{"one.example", "two.example", "three.example"} {
		_, err := svc.Shorten(ctx, u)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://three.example", all[0].OriginalURL)
	assert.Equal(t, "https://one.example", all[2].OriginalURL)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	e, err := svc.Shorten(ctx, "example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, e.ShortCode))
	_, err = svc.Lookup(ctx, e.ShortCode)
	assert.ErrorIs(t, err, shortener.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, e.ShortCode), shortener.ErrNotFound)

	// The URL is free again.
	_, err = svc.Shorten(ctx, "example.com")
	assert.NoError(t, err)
}

func TestQRContent(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	e, err := svc.Shorten(ctx, "example.com")
	require.NoError(t, err)

	content, err := svc.QRContent(ctx, e.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "http://blk.test/"+e.ShortCode, content)

	_, err = svc.QRContent(ctx, "missing")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestConcurrentShorten(t *testing.T) {
	ctx := context.Background()
	svc := shortener.NewService(shortener.NewMemoryStore(), shortener.Config{})

	var wg sync.WaitGroup
	codes := make([]string, 32)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := svc.Shorten(ctx, "same.example")
			if err == nil {
				codes[i] = e.ShortCode
			}
		}()
	}
	wg.Wait()

	for _, c := range codes {
		assert.Equal(t, codes[0], c)
	}
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalURLs)
}
