package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/bitmap/httpsource"
	"github.com/plus3/blockfall/engine"
	"github.com/plus3/blockfall/server/api"
	"github.com/plus3/blockfall/server/netsvr"
	"github.com/plus3/blockfall/server/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := shortener.NewService(shortener.NewMemoryStore(), shortener.Config{BaseURL: "http://blk.test"})
	svr := netsvr.NewChiServer(":0")
	api.RegisterRoutes(svr, api.NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil))))

	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func noRedirects(ts *httptest.Server) *http.Client {
	c := ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

type shortenResponse struct {
	ShortURL  string `json:"short_url"`
	ShortCode string `json:"short_code"`
}

func shorten(t *testing.T, ts *httptest.Server, url string) shortenResponse {
	t.Helper()
	resp, err := ts.Client().Post(ts.URL+"/shorten", "application/json", strings.NewReader(`{"url":"`+url+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out shortenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestShorten(t *testing.T) {
	ts := newTestServer(t)

	out := shorten(t, ts, "example.com")
	assert.Len(t, out.ShortCode, 6)
	assert.Equal(t, "http://blk.test/"+out.ShortCode, out.ShortURL)

	again := shorten(t, ts, "https://example.com")
	assert.Equal(t, out, again)
}

func TestShortenRequiresURL(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{"url":"  "}`, `{}`} {
		resp, err := ts.Client().Post(ts.URL+"/shorten", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.JSONEq(t, `{"error":"URL is required"}`, string(raw), body)
	}
}

func TestRedirectAndStats(t *testing.T) {
	ts := newTestServer(t)
	out := shorten(t, ts, "example.com")
	shorten(t, ts, "example.org")

	client := noRedirects(ts)
	for range 2 {
		resp, err := client.Get(ts.URL + "/" + out.ShortCode)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://example.com", resp.Header.Get("Location"))
	}

	resp, err := client.Get(ts.URL + "/zzzzzz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats shortener.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, shortener.Stats{TotalURLs: 2, TotalClicks: 2}, stats)
}

func TestListAndDelete(t *testing.T) {
	ts := newTestServer(t)
	out := shorten(t, ts, "example.com")

	resp, err := ts.Client().Get(ts.URL + "/api/urls")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, out.ShortCode, list[0]["short_code"])
	assert.Equal(t, out.ShortURL, list[0]["short_url"])

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/urls/"+out.ShortCode, nil)
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQR(t *testing.T) {
	ts := newTestServer(t)
	out := shorten(t, ts, "example.com")

	resp, err := ts.Client().Get(ts.URL + "/api/qr/" + out.ShortCode)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bm bitmap.Bitmap
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bm))
	require.NoError(t, bm.Validate())
	assert.Equal(t, bm.Width, bm.Height)
	assert.Positive(t, bm.Count())

	resp, err = ts.Client().Get(ts.URL + "/api/qr/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatternClientAgainstServer(t *testing.T) {
	ts := newTestServer(t)
	out := shorten(t, ts, "example.com")

	s := engine.NewSequencer(engine.SequencerConfig{})
	require.NoError(t, s.LoadFrom(context.Background(), httpsource.New(ts.URL), out.ShortCode))
	assert.Equal(t, engine.Ready, s.State())

	err := s.LoadFrom(context.Background(), httpsource.New(ts.URL), "missing")
	assert.ErrorIs(t, err, bitmap.ErrNotFound)
}
