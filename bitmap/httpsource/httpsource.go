// Package httpsource fetches target bitmaps from the shortener service's
// /api/qr/{code} endpoint.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/errs"
)

const DefaultTimeout = 10 * time.Second

// Client is a bitmap.Source backed by HTTP. Responses may be zstd or gzip
// encoded.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Lookup requests the bitmap for code. A 404 maps to bitmap.ErrNotFound and a
// malformed body to an errs.Warn error; transport failures are Fatal.
func (c *Client) Lookup(ctx context.Context, code string) (*bitmap.Bitmap, error) {
	if code == "" {
		return nil, errs.NewWarn("httpsource: empty code")
	}
	endpoint := c.BaseURL + "/api/qr/" + url.PathEscape(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.Wrap(err, "httpsource: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "zstd, gzip")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "httpsource: get "+endpoint)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, bitmap.ErrNotFound
	default:
		return nil, errs.Fatalf("httpsource: get %s: %s", endpoint, resp.Status)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, errs.Wrap(err, "httpsource: decode body")
	}
	defer body.Close()

	var bm bitmap.Bitmap
	if err := json.NewDecoder(body).Decode(&bm); err != nil {
		return nil, errs.Warnf("httpsource: parse bitmap: %v", err)
	}
	if err := bm.Validate(); err != nil {
		return nil, errs.Wrap(err, "httpsource: "+code)
	}
	return &bm, nil
}

func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "":
		return io.NopCloser(resp.Body), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "zstd":
		zr, err := zstd.NewReader(resp.Body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
