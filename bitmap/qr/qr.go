// Package qr renders text as a QR code bitmap for the pattern sequencer.
package qr

import (
	"context"

	"github.com/plus3/blockfall/bitmap"
	"github.com/plus3/blockfall/errs"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultBorder is the width of the quiet zone, in modules, around the symbol.
const DefaultBorder = 1

// Encoder turns content into a bitmap. The symbol version is the smallest one
// that fits the content at the chosen recovery level.
type Encoder struct {
	Level  qrcode.RecoveryLevel
	Border int
}

// NewEncoder returns an encoder with Low recovery and a one-module border.
func NewEncoder() *Encoder {
	return &Encoder{Level: qrcode.Low, Border: DefaultBorder}
}

// Encode returns the modules of content's QR symbol, 1 for dark.
func (e *Encoder) Encode(content string) (*bitmap.Bitmap, error) {
	if content == "" {
		return nil, errs.NewWarn("qr: empty content")
	}
	q, err := qrcode.New(content, e.Level)
	if err != nil {
		return nil, errs.Warnf("qr: encode: %v", err)
	}
	q.DisableBorder = true
	modules := q.Bitmap()

	border := max(e.Border, 0)
	size := len(modules) + 2*border
	rows := make([][]bool, size)
	for y := range rows {
		rows[y] = make([]bool, size)
	}
	for y, row := range modules {
		copy(rows[y+border][border:], row)
	}
	return bitmap.FromBools(rows), nil
}

// Resolver maps a short code to the text encoded into its QR symbol.
type Resolver func(ctx context.Context, code string) (string, error)

// Source is a bitmap.Source that encodes whatever Resolve returns for a code.
type Source struct {
	Resolve Resolver
	Encoder *Encoder
}

func NewSource(resolve Resolver) *Source {
	return &Source{Resolve: resolve, Encoder: NewEncoder()}
}

func (s *Source) Lookup(ctx context.Context, code string) (*bitmap.Bitmap, error) {
	content, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Encoder.Encode(content)
}
