// Package bitmap holds the target patterns the pattern sequencer reproduces
// and the Source interface used to look them up by short code.
package bitmap

import (
	"context"

	"github.com/plus3/blockfall/errs"
)

// ErrNotFound is returned by a Source when no pattern exists for a code.
var ErrNotFound = errs.NewWarn("bitmap: code not found")

// Bitmap is a rectangular matrix of 0/1 values. Matrix is indexed [y][x].
type Bitmap struct {
	Matrix [][]int `json:"matrix"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// Source looks up a target bitmap by an opaque short code.
type Source interface {
	Lookup(ctx context.Context, code string) (*Bitmap, error)
}

// New builds a validated bitmap whose declared size is taken from matrix.
func New(matrix [][]int) (*Bitmap, error) {
	b := &Bitmap{Matrix: matrix, Height: len(matrix)}
	if len(matrix) > 0 {
		b.Width = len(matrix[0])
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromBools converts a boolean module grid, as produced by QR encoders.
func FromBools(rows [][]bool) *Bitmap {
	b := &Bitmap{Height: len(rows), Matrix: make([][]int, len(rows))}
	if len(rows) > 0 {
		b.Width = len(rows[0])
	}
	for y, row := range rows {
		b.Matrix[y] = make([]int, len(row))
		for x, on := range row {
			if on {
				b.Matrix[y][x] = 1
			}
		}
	}
	return b
}

// Validate checks that the matrix matches its declared size and only holds 0
// and 1. All failures are errs.Warn: the input is wrong, not the program.
func (b *Bitmap) Validate() error {
	if b == nil {
		return errs.NewWarn("bitmap: nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return errs.Warnf("bitmap: empty size %dx%d", b.Width, b.Height)
	}
	if len(b.Matrix) != b.Height {
		return errs.Warnf("bitmap: %d rows, declared height %d", len(b.Matrix), b.Height)
	}
	for y, row := range b.Matrix {
		if len(row) != b.Width {
			return errs.Warnf("bitmap: row %d has %d cells, declared width %d", y, len(row), b.Width)
		}
		for x, v := range row {
			if v != 0 && v != 1 {
				return errs.Warnf("bitmap: cell (%d,%d) is %d, want 0 or 1", x, y, v)
			}
		}
	}
	return nil
}

// At reports whether (x, y) is part of the pattern.
func (b *Bitmap) At(x, y int) bool {
	return b.Matrix[y][x] == 1
}

// Count returns the number of set cells.
func (b *Bitmap) Count() int {
	n := 0
	for _, row := range b.Matrix {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{Width: b.Width, Height: b.Height, Matrix: make([][]int, len(b.Matrix))}
	for y, row := range b.Matrix {
		c.Matrix[y] = append([]int(nil), row...)
	}
	return c
}

// Static is a Source backed by a fixed map, mostly useful in tests and demos.
type Static map[string]*Bitmap

func (s Static) Lookup(ctx context.Context, code string) (*Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := s[code]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}
