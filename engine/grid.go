// Package engine implements the discrete-time grid simulation behind the
// falling-block animations: a free-fall simulator that spawns random pieces
// and clears full rows, and a pattern sequencer that builds a target bitmap
// column by column. Both are driven by timestamps from a Scheduler and paint
// themselves onto a Surface.
package engine

import (
	"fmt"
	"strings"
)

// Cell is a grid coordinate. Y grows downwards.
type Cell struct {
	X, Y int
}

// Grid is a fixed-size occupancy map stored row-major. The backing array is
// allocated once; row clears shift rows in place.
type Grid struct {
	cols  int
	rows  int
	cells []bool
}

// NewGrid creates an empty grid. It panics if either dimension is not positive.
func NewGrid(cols, rows int) *Grid {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("engine: invalid grid size %dx%d", cols, rows))
	}
	return &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]bool, cols*rows),
	}
}

func (g *Grid) Cols() int { return g.cols }

func (g *Grid) Rows() int { return g.rows }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Settled reports whether (x, y) holds a settled cell. Cells off the grid are
// never settled.
func (g *Grid) Settled(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.cells[y*g.cols+x]
}

// Settle marks (x, y) as settled and reports whether the cell was on the grid.
func (g *Grid) Settle(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.cols+x] = true
	return true
}

// Reset empties every cell.
func (g *Grid) Reset() {
	clear(g.cells)
}

// Count returns the number of settled cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// RowFull reports whether every cell of row y is settled.
func (g *Grid) RowFull(y int) bool {
	for _, c := range g.cells[y*g.cols : (y+1)*g.cols] {
		if !c {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row and returns how many were removed.
// Rows are scanned bottom to top; after a removal the same index is checked
// again because the row above has shifted into it.
func (g *Grid) ClearFullRows() int {
	cleared := 0
	for y := g.rows - 1; y >= 0; {
		if !g.RowFull(y) {
			y--
			continue
		}
		g.removeRow(y)
		cleared++
	}
	return cleared
}

// removeRow shifts rows [0, y) down by one and empties row 0.
func (g *Grid) removeRow(y int) {
	copy(g.cells[g.cols:(y+1)*g.cols], g.cells[:y*g.cols])
	clear(g.cells[:g.cols])
}

// String renders the grid one row per line, '#' for settled and '.' for empty.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.cols + 1) * g.rows)
	for y := 0; y < g.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < g.cols; x++ {
			if g.cells[y*g.cols+x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
