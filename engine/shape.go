package engine

import (
	"fmt"
	"iter"
)

// Shape is a rectangular pattern of occupied cells, indexed [row][col].
type Shape struct {
	Name  string
	cells [][]bool
}

// NewShape builds a shape from one string per row, '#' marking an occupied
// cell. It panics on an empty or ragged pattern.
func NewShape(name string, rows ...string) Shape {
	if len(rows) == 0 || len(rows[0]) == 0 {
		panic(fmt.Sprintf("engine: shape %q is empty", name))
	}
	cells := make([][]bool, len(rows))
	for y, row := range rows {
		if len(row) != len(rows[0]) {
			panic(fmt.Sprintf("engine: shape %q row %d has width %d, want %d", name, y, len(row), len(rows[0])))
		}
		cells[y] = make([]bool, len(row))
		for x := range row {
			cells[y][x] = row[x] == '#'
		}
	}
	return Shape{Name: name, cells: cells}
}

func (s Shape) Width() int { return len(s.cells[0]) }

func (s Shape) Height() int { return len(s.cells) }

// Filled reports whether the shape occupies (dx, dy) of its bounding box.
func (s Shape) Filled(dx, dy int) bool {
	if dy < 0 || dy >= len(s.cells) || dx < 0 || dx >= len(s.cells[dy]) {
		return false
	}
	return s.cells[dy][dx]
}

// Cells yields the occupied cells relative to the shape's top-left corner,
// row by row.
func (s Shape) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for dy, row := range s.cells {
			for dx, on := range row {
				if on && !yield(Cell{X: dx, Y: dy}) {
					return
				}
			}
		}
	}
}

// Tetrominoes is the default free-fall catalog.
var Tetrominoes = []Shape{
	NewShape("I", "####"),
	NewShape("O", "##", "##"),
	NewShape("T", ".#.", "###"),
	NewShape("S", ".##", "##."),
	NewShape("Z", "##.", ".##"),
	NewShape("L", "#.", "#.", "##"),
	NewShape("J", ".#", ".#", "##"),
}

// ShapeByName looks a shape up in the default catalog.
func ShapeByName(name string) (Shape, bool) {
	for _, s := range Tetrominoes {
		if s.Name == name {
			return s, true
		}
	}
	return Shape{}, false
}

// Collides reports whether shape, with its top-left cell at (offsetX, offsetY),
// leaves the grid sideways, reaches past the floor or overlaps a settled cell.
// Cells above the grid are only checked against the side walls.
func Collides(shape Shape, g *Grid, offsetX, offsetY int) bool {
	for c := range shape.Cells() {
		x := offsetX + c.X
		y := offsetY + c.Y
		if x < 0 || x >= g.cols || y >= g.rows {
			return true
		}
		if y >= 0 && g.cells[y*g.cols+x] {
			return true
		}
	}
	return false
}
