package board

import "github.com/zeu5/ladders-rl/core"

// Point is a (column, row) pair, both 1-based with row 1 at the bottom.
type Point struct {
	X float64
	Y float64
}

// CoordinateOf maps a cell to its (column, row). Odd rows run left to right,
// even rows right to left. Centered coordinates are shifted by -0.5 on both
// axes to address the middle of the cell when plotting.
func (b *Board) CoordinateOf(cell core.Cell, centered bool) Point {
	col, row := coordinateOf(cell, b.columns)
	if centered {
		return Point{X: float64(col) - 0.5, Y: float64(row) - 0.5}
	}
	return Point{X: float64(col), Y: float64(row)}
}

// Position is CoordinateOf without centering, as integers.
func (b *Board) Position(cell core.Cell) (col, row int) {
	return coordinateOf(cell, b.columns)
}

// CellOf is the inverse of Position.
func (b *Board) CellOf(col, row int) core.Cell {
	return cellOf(col, row, b.columns)
}

func coordinateOf(cell core.Cell, columns int) (int, int) {
	idx := int(cell) - 1
	row := idx/columns + 1
	offset := idx % columns
	if row%2 == 1 {
		return offset + 1, row
	}
	return columns - offset, row
}

func cellOf(col, row, columns int) core.Cell {
	if row%2 == 1 {
		return core.Cell((row-1)*columns + col)
	}
	return core.Cell(row*columns - col + 1)
}
