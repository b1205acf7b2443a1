package analysis

import (
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/core"
	"gonum.org/v1/gonum/mat"
)

// ValueGrid lays per-cell values out in board geometry: matrix row 0 is the
// top board row, column 0 the leftmost column. Missing cells are 0.
func ValueGrid(b *board.Board, values map[core.Cell]float64) *mat.Dense {
	rows, cols := b.Rows(), b.Columns()
	grid := mat.NewDense(rows, cols, nil)
	for c := core.Cell(1); c <= b.MaxCell(); c++ {
		v, ok := values[c]
		if !ok {
			continue
		}
		col, row := b.Position(c)
		grid.Set(rows-row, col-1, v)
	}
	return grid
}

// GridRange returns the smallest and largest entry of a grid.
func GridRange(grid mat.Matrix) (float64, float64) {
	return mat.Min(grid), mat.Max(grid)
}
