package board

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zeu5/ladders-rl/core"
)

var ErrLayout = errors.New("malformed board layout")

// Layout is a parsed board description, already in cell numbering.
type Layout struct {
	Rows    int
	Columns int
	Chutes  []Shortcut
	Ladders []Shortcut
	Losses  []core.Cell
	Wins    []core.Cell
}

// Rewards are the per-board reward constants. Zero values take the defaults.
type Rewards struct {
	Win  float64
	Loss float64
	Step float64
}

func (l Layout) Config(r Rewards) Config {
	return Config{
		Rows:       l.Rows,
		Columns:    l.Columns,
		Wins:       l.Wins,
		Losses:     l.Losses,
		Ladders:    l.Ladders,
		Chutes:     l.Chutes,
		WinReward:  r.Win,
		LossReward: r.Loss,
		StepReward: r.Step,
	}
}

func ReadLayout(path string, rows, columns int) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, err
	}
	defer f.Close()
	return ParseLayout(f, rows, columns)
}

// ParseLayout reads a description of the form
//
//	n m s t
//	r1 c1 r2 c2   (n chutes)
//	r1 c1 r2 c2   (m ladders)
//	r c           (s loss cells)
//	r c           (t win cells)
//
// Coordinates are 0-based with row 0 at the top of the board. Blank lines
// and lines starting with '#' are ignored.
func ParseLayout(r io.Reader, rows, columns int) (Layout, error) {
	if rows < 2 || columns < 2 {
		return Layout{}, fmt.Errorf("%w: got %dx%d", ErrDimensions, rows, columns)
	}
	p := &layoutParser{
		scanner: bufio.NewScanner(r),
		rows:    rows,
		columns: columns,
	}

	counts, err := p.ints(4)
	if err != nil {
		return Layout{}, err
	}
	for _, c := range counts {
		if c < 0 {
			return Layout{}, fmt.Errorf("%w: line %d: negative count", ErrLayout, p.line)
		}
		// every entry names a distinct cell
		if c > rows*columns {
			return Layout{}, fmt.Errorf("%w: line %d: count %d exceeds %d cells", ErrLayout, p.line, c, rows*columns)
		}
	}

	layout := Layout{Rows: rows, Columns: columns}
	if layout.Chutes, err = p.shortcuts(counts[0]); err != nil {
		return Layout{}, err
	}
	if layout.Ladders, err = p.shortcuts(counts[1]); err != nil {
		return Layout{}, err
	}
	if layout.Losses, err = p.cells(counts[2]); err != nil {
		return Layout{}, err
	}
	if layout.Wins, err = p.cells(counts[3]); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

type layoutParser struct {
	scanner *bufio.Scanner
	line    int
	rows    int
	columns int
}

func (p *layoutParser) next() ([]string, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: unexpected end of input after line %d", ErrLayout, p.line)
}

func (p *layoutParser) ints(n int) ([]int, error) {
	fields, err := p.next()
	if err != nil {
		return nil, err
	}
	if len(fields) != n {
		return nil, fmt.Errorf("%w: line %d: want %d values, got %d", ErrLayout, p.line, n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not an integer", ErrLayout, p.line, f)
		}
		out[i] = v
	}
	return out, nil
}

// cell converts a top-left based (row, col) pair into a cell number.
func (p *layoutParser) cell(row, col int) (core.Cell, error) {
	if row < 0 || row >= p.rows || col < 0 || col >= p.columns {
		return 0, fmt.Errorf("%w: line %d: (%d, %d) outside %dx%d board", ErrCellOutOfRange, p.line, row, col, p.rows, p.columns)
	}
	return cellOf(col+1, p.rows-row, p.columns), nil
}

func (p *layoutParser) shortcuts(n int) ([]Shortcut, error) {
	out := make([]Shortcut, 0)
	for i := 0; i < n; i++ {
		v, err := p.ints(4)
		if err != nil {
			return nil, err
		}
		from, err := p.cell(v[0], v[1])
		if err != nil {
			return nil, err
		}
		to, err := p.cell(v[2], v[3])
		if err != nil {
			return nil, err
		}
		out = append(out, Shortcut{From: from, To: to})
	}
	return out, nil
}

func (p *layoutParser) cells(n int) ([]core.Cell, error) {
	out := make([]core.Cell, 0)
	for i := 0; i < n; i++ {
		v, err := p.ints(2)
		if err != nil {
			return nil, err
		}
		c, err := p.cell(v[0], v[1])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
