package board

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ladders-rl/core"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		b, err := New(Config{Rows: 10, Columns: 10, Wins: cells(100), Losses: cells(50)})
		require.NoError(t, err)
		assert.Equal(t, core.Cell(100), b.MaxCell())
		assert.Equal(t, core.Cell(1), b.Start())
		assert.Equal(t, DefaultWinReward, b.Reward(100))
		assert.Equal(t, DefaultLossReward, b.Reward(50))
		assert.Equal(t, DefaultStepReward, b.Reward(7))
	})

	t.Run("cell listed as win and loss is a win", func(t *testing.T) {
		b, err := New(Config{Rows: 2, Columns: 2, Wins: cells(4), Losses: cells(3, 4)})
		require.NoError(t, err)
		assert.Equal(t, core.OutcomeWon, b.Outcome(4))
		assert.Equal(t, core.OutcomeLost, b.Outcome(3))
		assert.Equal(t, core.OutcomeNone, b.Outcome(2))
		assert.Equal(t, []core.Cell{3}, b.Losses())
	})

	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"too small", Config{Rows: 1, Columns: 5}, ErrDimensions},
		{"win out of range", Config{Rows: 2, Columns: 2, Wins: cells(5)}, ErrCellOutOfRange},
		{"loss out of range", Config{Rows: 2, Columns: 2, Losses: cells(0)}, ErrCellOutOfRange},
		{"ladder exit out of range", Config{Rows: 2, Columns: 2, Ladders: shortcuts([2]int{2, 9})}, ErrCellOutOfRange},
		{"duplicate entry", Config{Rows: 3, Columns: 3, Ladders: shortcuts([2]int{2, 8}), Chutes: shortcuts([2]int{2, 1})}, ErrDuplicateShortcut},
		{"self loop", Config{Rows: 3, Columns: 3, Chutes: shortcuts([2]int{4, 4})}, ErrDuplicateShortcut},
		{"positive step", Config{Rows: 2, Columns: 2, StepReward: 1}, ErrInvalidReward},
		{"negative win", Config{Rows: 2, Columns: 2, WinReward: -5}, ErrInvalidReward},
		{"positive loss", Config{Rows: 2, Columns: 2, LossReward: 5}, ErrInvalidReward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	for _, dims := range [][2]int{{10, 10}, {3, 4}, {5, 2}} {
		b, err := New(Config{Rows: dims[0], Columns: dims[1]})
		require.NoError(t, err)
		for row := 1; row <= b.Rows(); row++ {
			for col := 1; col <= b.Columns(); col++ {
				c := b.CellOf(col, row)
				require.True(t, b.Contains(c), "cell %d", c)
				gotCol, gotRow := b.Position(c)
				assert.Equal(t, col, gotCol)
				assert.Equal(t, row, gotRow)
				assert.Equal(t, Point{X: float64(col), Y: float64(row)}, b.CoordinateOf(c, false))
			}
		}
	}
}

func TestSerpentine(t *testing.T) {
	b, err := New(Config{Rows: 10, Columns: 10})
	require.NoError(t, err)
	for _, tt := range []struct {
		cell     core.Cell
		col, row int
	}{
		{1, 1, 1}, {10, 10, 1}, {11, 10, 2}, {20, 1, 2}, {21, 1, 3}, {100, 1, 10}, {91, 10, 10},
	} {
		col, row := b.Position(tt.cell)
		assert.Equal(t, tt.col, col, "column of %d", tt.cell)
		assert.Equal(t, tt.row, row, "row of %d", tt.cell)
	}
	assert.Equal(t, Point{X: 0.5, Y: 0.5}, b.CoordinateOf(1, true))
	assert.Equal(t, Point{X: 9.5, Y: 1.5}, b.CoordinateOf(11, true))
}

func TestTransition(t *testing.T) {
	b, err := New(Config{
		Rows:    10,
		Columns: 10,
		Wins:    cells(100),
		Ladders: shortcuts([2]int{5, 9}),
		Chutes:  shortcuts([2]int{40, 12}),
	})
	require.NoError(t, err)

	t.Run("shortcut precedence", func(t *testing.T) {
		for _, a := range []core.Action{core.Decrement, core.Increment, core.Auto} {
			assert.Equal(t, core.Cell(9), b.Transition(5, a), a.String())
		}
		assert.Equal(t, core.Cell(12), b.Transition(40, core.Auto))
	})

	t.Run("boundary clamp", func(t *testing.T) {
		assert.Equal(t, core.Cell(100), b.Transition(100, core.Increment))
		assert.Equal(t, core.Cell(1), b.Transition(1, core.Decrement))
	})

	t.Run("moves", func(t *testing.T) {
		assert.Equal(t, core.Cell(8), b.Transition(7, core.Increment))
		assert.Equal(t, core.Cell(6), b.Transition(7, core.Decrement))
	})

	assert.True(t, b.IsShortcut(5))
	assert.False(t, b.IsShortcut(9))
	assert.Equal(t, []Shortcut{{From: 5, To: 9}}, b.Ladders())
	assert.Equal(t, []Shortcut{{From: 40, To: 12}}, b.Chutes())
}

func TestEpisodeOnSmallBoard(t *testing.T) {
	b, err := New(Config{Rows: 2, Columns: 2, Wins: cells(4), WinReward: 10})
	require.NoError(t, err)

	cell := b.Start()
	steps := 0
	reward := 0.0
	for !b.Outcome(cell).Terminal() {
		cell = b.Transition(cell, core.Increment)
		reward = b.Reward(cell)
		steps++
	}
	assert.Equal(t, 3, steps)
	assert.Equal(t, core.Cell(4), cell)
	assert.Equal(t, 10.0, reward)
	assert.Equal(t, -1.0, b.Reward(2))
}

func TestParseLayout(t *testing.T) {
	const input = `# counts: chutes ladders losses wins
1 2 1 1

0 0 2 1
2 0 1 2
1 1 0 1
1 0
0 2
`
	layout, err := ParseLayout(strings.NewReader(input), 3, 3)
	require.NoError(t, err)
	// row 0 is the top row: (0,0) is cell 7, (2,1) is cell 2
	assert.Equal(t, []Shortcut{{From: 7, To: 2}}, layout.Chutes)
	assert.Equal(t, []Shortcut{{From: 1, To: 4}, {From: 5, To: 8}}, layout.Ladders)
	assert.Equal(t, []core.Cell{6}, layout.Losses)
	assert.Equal(t, []core.Cell{9}, layout.Wins)

	b, err := New(layout.Config(Rewards{Win: 5}))
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.Reward(9))

	for name, tt := range map[string]struct {
		input string
		err   error
	}{
		"negative count": {"-1 0 0 0\n", ErrLayout},
		"short header":   {"1 0 0\n", ErrLayout},
		"not a number":   {"0 0 0 x\n", ErrLayout},
		"missing lines":  {"0 0 1 0\n", ErrLayout},
		"outside board":  {"0 0 0 1\n3 0\n", ErrCellOutOfRange},
		"huge count":     {"0 0 0 900000000000\n", ErrLayout},
		"too many cells": {"0 0 10 0\n", ErrLayout},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLayout(strings.NewReader(tt.input), 3, 3)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err = ParseLayout(strings.NewReader("0 0 0 0\n"), 1, 3)
	assert.ErrorIs(t, err, ErrDimensions)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"advanced", "extra", "tutorial"}, PresetNames())
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			require.NoError(t, err)
			b, err := New(cfg)
			require.NoError(t, err)
			assert.Equal(t, core.Cell(100), b.MaxCell())
			assert.NotEmpty(t, b.Wins())
		})
	}

	cfg, err := Preset("extra")
	require.NoError(t, err)
	cfg.Wins[0] = 1
	again, err := Preset("extra")
	require.NoError(t, err)
	assert.Equal(t, core.Cell(100), again.Wins[0])

	_, err = Preset("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPrinter(t *testing.T) {
	b, err := New(Config{Rows: 2, Columns: 2, Wins: cells(4), Losses: cells(3), Ladders: shortcuts([2]int{2, 4})})
	require.NoError(t, err)
	p := NewPrinter(false)

	buf := new(bytes.Buffer)
	p.PrintBoard(buf, b, []core.Cell{1, 2, 4})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "4W")
	assert.Contains(t, lines[0], "3L")
	assert.Contains(t, lines[1], "2^")

	buf.Reset()
	p.PrintValues(buf, b, map[core.Cell]float64{1: 1.5}, map[core.Cell]core.Action{1: core.Increment})
	assert.Contains(t, buf.String(), "1.50 +1")

	buf.Reset()
	p.PrintSummary(buf, b)
	assert.Equal(t, "Wins: [4]\nLosses: [3]\nLadders: 2->4\nChutes: \n", buf.String())
}
