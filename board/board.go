// Package board defines the snakes-and-ladders MDP: the state space, the
// deterministic transition and reward functions and the serpentine mapping
// between cells and board coordinates.
package board

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zeu5/ladders-rl/core"
)

const (
	DefaultWinReward  = 100.0
	DefaultLossReward = -100.0
	DefaultStepReward = -1.0
)

var (
	ErrDimensions        = errors.New("board needs at least 2 rows and 2 columns")
	ErrCellOutOfRange    = errors.New("cell out of range")
	ErrDuplicateShortcut = errors.New("shortcut entry defined more than once")
	ErrInvalidReward     = errors.New("invalid reward")
)

// Shortcut is a ladder (From < To) or a chute (From > To).
type Shortcut struct {
	From core.Cell `json:"from"`
	To   core.Cell `json:"to"`
}

type Config struct {
	Rows    int
	Columns int
	Wins    []core.Cell
	Losses  []core.Cell
	Ladders []Shortcut
	Chutes  []Shortcut

	// Zero rewards fall back to the package defaults.
	WinReward  float64
	LossReward float64
	StepReward float64
}

// Board is immutable after New and safe for concurrent readers.
type Board struct {
	rows    int
	columns int
	maxCell core.Cell

	wins      map[core.Cell]bool
	losses    map[core.Cell]bool
	ladders   []Shortcut
	chutes    []Shortcut
	shortcuts map[core.Cell]core.Cell

	terminalReward map[core.Cell]float64
	stepReward     float64
}

var _ core.Environment = &Board{}

func New(cfg Config) (*Board, error) {
	if cfg.Rows < 2 || cfg.Columns < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrDimensions, cfg.Rows, cfg.Columns)
	}
	winReward, lossReward, stepReward := cfg.WinReward, cfg.LossReward, cfg.StepReward
	if winReward == 0 {
		winReward = DefaultWinReward
	}
	if lossReward == 0 {
		lossReward = DefaultLossReward
	}
	if stepReward == 0 {
		stepReward = DefaultStepReward
	}
	switch {
	case winReward < 0:
		return nil, fmt.Errorf("%w: win reward %v must be positive", ErrInvalidReward, winReward)
	case lossReward > 0:
		return nil, fmt.Errorf("%w: loss reward %v must be negative", ErrInvalidReward, lossReward)
	case stepReward > 0:
		return nil, fmt.Errorf("%w: step reward %v must be negative", ErrInvalidReward, stepReward)
	}

	b := &Board{
		rows:           cfg.Rows,
		columns:        cfg.Columns,
		maxCell:        core.Cell(cfg.Rows * cfg.Columns),
		wins:           make(map[core.Cell]bool),
		losses:         make(map[core.Cell]bool),
		shortcuts:      make(map[core.Cell]core.Cell),
		terminalReward: make(map[core.Cell]float64),
		stepReward:     stepReward,
	}

	for _, c := range cfg.Wins {
		if err := b.checkCell("win", c); err != nil {
			return nil, err
		}
		b.wins[c] = true
	}
	for _, c := range cfg.Losses {
		if err := b.checkCell("loss", c); err != nil {
			return nil, err
		}
		// a cell listed as both is a win
		if !b.wins[c] {
			b.losses[c] = true
		}
	}

	add := func(kind string, s Shortcut) error {
		if err := b.checkCell(kind+" entry", s.From); err != nil {
			return err
		}
		if err := b.checkCell(kind+" exit", s.To); err != nil {
			return err
		}
		if s.From == s.To {
			return fmt.Errorf("%w: %s %d leads to itself", ErrDuplicateShortcut, kind, s.From)
		}
		if _, ok := b.shortcuts[s.From]; ok {
			return fmt.Errorf("%w: %s entry %d", ErrDuplicateShortcut, kind, s.From)
		}
		b.shortcuts[s.From] = s.To
		return nil
	}
	for _, s := range cfg.Ladders {
		if err := add("ladder", s); err != nil {
			return nil, err
		}
		b.ladders = append(b.ladders, s)
	}
	for _, s := range cfg.Chutes {
		if err := add("chute", s); err != nil {
			return nil, err
		}
		b.chutes = append(b.chutes, s)
	}

	for c := range b.wins {
		b.terminalReward[c] = winReward
	}
	for c := range b.losses {
		b.terminalReward[c] = lossReward
	}
	return b, nil
}

func (b *Board) checkCell(kind string, c core.Cell) error {
	if !b.Contains(c) {
		return fmt.Errorf("%w: %s cell %d not in [1, %d]", ErrCellOutOfRange, kind, c, b.maxCell)
	}
	return nil
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Columns() int { return b.columns }
func (b *Board) MaxCell() core.Cell { return b.maxCell }
func (b *Board) Start() core.Cell { return 1 }
func (b *Board) StepReward() float64 { return b.stepReward }
func (b *Board) Contains(c core.Cell) bool { return c >= 1 && c <= b.maxCell }

func (b *Board) IsShortcut(c core.Cell) bool {
	_, ok := b.shortcuts[c]
	return ok
}

// ShortcutExit returns the destination of a shortcut entry.
func (b *Board) ShortcutExit(c core.Cell) (core.Cell, bool) {
	to, ok := b.shortcuts[c]
	return to, ok
}

func (b *Board) IsWin(c core.Cell) bool { return b.wins[c] }
func (b *Board) IsLoss(c core.Cell) bool { return b.losses[c] }

func (b *Board) Outcome(c core.Cell) core.Outcome {
	switch {
	case b.wins[c]:
		return core.OutcomeWon
	case b.losses[c]:
		return core.OutcomeLost
	default:
		return core.OutcomeNone
	}
}

// Transition follows a shortcut from its entry whatever the action is,
// otherwise moves by the action's delta clamped to the board.
func (b *Board) Transition(state core.Cell, action core.Action) core.Cell {
	if to, ok := b.shortcuts[state]; ok {
		return to
	}
	next := state + core.Cell(action.Delta())
	if next < 1 {
		return 1
	}
	if next > b.maxCell {
		return b.maxCell
	}
	return next
}

func (b *Board) Reward(next core.Cell) float64 {
	if r, ok := b.terminalReward[next]; ok {
		return r
	}
	return b.stepReward
}

func (b *Board) Wins() []core.Cell { return sortedCells(b.wins) }
func (b *Board) Losses() []core.Cell { return sortedCells(b.losses) }

func (b *Board) Ladders() []Shortcut { return sortedShortcuts(b.ladders) }
func (b *Board) Chutes() []Shortcut { return sortedShortcuts(b.chutes) }

func sortedCells(set map[core.Cell]bool) []core.Cell {
	out := make([]core.Cell, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedShortcuts(in []Shortcut) []Shortcut {
	out := make([]Shortcut, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}
