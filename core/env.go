package core

import (
	"errors"
	"fmt"
	"strconv"
)

// Cell identifies a board position, 1-based.
type Cell int

func (c Cell) Hash() string {
	return strconv.Itoa(int(c))
}

// Action is a closed set of moves. The zero value is not a valid action.
type Action int8

const (
	Decrement Action = iota + 1
	Increment
	// Auto is the only action available on a shortcut entry
	Auto
)

var ErrUnknownAction = errors.New("unknown action")

func (a Action) Delta() int {
	switch a {
	case Decrement:
		return -1
	case Increment:
		return 1
	default:
		return 0
	}
}

func (a Action) Valid() bool {
	return a >= Decrement && a <= Auto
}

func (a Action) String() string {
	switch a {
	case Decrement:
		return "-1"
	case Increment:
		return "+1"
	case Auto:
		return "auto"
	default:
		return "invalid"
	}
}

func (a Action) Hash() string {
	return a.String()
}

// ParseAction is the inverse of Action.String. "1" is accepted for Increment.
func ParseAction(s string) (Action, error) {
	switch s {
	case "-1":
		return Decrement, nil
	case "+1", "1":
		return Increment, nil
	case "auto":
		return Auto, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Outcome of entering a cell
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "none"
	}
}

func (o Outcome) Terminal() bool {
	return o != OutcomeNone
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "won":
		*o = OutcomeWon
	case "lost":
		*o = OutcomeLost
	case "none", "":
		*o = OutcomeNone
	default:
		return fmt.Errorf("unknown outcome %q", string(b))
	}
	return nil
}

// Environment is the read-only MDP an agent acts in.
type Environment interface {
	MaxCell() Cell
	// Start returns the canonical first cell of every episode.
	Start() Cell
	IsShortcut(Cell) bool
	Outcome(Cell) Outcome
	Transition(Cell, Action) Cell
	Reward(Cell) float64
}

// QKey indexes a value table entry.
type QKey struct {
	State  Cell
	Action Action
}

func (k QKey) String() string {
	return fmt.Sprintf("(%d,%s)", k.State, k.Action)
}
