package policies

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/zeu5/ladders-rl/core"
	erand "golang.org/x/exp/rand"
)

// DefaultValue is the value of every (state, action) pair that has not been
// written yet. Exploitation and the update target both read through Get, so
// an unexplored action ties with any explored action whose value is still 0
// and beats every action already known to be negative.
const DefaultValue = 0.0

var (
	ErrIllegalAction = errors.New("action not legal in state")
	ErrTerminalState = errors.New("no actions available in terminal state")
)

// ActionSpace lists the legal actions of every cell.
type ActionSpace map[core.Cell][]core.Action

var moveActions = []core.Action{core.Decrement, core.Increment}

// NewActionSpace derives the action sets of a board once: shortcut entries
// only allow Auto, terminal cells allow nothing, everything else moves.
func NewActionSpace(env core.Environment) ActionSpace {
	space := make(ActionSpace)
	for c := core.Cell(1); c <= env.MaxCell(); c++ {
		switch {
		case env.Outcome(c).Terminal():
			space[c] = nil
		case env.IsShortcut(c):
			space[c] = []core.Action{core.Auto}
		default:
			space[c] = moveActions
		}
	}
	return space
}

func (s ActionSpace) Actions(c core.Cell) []core.Action {
	return s[c]
}

func (s ActionSpace) Legal(c core.Cell, a core.Action) bool {
	for _, la := range s[c] {
		if la == a {
			return true
		}
	}
	return false
}

type QTable struct {
	table map[core.Cell]map[core.Action]float64
	space ActionSpace

	rand *erand.Rand
}

func NewQTable(space ActionSpace, rand *erand.Rand) *QTable {
	return &QTable{
		table: make(map[core.Cell]map[core.Action]float64),
		space: space,
		rand:  rand,
	}
}

// Get returns the stored value or DefaultValue. It never inserts.
func (q *QTable) Get(state core.Cell, action core.Action) float64 {
	if values, ok := q.table[state]; ok {
		if v, ok := values[action]; ok {
			return v
		}
	}
	return DefaultValue
}

func (q *QTable) Set(state core.Cell, action core.Action, val float64) error {
	if !q.space.Legal(state, action) {
		return fmt.Errorf("%w: %s in %d", ErrIllegalAction, action, state)
	}
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[core.Action]float64)
	}
	q.table[state][action] = val
	return nil
}

// Max is the best value over the legal actions of state, 0 when there are
// none.
func (q *QTable) Max(state core.Cell) float64 {
	actions := q.space.Actions(state)
	if len(actions) == 0 {
		return 0
	}
	maxVal := math.Inf(-1)
	for _, a := range actions {
		if v := q.Get(state, a); v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// Best returns the action with the highest value, breaking ties uniformly at
// random.
func (q *QTable) Best(state core.Cell) (core.Action, float64, error) {
	actions := q.space.Actions(state)
	if len(actions) == 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrTerminalState, state)
	}
	maxActions := make([]core.Action, 0, len(actions))
	maxVal := math.Inf(-1)
	for _, a := range actions {
		val := q.Get(state, a)
		if val > maxVal {
			maxActions = maxActions[:0]
			maxVal = val
		}
		if val == maxVal {
			maxActions = append(maxActions, a)
		}
	}
	if len(maxActions) == 1 {
		return maxActions[0], maxVal, nil
	}
	return maxActions[q.rand.Intn(len(maxActions))], maxVal, nil
}

// States returns the states with at least one stored value, ascending.
func (q *QTable) States() []core.Cell {
	out := make([]core.Cell, 0, len(q.table))
	for s := range q.table {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (q *QTable) Size() int {
	n := 0
	for _, values := range q.table {
		n += len(values)
	}
	return n
}

func (q *QTable) Entries() map[core.QKey]float64 {
	out := make(map[core.QKey]float64, q.Size())
	for s, values := range q.table {
		for a, v := range values {
			out[core.QKey{State: s, Action: a}] = v
		}
	}
	return out
}
