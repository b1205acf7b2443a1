package policies

import (
	"errors"
	"fmt"

	"github.com/zeu5/ladders-rl/core"
	erand "golang.org/x/exp/rand"
)

var ErrInvalidParam = errors.New("invalid agent parameter")

type Params struct {
	Alpha   float64 `json:"alpha"`
	Gamma   float64 `json:"gamma"`
	Epsilon float64 `json:"epsilon"`
	Seed    int64   `json:"seed"`
}

func (p Params) Validate() error {
	if !(p.Alpha > 0 && p.Alpha <= 1) {
		return fmt.Errorf("%w: alpha %v not in (0, 1]", ErrInvalidParam, p.Alpha)
	}
	if p.Gamma < 0 || p.Gamma > 1 {
		return fmt.Errorf("%w: gamma %v not in [0, 1]", ErrInvalidParam, p.Gamma)
	}
	if p.Epsilon < 0 || p.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v not in [0, 1]", ErrInvalidParam, p.Epsilon)
	}
	return nil
}

// QLearning is a tabular epsilon-greedy Q-learning agent.
type QLearning struct {
	env    core.Environment
	params Params

	epsilon  float64
	position core.Cell
	space    ActionSpace
	qTable   *QTable
	rand     *erand.Rand
}

var _ core.Agent = &QLearning{}

func NewQLearning(env core.Environment, params Params) (*QLearning, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	seed := params.Seed
	if seed == 0 {
		seed = 1
	}
	rand := erand.New(erand.NewSource(uint64(seed)))
	space := NewActionSpace(env)
	return &QLearning{
		env:      env,
		params:   params,
		epsilon:  params.Epsilon,
		position: env.Start(),
		space:    space,
		qTable:   NewQTable(space, rand),
		rand:     rand,
	}, nil
}

func (q *QLearning) Reset(c core.Cell) {
	q.position = c
}

func (q *QLearning) Position() core.Cell {
	return q.position
}

func (q *QLearning) Epsilon() float64 {
	return q.epsilon
}

func (q *QLearning) SetEpsilon(e float64) error {
	if !(e >= 0 && e <= 1) {
		return fmt.Errorf("%w: epsilon %v not in [0, 1]", ErrInvalidParam, e)
	}
	q.epsilon = e
	return nil
}

// Hyperparameters returns alpha, the initial epsilon and gamma.
func (q *QLearning) Hyperparameters() (float64, float64, float64) {
	return q.params.Alpha, q.params.Epsilon, q.params.Gamma
}

func (q *QLearning) Actions(c core.Cell) []core.Action {
	return q.space.Actions(c)
}

func (q *QLearning) QTable() *QTable {
	return q.qTable
}

// ChooseAction is epsilon-greedy over the legal actions of state.
func (q *QLearning) ChooseAction(state core.Cell) (core.Action, error) {
	actions := q.space.Actions(state)
	if len(actions) == 0 {
		return 0, fmt.Errorf("%w: %d", ErrTerminalState, state)
	}
	if len(actions) == 1 {
		return actions[0], nil
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], nil
	}
	a, _, err := q.qTable.Best(state)
	return a, err
}

// Update applies Q(s,a) += alpha * (r + gamma * max_a' Q(s',a') - Q(s,a)).
// Terminal next states contribute 0.
func (q *QLearning) Update(state core.Cell, action core.Action, reward float64, next core.Cell) error {
	cur := q.qTable.Get(state, action)
	target := reward + q.params.Gamma*q.qTable.Max(next)
	return q.qTable.Set(state, action, cur+q.params.Alpha*(target-cur))
}

func (q *QLearning) Step() (*core.Step, error) {
	state := q.position
	action, err := q.ChooseAction(state)
	if err != nil {
		return nil, err
	}
	next := q.env.Transition(state, action)
	reward := q.env.Reward(next)
	if err := q.Update(state, action, reward, next); err != nil {
		return nil, err
	}
	q.position = next
	return &core.Step{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: next,
	}, nil
}

func (q *QLearning) MaxQPerState() map[core.Cell]float64 {
	out := make(map[core.Cell]float64)
	for _, s := range q.qTable.States() {
		out[s] = q.qTable.Max(s)
	}
	return out
}

// GreedyPolicyPerState returns the argmax action of every visited state.
// States are walked in ascending order so ties draw from the random source
// in a reproducible order.
func (q *QLearning) GreedyPolicyPerState() map[core.Cell]core.Action {
	out := make(map[core.Cell]core.Action)
	for _, s := range q.qTable.States() {
		a, _, err := q.qTable.Best(s)
		if err != nil {
			continue
		}
		out[s] = a
	}
	return out
}

// ExpectedValuePerState averages the values of every visited state over its
// legal actions with uniform weights.
func (q *QLearning) ExpectedValuePerState() map[core.Cell]float64 {
	out := make(map[core.Cell]float64)
	for _, s := range q.qTable.States() {
		actions := q.space.Actions(s)
		if len(actions) == 0 {
			continue
		}
		sum := float64(0)
		for _, a := range actions {
			sum += q.qTable.Get(s, a)
		}
		out[s] = sum / float64(len(actions))
	}
	return out
}

func (q *QLearning) Table() map[core.QKey]float64 {
	return q.qTable.Entries()
}

// Load copies a persisted table into the agent. Entries that are not legal
// on this board are rejected and nothing is loaded.
func (q *QLearning) Load(entries map[core.QKey]float64) error {
	for k := range entries {
		if !q.space.Legal(k.State, k.Action) {
			return fmt.Errorf("%w: %s", ErrIllegalAction, k)
		}
	}
	for k, v := range entries {
		if err := q.qTable.Set(k.State, k.Action, v); err != nil {
			return err
		}
	}
	return nil
}

type QLearningConstructor struct {
	params Params
}

var _ core.AgentConstructor = &QLearningConstructor{}

func NewQLearningConstructor(params Params) *QLearningConstructor {
	return &QLearningConstructor{
		params: params,
	}
}

// NewAgent offsets the seed by the run number so parallel runs differ but
// stay reproducible.
func (c *QLearningConstructor) NewAgent(env core.Environment, run int) (core.Agent, error) {
	params := c.params
	if params.Seed == 0 {
		params.Seed = 1
	}
	params.Seed += int64(run)
	return NewQLearning(env, params)
}
