package policies

import (
	"fmt"

	"github.com/zeu5/ladders-rl/core"
	erand "golang.org/x/exp/rand"
)

// RandomAgent picks a legal action uniformly at random and never learns. It
// is the baseline the Q-learning agent is compared against.
type RandomAgent struct {
	env      core.Environment
	space    ActionSpace
	position core.Cell
	epsilon  float64
	rand     *erand.Rand
}

var _ core.Agent = &RandomAgent{}

func NewRandomAgent(env core.Environment, seed int64) *RandomAgent {
	if seed == 0 {
		seed = 1
	}
	return &RandomAgent{
		env:      env,
		space:    NewActionSpace(env),
		position: env.Start(),
		epsilon:  1,
		rand:     erand.New(erand.NewSource(uint64(seed))),
	}
}

func (r *RandomAgent) Reset(c core.Cell) {
	r.position = c
}

func (r *RandomAgent) Position() core.Cell {
	return r.position
}

// Epsilon is whatever the schedule last set. It does not change behaviour.
func (r *RandomAgent) Epsilon() float64 {
	return r.epsilon
}

func (r *RandomAgent) SetEpsilon(e float64) error {
	if !(e >= 0 && e <= 1) {
		return fmt.Errorf("%w: epsilon %v not in [0, 1]", ErrInvalidParam, e)
	}
	r.epsilon = e
	return nil
}

func (r *RandomAgent) Step() (*core.Step, error) {
	state := r.position
	actions := r.space.Actions(state)
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrTerminalState, state)
	}
	action := actions[r.rand.Intn(len(actions))]
	next := r.env.Transition(state, action)
	r.position = next
	return &core.Step{
		State:     state,
		Action:    action,
		Reward:    r.env.Reward(next),
		NextState: next,
	}, nil
}

func (r *RandomAgent) MaxQPerState() map[core.Cell]float64 {
	return map[core.Cell]float64{}
}

func (r *RandomAgent) Table() map[core.QKey]float64 {
	return map[core.QKey]float64{}
}

type RandomAgentConstructor struct {
	seed int64
}

var _ core.AgentConstructor = &RandomAgentConstructor{}

func NewRandomAgentConstructor(seed int64) *RandomAgentConstructor {
	return &RandomAgentConstructor{seed: seed}
}

func (c *RandomAgentConstructor) NewAgent(env core.Environment, run int) (core.Agent, error) {
	seed := c.seed
	if seed == 0 {
		seed = 1
	}
	return NewRandomAgent(env, seed+int64(run)), nil
}

// NewConstructor returns the agent constructor registered under name.
func NewConstructor(name string, params Params) (core.AgentConstructor, error) {
	switch name {
	case "", "qlearning":
		if err := params.Validate(); err != nil {
			return nil, err
		}
		return NewQLearningConstructor(params), nil
	case "random":
		return NewRandomAgentConstructor(params.Seed), nil
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}
