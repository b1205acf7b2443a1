package core

type Agent interface {
	// Reset places the agent on the given cell.
	Reset(Cell)
	Position() Cell
	// Step chooses an action from the current position, applies it, learns
	// from the outcome and moves to the next cell.
	Step() (*Step, error)
	Epsilon() float64
	SetEpsilon(float64) error
	MaxQPerState() map[Cell]float64
	Table() map[QKey]float64
}

type AgentConstructor interface {
	// NewAgent creates an agent with its own table for the given run number.
	NewAgent(Environment, int) (Agent, error)
}

// Schedule maps a 1-based episode index to an exploration rate.
type Schedule interface {
	Epsilon(int) float64
}
