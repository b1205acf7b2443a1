package core

type Step struct {
	State     Cell
	Action    Action
	Reward    float64
	NextState Cell
}

type Trace struct {
	start Cell
	steps []*Step
}

func NewTrace(start Cell) *Trace {
	return &Trace{
		start: start,
		steps: make([]*Step, 0),
	}
}

func (t *Trace) AddStep(s *Step) {
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Step {
	return t.steps[i]
}

func (t *Trace) Len() int {
	return len(t.steps)
}

// Cells returns the visited cells, starting cell first.
func (t *Trace) Cells() []Cell {
	out := make([]Cell, 0, len(t.steps)+1)
	out = append(out, t.start)
	for _, s := range t.steps {
		out = append(out, s.NextState)
	}
	return out
}

func (t *Trace) TotalReward() float64 {
	sum := float64(0)
	for _, s := range t.steps {
		sum += s.Reward
	}
	return sum
}
