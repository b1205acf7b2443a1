// Package schedule holds exploration rate schedules. Every schedule is a pure
// function of the episode index.
package schedule

import (
	"math"

	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
)

// Cosine oscillates Cycles times between a linearly decaying envelope and 0:
//
//	epsilon(e) = Epsilon0 * (1 - e/Episodes) * 0.5 * (1 + cos(2*pi*Cycles*e/Episodes))
//
// so epsilon(0) = Epsilon0 and epsilon(Episodes) = 0.
type Cosine struct {
	Epsilon0 float64
	Episodes int
	Cycles   int
}

var _ core.Schedule = Cosine{}

func NewCosine(epsilon0 float64, episodes, cycles int) Cosine {
	return Cosine{Epsilon0: epsilon0, Episodes: episodes, Cycles: cycles}
}

func (c Cosine) Epsilon(episode int) float64 {
	if episode <= 0 {
		return c.Epsilon0
	}
	if c.Episodes <= 0 || episode >= c.Episodes {
		return 0
	}
	progress := float64(episode) / float64(c.Episodes)
	envelope := 1 - progress
	oscillation := 0.5 * (1 + math.Cos(2*math.Pi*float64(c.Cycles)*progress))
	return c.Epsilon0 * envelope * oscillation
}

type Constant struct {
	Value float64
}

var _ core.Schedule = Constant{}

func (c Constant) Epsilon(_ int) float64 {
	return c.Value
}

// Clamp keeps a schedule inside [0, 1].
type Clamp struct {
	core.Schedule
}

func (c Clamp) Epsilon(episode int) float64 {
	v := c.Schedule.Epsilon(episode)
	if math.IsNaN(v) {
		return 0
	}
	return util.ClampFloat(v, 0, 1)
}
