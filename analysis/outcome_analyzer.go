package analysis

import (
	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
)

// OutcomeDataset tracks cumulative outcome counts per episode. The first win
// fields stay -1 until a win happens.
type OutcomeDataset struct {
	FirstEpisodeToWin  int `json:"first_episode_to_win"`
	FirstTimestepToWin int `json:"first_timestep_to_win"`

	Wins        []int `json:"wins"`
	Losses      []int `json:"losses"`
	Truncations []int `json:"truncations"`
}

func newOutcomeDataset() *OutcomeDataset {
	return &OutcomeDataset{
		FirstEpisodeToWin:  -1,
		FirstTimestepToWin: -1,
		Wins:               make([]int, 0),
		Losses:             make([]int, 0),
		Truncations:        make([]int, 0),
	}
}

func (o *OutcomeDataset) Copy() *OutcomeDataset {
	return &OutcomeDataset{
		FirstEpisodeToWin:  o.FirstEpisodeToWin,
		FirstTimestepToWin: o.FirstTimestepToWin,
		Wins:               util.CopyIntSlice(o.Wins),
		Losses:             util.CopyIntSlice(o.Losses),
		Truncations:        util.CopyIntSlice(o.Truncations),
	}
}

type OutcomeAnalyzer struct {
	dataset      *OutcomeDataset
	lastTimeStep int
	wins         int
	losses       int
	truncations  int
}

var _ core.Analyzer = &OutcomeAnalyzer{}

func NewOutcomeAnalyzer() *OutcomeAnalyzer {
	return &OutcomeAnalyzer{
		dataset: newOutcomeDataset(),
	}
}

func (o *OutcomeAnalyzer) Reset() {
	o.dataset = newOutcomeDataset()
	o.lastTimeStep = 0
	o.wins, o.losses, o.truncations = 0, 0, 0
}

func (o *OutcomeAnalyzer) Analyze(rec *core.EpisodeRecord) {
	o.lastTimeStep += rec.Steps
	switch rec.Outcome {
	case core.OutcomeWon:
		o.wins++
		if o.dataset.FirstEpisodeToWin == -1 {
			o.dataset.FirstEpisodeToWin = rec.Episode
			o.dataset.FirstTimestepToWin = o.lastTimeStep
		}
	case core.OutcomeLost:
		o.losses++
	}
	if rec.Truncated {
		o.truncations++
	}
	o.dataset.Wins = append(o.dataset.Wins, o.wins)
	o.dataset.Losses = append(o.dataset.Losses, o.losses)
	o.dataset.Truncations = append(o.dataset.Truncations, o.truncations)
}

func (o *OutcomeAnalyzer) DataSet() core.DataSet {
	return o.dataset.Copy()
}

type OutcomeAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &OutcomeAnalyzerConstructor{}

func NewOutcomeAnalyzerConstructor() *OutcomeAnalyzerConstructor {
	return &OutcomeAnalyzerConstructor{}
}

func (c *OutcomeAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewOutcomeAnalyzer()
}
