package analysis

import (
	"path"

	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
	"gonum.org/v1/gonum/stat"
)

const DefaultWindow = 100

// RewardDataset holds per-episode values and statistics over a trailing
// window of episodes.
type RewardDataset struct {
	Window     int       `json:"window"`
	Rewards    []float64 `json:"rewards"`
	Steps      []float64 `json:"steps"`
	MeanReward []float64 `json:"mean_reward"`
	StdReward  []float64 `json:"std_reward"`
	MeanSteps  []float64 `json:"mean_steps"`
	WinRate    []float64 `json:"win_rate"`

	wins []float64
}

func newRewardDataset(window int) *RewardDataset {
	return &RewardDataset{
		Window:     window,
		Rewards:    make([]float64, 0),
		Steps:      make([]float64, 0),
		MeanReward: make([]float64, 0),
		StdReward:  make([]float64, 0),
		MeanSteps:  make([]float64, 0),
		WinRate:    make([]float64, 0),
		wins:       make([]float64, 0),
	}
}

func (d *RewardDataset) Copy() *RewardDataset {
	return &RewardDataset{
		Window:     d.Window,
		Rewards:    util.CopyFloatSlice(d.Rewards),
		Steps:      util.CopyFloatSlice(d.Steps),
		MeanReward: util.CopyFloatSlice(d.MeanReward),
		StdReward:  util.CopyFloatSlice(d.StdReward),
		MeanSteps:  util.CopyFloatSlice(d.MeanSteps),
		WinRate:    util.CopyFloatSlice(d.WinRate),
		wins:       util.CopyFloatSlice(d.wins),
	}
}

// Final returns the last windowed mean reward and win rate.
func (d *RewardDataset) Final() (float64, float64) {
	if len(d.MeanReward) == 0 {
		return 0, 0
	}
	return d.MeanReward[len(d.MeanReward)-1], d.WinRate[len(d.WinRate)-1]
}

func tail(s []float64, window int) []float64 {
	if window <= 0 || len(s) <= window {
		return s
	}
	return s[len(s)-window:]
}

// meanStd is stat.MeanStdDev with the deviation of a single sample set to 0.
func meanStd(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

type RewardAnalyzer struct {
	window  int
	dataset *RewardDataset
}

var _ core.Analyzer = &RewardAnalyzer{}

func NewRewardAnalyzer(window int) *RewardAnalyzer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RewardAnalyzer{
		window:  window,
		dataset: newRewardDataset(window),
	}
}

func (r *RewardAnalyzer) Analyze(rec *core.EpisodeRecord) {
	d := r.dataset
	d.Rewards = append(d.Rewards, rec.Reward)
	d.Steps = append(d.Steps, float64(rec.Steps))
	won := 0.0
	if rec.Outcome == core.OutcomeWon {
		won = 1
	}
	d.wins = append(d.wins, won)

	mean, std := meanStd(tail(d.Rewards, r.window))
	d.MeanReward = append(d.MeanReward, mean)
	d.StdReward = append(d.StdReward, std)
	d.MeanSteps = append(d.MeanSteps, stat.Mean(tail(d.Steps, r.window), nil))
	d.WinRate = append(d.WinRate, stat.Mean(tail(d.wins, r.window), nil))
}

func (r *RewardAnalyzer) DataSet() core.DataSet {
	return r.dataset.Copy()
}

func (r *RewardAnalyzer) Reset() {
	r.dataset = newRewardDataset(r.window)
}

type RewardAnalyzerConstructor struct {
	Window int
}

var _ core.AnalyzerConstructor = &RewardAnalyzerConstructor{}

func NewRewardAnalyzerConstructor(window int) *RewardAnalyzerConstructor {
	return &RewardAnalyzerConstructor{Window: window}
}

func (c *RewardAnalyzerConstructor) NewAnalyzer(_ string, _ int) core.Analyzer {
	return NewRewardAnalyzer(c.Window)
}

type RunSummary struct {
	Episodes        int     `json:"episodes"`
	FinalMeanReward float64 `json:"final_mean_reward"`
	FinalWinRate    float64 `json:"final_win_rate"`
	BestReward      float64 `json:"best_reward"`
}

type Summary struct {
	Runs       map[string]RunSummary     `json:"runs"`
	MeanReward float64                   `json:"mean_reward"`
	StdReward  float64                   `json:"std_reward"`
	MeanWin    float64                   `json:"mean_win_rate"`
	Datasets   map[string]*RewardDataset `json:"datasets,omitempty"`
}

// Summarize reduces reward datasets to per-run summaries and cross-run
// statistics of the final windowed reward. Datasets of other types are
// skipped.
func Summarize(names []string, datasets []core.DataSet) *Summary {
	out := &Summary{
		Runs:     make(map[string]RunSummary),
		Datasets: make(map[string]*RewardDataset),
	}
	finals := make([]float64, 0, len(names))
	winRates := make([]float64, 0, len(names))
	for i, name := range names {
		d, ok := datasets[i].(*RewardDataset)
		if !ok {
			continue
		}
		mean, win := d.Final()
		best := 0.0
		if len(d.Rewards) > 0 {
			best = d.Rewards[0]
			for _, r := range d.Rewards {
				if r > best {
					best = r
				}
			}
		}
		out.Runs[name] = RunSummary{
			Episodes:        len(d.Rewards),
			FinalMeanReward: mean,
			FinalWinRate:    win,
			BestReward:      best,
		}
		out.Datasets[name] = d
		finals = append(finals, mean)
		winRates = append(winRates, win)
	}
	out.MeanReward, out.StdReward = meanStd(finals)
	if len(winRates) > 0 {
		out.MeanWin = stat.Mean(winRates, nil)
	}
	return out
}

// SummaryComparator writes Summarize output to summary.json.
type SummaryComparator struct {
	savePath string
}

var _ core.Comparator = &SummaryComparator{}

func NewSummaryComparator(savePath string) *SummaryComparator {
	return &SummaryComparator{
		savePath: path.Join(savePath, "summary.json"),
	}
}

func (s *SummaryComparator) Compare(names []string, datasets []core.DataSet) {
	reportErr("saving "+s.savePath, util.SaveJson(s.savePath, Summarize(names, datasets)))
}
