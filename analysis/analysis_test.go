package analysis

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
)

// record builds an episode that walks the given cells with a -1 step reward.
func record(episode int, outcome core.Outcome, cells ...core.Cell) *core.EpisodeRecord {
	trace := core.NewTrace(cells[0])
	for i := 1; i < len(cells); i++ {
		trace.AddStep(&core.Step{State: cells[i-1], Action: core.Increment, Reward: -1, NextState: cells[i]})
	}
	return &core.EpisodeRecord{
		Name:    "test",
		Run:     0,
		Episode: episode,
		Trace:   trace,
		Reward:  trace.TotalReward(),
		Steps:   trace.Len(),
		Outcome: outcome,
	}
}

func TestRewardAnalyzer(t *testing.T) {
	a := NewRewardAnalyzer(2)
	for i, r := range []struct {
		reward  float64
		outcome core.Outcome
	}{{10, core.OutcomeWon}, {20, core.OutcomeLost}, {40, core.OutcomeWon}} {
		rec := record(i+1, r.outcome, 1, 2)
		rec.Reward = r.reward
		a.Analyze(rec)
	}

	d := a.DataSet().(*RewardDataset)
	assert.Equal(t, []float64{10, 20, 40}, d.Rewards)
	assert.Equal(t, []float64{10, 15, 30}, d.MeanReward)
	assert.Equal(t, []float64{1, 0.5, 0.5}, d.WinRate)
	assert.Equal(t, []float64{1, 1, 1}, d.MeanSteps)
	require.Len(t, d.StdReward, 3)
	assert.Equal(t, 0.0, d.StdReward[0])
	assert.InDelta(t, 7.0710678, d.StdReward[1], 1e-6)
	assert.InDelta(t, 14.1421356, d.StdReward[2], 1e-6)

	mean, win := d.Final()
	assert.Equal(t, 30.0, mean)
	assert.Equal(t, 0.5, win)

	d.Rewards[0] = 99
	assert.Equal(t, 10.0, a.DataSet().(*RewardDataset).Rewards[0], "dataset must be a copy")

	a.Reset()
	assert.Empty(t, a.DataSet().(*RewardDataset).Rewards)
}

func TestSummaryComparator(t *testing.T) {
	dir := t.TempDir()
	a1, a2 := NewRewardAnalyzer(10), NewRewardAnalyzer(10)
	r1 := record(1, core.OutcomeWon, 1, 2)
	r1.Reward = 10
	a1.Analyze(r1)
	r2 := record(1, core.OutcomeLost, 1, 2)
	r2.Reward = 30
	a2.Analyze(r2)

	names := []string{"exp_0", "exp_1", "exp_2"}
	datasets := []core.DataSet{a1.DataSet(), a2.DataSet(), map[string]int{}}
	summary := Summarize(names, datasets)
	require.Len(t, summary.Runs, 2)
	assert.Equal(t, 20.0, summary.MeanReward)
	assert.InDelta(t, 14.1421356, summary.StdReward, 1e-6)
	assert.Equal(t, 0.5, summary.MeanWin)
	assert.Equal(t, 1.0, summary.Runs["exp_0"].FinalWinRate)
	assert.Equal(t, 30.0, summary.Runs["exp_1"].BestReward)

	NewSummaryComparator(dir).Compare(names, datasets)
	var out Summary
	require.NoError(t, util.ReadJson(filepath.Join(dir, "summary.json"), &out))
	assert.Equal(t, 20.0, out.MeanReward)
	assert.Len(t, out.Datasets, 2)
}

func TestCoverageAnalyzer(t *testing.T) {
	a := NewCoverageAnalyzer()
	a.Analyze(record(1, core.OutcomeNone, 1, 2, 3))
	a.Analyze(record(2, core.OutcomeNone, 1, 2, 3, 4))

	d := a.DataSet().(*CoverageDataset)
	assert.Equal(t, []int{2, 5}, d.Timesteps)
	assert.Equal(t, []int{3, 4}, d.UniqueCells)

	a.Reset()
	assert.Empty(t, a.DataSet().(*CoverageDataset).Timesteps)
}

func TestJSONComparator(t *testing.T) {
	dir := t.TempDir()
	a := NewCoverageAnalyzer()
	a.Analyze(record(1, core.OutcomeNone, 1, 2))
	NewJSONComparator(dir, "coverage.json").Compare([]string{"exp_0"}, []core.DataSet{a.DataSet()})

	var out map[string]CoverageDataset
	require.NoError(t, util.ReadJson(filepath.Join(dir, "coverage.json"), &out))
	assert.Equal(t, []int{2}, out["exp_0"].UniqueCells)
}

func TestOutcomeAnalyzer(t *testing.T) {
	a := NewOutcomeAnalyzer()
	a.Analyze(record(1, core.OutcomeLost, 1, 2, 3))
	truncated := record(2, core.OutcomeNone, 1, 2)
	truncated.Truncated = true
	a.Analyze(truncated)
	a.Analyze(record(3, core.OutcomeWon, 1, 2, 3, 4))
	a.Analyze(record(4, core.OutcomeWon, 1, 2))

	d := a.DataSet().(*OutcomeDataset)
	assert.Equal(t, 3, d.FirstEpisodeToWin)
	assert.Equal(t, 6, d.FirstTimestepToWin)
	assert.Equal(t, []int{0, 0, 1, 2}, d.Wins)
	assert.Equal(t, []int{1, 1, 1, 1}, d.Losses)
	assert.Equal(t, []int{0, 1, 1, 1}, d.Truncations)

	a.Reset()
	assert.Equal(t, -1, a.DataSet().(*OutcomeDataset).FirstEpisodeToWin)
}

func TestTrajectoryAnalyzer(t *testing.T) {
	t.Run("keeps last", func(t *testing.T) {
		a := NewTrajectoryAnalyzer("", 0)
		assert.Nil(t, a.DataSet())
		a.Analyze(record(1, core.OutcomeNone, 1, 2))
		a.Analyze(record(2, core.OutcomeWon, 1, 2, 3))
		d := a.DataSet().(*TrajectoryDataset)
		assert.Equal(t, 2, d.Episode)
		assert.Equal(t, core.OutcomeWon, d.Outcome)
		assert.Equal(t, []core.Cell{1, 2, 3}, d.Cells)
	})

	t.Run("writes from threshold", func(t *testing.T) {
		dir := t.TempDir()
		a := NewTrajectoryAnalyzerConstructor(dir, 2).NewAnalyzer("exp", 0)
		a.Analyze(record(1, core.OutcomeNone, 1, 2))
		a.Analyze(record(2, core.OutcomeWon, 1, 2, 3))

		files, err := os.ReadDir(filepath.Join(dir, "traces"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "0_exp_trace_2.txt", files[0].Name())

		bs, err := os.ReadFile(filepath.Join(dir, "traces", files[0].Name()))
		require.NoError(t, err)
		assert.Contains(t, string(bs), "Step 1: 2 --+1--> 3")
		assert.Contains(t, string(bs), "Outcome: won")
	})
}

func TestEventAnalyzer(t *testing.T) {
	dir := t.TempDir()
	a := NewEventAnalyzer(dir, TruncatedEvent, LostEvent)
	a.Analyze(record(1, core.OutcomeLost, 1, 2))
	a.Analyze(record(2, core.OutcomeWon, 1, 2))
	truncated := record(3, core.OutcomeNone, 1, 2)
	truncated.Truncated = true
	a.Analyze(truncated)

	assert.Equal(t, map[string]int{"lost": 1, "truncated": 1}, a.DataSet())
	files, err := os.ReadDir(filepath.Join(dir, "events"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	a.Reset()
	assert.Empty(t, a.DataSet())
}

func testBoard(t *testing.T) *board.Board {
	b, err := board.New(board.Config{Rows: 2, Columns: 2, Wins: []core.Cell{4}})
	require.NoError(t, err)
	return b
}

func TestValueGrid(t *testing.T) {
	b := testBoard(t)
	grid := ValueGrid(b, map[core.Cell]float64{1: 1, 2: 2, 3: 3})
	r, c := grid.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	// the top row runs right to left: 4 3
	assert.Equal(t, 0.0, grid.At(0, 0))
	assert.Equal(t, 3.0, grid.At(0, 1))
	assert.Equal(t, 1.0, grid.At(1, 0))
	assert.Equal(t, 2.0, grid.At(1, 1))

	lo, hi := GridRange(grid)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestRenderCharts(t *testing.T) {
	b := testBoard(t)
	history := core.NewTrainingHistory()
	history.Append(core.HistoryRecord{Episode: 1, Reward: -3, Steps: 4, Epsilon: 0.5})
	history.Append(core.HistoryRecord{Episode: 2, Reward: 98, Steps: 3, Epsilon: 0.25, Outcome: core.OutcomeWon})

	buf := new(bytes.Buffer)
	require.NoError(t, RenderCharts(buf, history, b, map[core.Cell]float64{1: 50, 3: 99}))
	html := buf.String()
	assert.Contains(t, html, "Reward per episode")
	assert.Contains(t, html, "Epsilon per episode")
	assert.Contains(t, html, "Max Q per cell")

	assert.ErrorIs(t, RenderCharts(buf, core.NewTrainingHistory(), b, nil), ErrEmptyHistory)

	p, err := SaveCharts(t.TempDir(), "run", history, b, nil)
	require.NoError(t, err)
	assert.FileExists(t, p)
}

func TestWriteFailuresAreReported(t *testing.T) {
	errs := new(bytes.Buffer)
	prev := ErrorWriter
	ErrorWriter = errs
	t.Cleanup(func() { ErrorWriter = prev })

	// a regular file where a directory is expected
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	NewJSONComparator(blocker, "coverage.json").Compare([]string{"exp_0"}, []core.DataSet{1})
	assert.Contains(t, errs.String(), "saving "+filepath.Join(blocker, "coverage.json"))

	errs.Reset()
	NewSummaryComparator(blocker).Compare(nil, nil)
	assert.Contains(t, errs.String(), "summary.json")

	errs.Reset()
	traces := NewTrajectoryAnalyzer(blocker, 1)
	assert.Contains(t, errs.String(), "creating ")
	traces.Analyze(record(1, core.OutcomeWon, 1, 2))
	assert.Contains(t, errs.String(), "writing ")

	errs.Reset()
	events := NewEventAnalyzer(blocker, LostEvent)
	events.Analyze(record(1, core.OutcomeLost, 1, 2))
	assert.Contains(t, errs.String(), "creating ")
	assert.Contains(t, errs.String(), "writing ")
	assert.Equal(t, map[string]int{"lost": 1}, events.DataSet())
}
