package experiments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/zeu5/ladders-rl/analysis"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/common"
	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/policies"
	"github.com/zeu5/ladders-rl/schedule"
	"github.com/zeu5/ladders-rl/storage"
)

type TrainReport struct {
	Board     *board.Board
	BoardName string
	Params    policies.Params
	Results   []*core.ExperimentResult
	Snapshots []storage.Snapshot
	Charts    []string
}

// PrepareTraining builds the parallel runs for the flags without starting
// them.
func PrepareTraining(f *common.Flags, b *board.Board, name string, out io.Writer) (*core.ParallelRuns, policies.Params, error) {
	params := policies.Params{
		Alpha:   f.Alpha,
		Gamma:   f.Gamma,
		Epsilon: f.Epsilon,
		Seed:    f.Seed,
	}
	if err := params.Validate(); err != nil {
		return nil, params, err
	}
	agents, err := policies.NewConstructor(f.Agent, params)
	if err != nil {
		return nil, params, err
	}

	pr := core.NewParallelRuns(&core.ParallelExperiment{
		Name:        name,
		Environment: b,
		Agent:       agents,
		Schedule:    schedule.Clamp{Schedule: schedule.NewCosine(f.Epsilon, f.Episodes, f.Cycles)},
	})
	pr.Out = out

	pr.AddAnalysis("rewards", analysis.NewRewardAnalyzerConstructor(analysis.DefaultWindow), analysis.NewSummaryComparator(f.SavePath))
	pr.AddAnalysis("coverage", analysis.NewCoverageAnalyzerConstructor(), analysis.NewJSONComparator(f.SavePath, "coverage.json"))
	pr.AddAnalysis("outcomes", analysis.NewOutcomeAnalyzerConstructor(), analysis.NewJSONComparator(f.SavePath, "outcomes.json"))

	eventPath := ""
	if f.Verbose {
		eventPath = f.SavePath
		// last episode of every run
		pr.AddAnalysis("traces", analysis.NewTrajectoryAnalyzerConstructor(f.SavePath, f.Episodes), nil)
	}
	pr.AddAnalysis(
		"events",
		analysis.NewEventAnalyzerConstructor(eventPath, analysis.TruncatedEvent, analysis.LostEvent),
		analysis.NewJSONComparator(f.SavePath, "events.json"),
	)
	return pr, params, nil
}

// Train runs every configured run and persists the snapshot and history of
// each finished run. Runs that failed are reported in the returned error
// while the finished ones are still saved.
func Train(ctx context.Context, f *common.Flags, store storage.Store, out io.Writer) (*TrainReport, error) {
	if f.Episodes <= 0 {
		return nil, core.ErrNoEpisodes
	}
	b, name, err := BuildBoard(f)
	if err != nil {
		return nil, err
	}
	pr, params, err := PrepareTraining(f, b, name, out)
	if err != nil {
		return nil, err
	}

	results, runErr := pr.Run(ctx, f.NumRuns, &core.RunConfig{Episodes: f.Episodes, MaxSteps: f.MaxSteps}, f.Parallelism)

	report := &TrainReport{
		Board:     b,
		BoardName: name,
		Params:    params,
		Results:   make([]*core.ExperimentResult, 0, len(results)),
		Snapshots: make([]storage.Snapshot, 0, len(results)),
	}
	errs := []error{runErr}
	for _, result := range results {
		// interrupted runs keep their partial table but are not stored
		if result == nil || result.TotalEpisodes < f.Episodes {
			continue
		}
		report.Results = append(report.Results, result)

		snapshot := storage.NewSnapshot(result.RunID, name, result.Q)
		snapshot.Alpha = params.Alpha
		snapshot.Gamma = params.Gamma
		snapshot.Epsilon0 = params.Epsilon
		snapshot.Episodes = result.TotalEpisodes
		if err := store.SaveSnapshot(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("saving snapshot %s: %w", result.RunID, err))
			continue
		}
		if err := store.SaveHistory(ctx, result.RunID, result.History); err != nil {
			errs = append(errs, fmt.Errorf("saving history %s: %w", result.RunID, err))
		}
		report.Snapshots = append(report.Snapshots, snapshot)

		if f.Charts {
			values, _, err := Greedy(b, params, result.Q)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			p, err := analysis.SaveCharts(path.Join(f.SavePath, "charts"), fmt.Sprintf("%s_%d", name, result.RunNumber), result.History, b, values)
			if err != nil {
				errs = append(errs, fmt.Errorf("charts for run %d: %w", result.RunNumber, err))
				continue
			}
			report.Charts = append(report.Charts, p)
		}
	}
	return report, errors.Join(errs...)
}

// Greedy loads a table into a fresh agent and returns the max value and
// greedy action of every stored state.
func Greedy(b *board.Board, params policies.Params, table map[core.QKey]float64) (map[core.Cell]float64, map[core.Cell]core.Action, error) {
	agent, err := policies.NewQLearning(b, params)
	if err != nil {
		return nil, nil, err
	}
	if err := agent.Load(table); err != nil {
		return nil, nil, err
	}
	return agent.MaxQPerState(), agent.GreedyPolicyPerState(), nil
}
