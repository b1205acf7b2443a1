package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/zeu5/ladders-rl/util"
)

var (
	ErrNoEpisodes           = errors.New("episode count must be positive")
	ErrEpisodeNotTerminated = errors.New("episode did not terminate")
)

type ExperimentResult struct {
	Name      string
	RunID     string
	RunNumber int

	History        *TrainingHistory
	LastTrajectory []Cell
	Q              map[QKey]float64

	Won            int
	Lost           int
	Truncated      int
	TotalSteps     int
	TotalEpisodes  int
	MinSteps       int
	FirstWinAt     int
	LastTruncation error

	Datasets map[string]DataSet
}

func (r *ExperimentResult) WinRate() float64 {
	if r.TotalEpisodes == 0 {
		return 0
	}
	return float64(r.Won) / float64(r.TotalEpisodes)
}

func (e *Experiment) Run(ctx context.Context, rConfig *RunConfig) (*ExperimentResult, error) {
	if rConfig == nil || rConfig.Episodes <= 0 {
		return nil, ErrNoEpisodes
	}
	if e.RunID == "" {
		e.RunID = uuid.NewString()
	}
	writer := e.Writer
	if writer == nil {
		writer = io.Discard
	}
	for _, a := range e.Analyzers {
		a.Reset()
	}

	result := &ExperimentResult{
		Name:      e.Name,
		RunID:     e.RunID,
		RunNumber: e.RunNumber,
		History:   NewTrainingHistory(),
		Datasets:  make(map[string]DataSet),
	}

	for episode := 1; episode <= rConfig.Episodes; episode++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		record, err := e.runEpisode(episode, rConfig.MaxSteps)
		if err != nil {
			return result, fmt.Errorf("episode %d: %w", episode, err)
		}

		result.History.Append(HistoryRecord{
			Episode: episode,
			Reward:  record.Reward,
			Steps:   record.Steps,
			Epsilon: record.Epsilon,
			Outcome: record.Outcome,
			MaxQ:    e.Agent.MaxQPerState(),
		})
		result.LastTrajectory = record.Trace.Cells()
		result.TotalEpisodes++
		result.TotalSteps += record.Steps
		switch record.Outcome {
		case OutcomeWon:
			result.Won++
			if result.FirstWinAt == 0 {
				result.FirstWinAt = episode
			}
			if result.MinSteps == 0 || record.Steps < result.MinSteps {
				result.MinSteps = record.Steps
			}
		case OutcomeLost:
			result.Lost++
		}
		if record.Truncated {
			result.Truncated++
			result.LastTruncation = fmt.Errorf("%w: episode %d after %d steps", ErrEpisodeNotTerminated, episode, record.Steps)
		}

		fmt.Fprintf(
			writer,
			"Experiment: %s, Run %d, Episode %d/%d, Steps: %d, Reward: %.2f, Epsilon: %.4f, Won: %d, Lost: %d, Truncated: %d\n",
			e.Name, e.RunNumber, episode, rConfig.Episodes, record.Steps, record.Reward, record.Epsilon, result.Won, result.Lost, result.Truncated,
		)

		for _, a := range e.Analyzers {
			a.Analyze(record)
		}

		if e.Schedule != nil {
			if err := e.Agent.SetEpsilon(e.Schedule.Epsilon(episode)); err != nil {
				return result, fmt.Errorf("episode %d: %w", episode, err)
			}
		}
	}

	for name, a := range e.Analyzers {
		result.Datasets[name] = a.DataSet()
	}
	result.Q = e.Agent.Table()
	return result, nil
}

// runEpisode plays from the start cell until a terminal cell is entered.
func (e *Experiment) runEpisode(episode, maxSteps int) (*EpisodeRecord, error) {
	start := e.Environment.Start()
	e.Agent.Reset(start)
	trace := NewTrace(start)
	record := &EpisodeRecord{
		Name:    e.Name,
		Run:     e.RunNumber,
		Episode: episode,
		Trace:   trace,
		Epsilon: e.Agent.Epsilon(),
		Outcome: e.Environment.Outcome(start),
	}

	for !record.Outcome.Terminal() {
		if maxSteps > 0 && trace.Len() >= maxSteps {
			record.Truncated = true
			break
		}
		step, err := e.Agent.Step()
		if err != nil {
			return nil, err
		}
		trace.AddStep(step)
		record.Outcome = e.Environment.Outcome(step.NextState)
	}

	record.Steps = trace.Len()
	record.Reward = trace.TotalReward()
	return record, nil
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct{}

type parallelWork struct {
	runNumber int
	output    io.Writer
	rConfig   *RunConfig
}

type parallelResult struct {
	run    int
	result *ExperimentResult
	err    error
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, p *ParallelRuns, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case work, more := <-workCh:
			if !more {
				return
			}
			resultsCh <- w.runWork(ctx, p, work)
		}
	}
}

// Run an experiment by constructing a fresh agent and analyzers for it
func (w *parallelWorker) runWork(ctx context.Context, p *ParallelRuns, work *parallelWork) *parallelResult {
	pe := p.Experiment
	agent, err := pe.Agent.NewAgent(pe.Environment, work.runNumber)
	if err != nil {
		return &parallelResult{run: work.runNumber, err: err}
	}

	exp := &Experiment{
		Name:        pe.Name,
		RunNumber:   work.runNumber,
		Environment: pe.Environment,
		Agent:       agent,
		Schedule:    pe.Schedule,
		Analyzers:   make(map[string]Analyzer),
		Writer:      work.output,
	}
	for name, aC := range p.Analyzers {
		exp.Analyzers[name] = aC.NewAnalyzer(pe.Name, work.runNumber)
	}

	result, err := exp.Run(ctx, work.rConfig)
	return &parallelResult{run: work.runNumber, result: result, err: err}
}

// Run trains `runs` independent agents, at most `parallelism` at a time.
// Results are ordered by run number; runs that failed before producing a
// result are nil.
func (p *ParallelRuns) Run(ctx context.Context, runs int, rConfig *RunConfig, parallelism int) ([]*ExperimentResult, error) {
	if runs <= 0 {
		return nil, nil
	}
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > runs {
		parallelism = runs
	}

	out := p.Out
	if out == nil {
		out = io.Discard
	}
	printer := util.NewTerminalPrinter(out, p.RefreshInterval)
	outputs := make([]*util.ParallelOutput, runs)
	for i := range outputs {
		outputs[i] = printer.NewOutput()
	}
	printer.Start(ctx)
	defer printer.Stop()

	workCh := make(chan *parallelWork)
	resultsCh := make(chan *parallelResult, runs)

	wg := new(sync.WaitGroup)
	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		worker := &parallelWorker{}
		go func() {
			defer wg.Done()
			worker.run(ctx, p, workCh, resultsCh)
		}()
	}

	go func() {
		defer close(workCh)
		for run := 0; run < runs; run++ {
			select {
			case <-ctx.Done():
				return
			case workCh <- &parallelWork{runNumber: run, output: outputs[run], rConfig: rConfig}:
			}
		}
	}()

	wg.Wait()
	close(resultsCh)

	results := make([]*ExperimentResult, runs)
	errs := make([]error, 0)
	for r := range resultsCh {
		results[r.run] = r.result
		if r.err != nil {
			errs = append(errs, fmt.Errorf("run %d: %w", r.run, r.err))
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	p.compare(results)
	return results, errors.Join(errs...)
}

func (p *ParallelRuns) compare(results []*ExperimentResult) {
	names := make([]string, 0, len(results))
	datasets := make(map[string][]DataSet)
	for _, result := range results {
		if result == nil {
			continue
		}
		names = append(names, fmt.Sprintf("%s_%d", result.Name, result.RunNumber))
		for name := range p.Comparators {
			datasets[name] = append(datasets[name], result.Datasets[name])
		}
	}
	for name, c := range p.Comparators {
		c.Compare(names, datasets[name])
	}
}
