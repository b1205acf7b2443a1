package experiments

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/common"
	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/policies"
	"github.com/zeu5/ladders-rl/schedule"
	"github.com/zeu5/ladders-rl/storage"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrBoardMismatch = errors.New("snapshot was trained on a different board")
)

// evalStepFactor bounds greedy episodes at this many steps per cell. A greedy
// table can cycle between two cells forever.
const evalStepFactor = 10

type EvalReport struct {
	Board    *board.Board
	Snapshot storage.Snapshot
	Result   *core.ExperimentResult
	Values   map[core.Cell]float64
	Expected map[core.Cell]float64
	Policy   map[core.Cell]core.Action
	Params   policies.Params
}

// Evaluate bootstraps an agent from a stored snapshot and plays greedily
// (epsilon 0 for every episode). The agent keeps updating its copy of the
// table; the stored snapshot is not modified.
func Evaluate(ctx context.Context, f *common.Flags, store storage.Store, runID string, episodes int, out io.Writer) (*EvalReport, error) {
	snapshot, err := lookupSnapshot(ctx, store, runID)
	if err != nil {
		return nil, err
	}
	return EvaluateSnapshot(ctx, f, snapshot, episodes, out)
}

// EvaluateFile is Evaluate for a table exported with ExportRun. Bare table
// files carry no hyperparameters, so the flags supply them.
func EvaluateFile(ctx context.Context, f *common.Flags, path string, episodes int, out io.Writer) (*EvalReport, error) {
	snapshot, err := storage.ImportSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return EvaluateSnapshot(ctx, f, snapshot, episodes, out)
}

// ExportRun writes the snapshot of a stored run to a single file.
func ExportRun(ctx context.Context, store storage.Store, runID, path string) (storage.Snapshot, error) {
	snapshot, err := lookupSnapshot(ctx, store, runID)
	if err != nil {
		return storage.Snapshot{}, err
	}
	if err := storage.ExportSnapshot(path, snapshot); err != nil {
		return storage.Snapshot{}, fmt.Errorf("exporting %s: %w", runID, err)
	}
	return snapshot, nil
}

func lookupSnapshot(ctx context.Context, store storage.Store, runID string) (storage.Snapshot, error) {
	snapshot, ok, err := store.GetSnapshot(ctx, runID)
	if err != nil {
		return storage.Snapshot{}, err
	}
	if !ok {
		return storage.Snapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return snapshot, nil
}

func EvaluateSnapshot(ctx context.Context, f *common.Flags, snapshot storage.Snapshot, episodes int, out io.Writer) (*EvalReport, error) {
	b, name, err := BuildBoard(f)
	if err != nil {
		return nil, err
	}
	if snapshot.Board != "" && snapshot.Board != name {
		return nil, fmt.Errorf("%w: %s, not %s", ErrBoardMismatch, snapshot.Board, name)
	}
	table, err := snapshot.Table()
	if err != nil {
		return nil, err
	}

	params := policies.Params{
		Alpha:   snapshot.Alpha,
		Gamma:   snapshot.Gamma,
		Epsilon: 0,
		Seed:    f.Seed,
	}
	if params.Alpha == 0 {
		params.Alpha = f.Alpha
		params.Gamma = f.Gamma
	}
	agent, err := policies.NewQLearning(b, params)
	if err != nil {
		return nil, err
	}
	if err := agent.Load(table); err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", snapshot.RunID, err)
	}

	maxSteps := f.MaxSteps
	if maxSteps == 0 {
		maxSteps = evalStepFactor * int(b.MaxCell())
	}
	if episodes <= 0 {
		episodes = 1
	}
	exp := &core.Experiment{
		Name:        "eval-" + name,
		RunID:       snapshot.RunID,
		Environment: b,
		Agent:       agent,
		Schedule:    schedule.Constant{Value: 0},
		Writer:      out,
	}
	result, err := exp.Run(ctx, &core.RunConfig{Episodes: episodes, MaxSteps: maxSteps})
	if err != nil {
		return nil, err
	}
	alpha, eps0, gamma := agent.Hyperparameters()
	return &EvalReport{
		Board:    b,
		Snapshot: snapshot,
		Result:   result,
		Values:   agent.MaxQPerState(),
		Expected: agent.ExpectedValuePerState(),
		Policy:   agent.GreedyPolicyPerState(),
		Params:   policies.Params{Alpha: alpha, Gamma: gamma, Epsilon: eps0, Seed: params.Seed},
	}, nil
}
