package experiments

import (
	"fmt"
	"io"

	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/core"
)

func printResult(w io.Writer, r *core.ExperimentResult) {
	fmt.Fprintf(w, "Run %d (%s): Episodes: %d, Won: %d, Lost: %d, Truncated: %d, Win rate: %.2f, Min steps: %d, First win: %d\n",
		r.RunNumber, r.RunID, r.TotalEpisodes, r.Won, r.Lost, r.Truncated, r.WinRate(), r.MinSteps, r.FirstWinAt)
	if last, ok := r.History.Last(); ok {
		fmt.Fprintf(w, "  Last episode: %d steps, reward %.2f, epsilon %.4f, %s\n", last.Steps, last.Reward, last.Epsilon, last.Outcome)
	}
	if r.LastTruncation != nil {
		fmt.Fprintf(w, "  %s\n", r.LastTruncation)
	}
}

// PrintTrainReport prints one summary line per run, then the last trajectory
// and the greedy policy of the first run.
func PrintTrainReport(w io.Writer, p *board.Printer, report *TrainReport) error {
	fmt.Fprintf(w, "Board: %s, alpha %.3f, gamma %.3f, epsilon %.3f\n",
		report.BoardName, report.Params.Alpha, report.Params.Gamma, report.Params.Epsilon)
	for _, r := range report.Results {
		printResult(w, r)
	}
	if len(report.Results) == 0 {
		return nil
	}
	first := report.Results[0]
	fmt.Fprintf(w, "\nLast trajectory: %v\n", first.LastTrajectory)
	p.PrintBoard(w, report.Board, first.LastTrajectory)

	values, policy, err := Greedy(report.Board, report.Params, first.Q)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nGreedy policy:")
	p.PrintValues(w, report.Board, values, policy)
	for _, c := range report.Charts {
		fmt.Fprintf(w, "Charts: %s\n", c)
	}
	return nil
}

func PrintEvalReport(w io.Writer, p *board.Printer, report *EvalReport) {
	fmt.Fprintf(w, "Snapshot of run %s, alpha %.3f, gamma %.3f, trained with epsilon %.3f\n",
		report.Snapshot.RunID, report.Params.Alpha, report.Params.Gamma, report.Snapshot.Epsilon0)
	printResult(w, report.Result)
	fmt.Fprintf(w, "Trajectory: %v\n", report.Result.LastTrajectory)
	p.PrintBoard(w, report.Board, report.Result.LastTrajectory)
	p.PrintValues(w, report.Board, report.Values, report.Policy)
	fmt.Fprintln(w, "\nExpected value per cell:")
	p.PrintValues(w, report.Board, report.Expected, nil)
}
