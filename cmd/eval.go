package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/experiments"
)

func EvalCommand() *cobra.Command {
	var (
		episodes int
		table    string
	)
	cmd := &cobra.Command{
		Use:   "eval [run-id]",
		Short: "Play greedily from a stored or exported Q-table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			var (
				report *experiments.EvalReport
				err    error
			)
			switch {
			case table != "" && len(args) == 0:
				report, err = experiments.EvaluateFile(ctx, flags, table, episodes, cmd.OutOrStdout())
			case table == "" && len(args) == 1:
				store, serr := openStore(ctx)
				if serr != nil {
					return serr
				}
				defer store.Close()
				report, err = experiments.Evaluate(ctx, flags, store, args[0], episodes, cmd.OutOrStdout())
			default:
				return errors.New("eval needs either a run id or --table")
			}
			if err != nil {
				return err
			}
			experiments.PrintEvalReport(cmd.OutOrStdout(), board.NewPrinter(flags.Color), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&episodes, "eval-episodes", 1, "Number of greedy episodes")
	cmd.Flags().StringVar(&table, "table", "", "Exported Q-table file (.json, .bin or .jsonl) to evaluate instead of a stored run")
	return cmd
}
