package cmd

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/ladders-rl/analysis"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/experiments"
)

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train Q-learning agents on a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Record(); err != nil {
				return err
			}
			ctx, cancel := interruptContext()
			defer cancel()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			analysis.ErrorWriter = cmd.ErrOrStderr()
			report, err := experiments.Train(ctx, flags, store, out)
			if report != nil {
				if perr := experiments.PrintTrainReport(out, board.NewPrinter(flags.Color), report); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}
	return cmd
}
