package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/experiments"
)

func BoardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the selected board",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, name, err := experiments.BuildBoard(flags)
			if err != nil {
				return fmt.Errorf("%w (presets: %s)", err, strings.Join(board.PresetNames(), ", "))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Board: %s (%dx%d)\n", name, b.Rows(), b.Columns())
			printer := board.NewPrinter(flags.Color)
			printer.PrintBoard(out, b, nil)
			printer.PrintSummary(out, b)
			return nil
		},
	}
	return cmd
}
