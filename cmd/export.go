package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/ladders-rl/experiments"
)

func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id> <path>",
		Short: "Write the Q-table of a stored run to a file (.json, .bin or .jsonl)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			snapshot, err := experiments.ExportRun(ctx, store, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries of run %s to %s\n", len(snapshot.Entries), snapshot.RunID, args[1])
			return nil
		},
	}
	return cmd
}
