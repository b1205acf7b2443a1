package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range runs {
				snapshot, ok, err := store.GetSnapshot(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, id)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%d episodes\t%s\n", id, snapshot.Board, snapshot.Episodes, snapshot.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	return cmd
}
