package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/ladders-rl/common"
	"github.com/zeu5/ladders-rl/storage"
)

func RootCommand() *cobra.Command {
	envErr := common.LoadEnv(flags)
	cmd := &cobra.Command{
		Use:          "ladders",
		Short:        "Q-learning on snakes and ladders boards",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return envErr
		},
	}
	AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		TrainCommand(),
		EvalCommand(),
		BoardCommand(),
		RunsCommand(),
		ExportCommand(),
	)

	return cmd
}

// interruptContext is cancelled on SIGINT or when the returned cancel is
// called.
func interruptContext() (context.Context, context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

func openStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.NewStore(flags.Store, flags.StoreLocation())
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
