package cmd

import (
	"github.com/spf13/pflag"
	"github.com/zeu5/ladders-rl/common"
)

var flags *common.Flags = common.DefaultFlags()

// AddFlags binds the persistent flags to the current values of flags, so
// environment overrides loaded before this call become the defaults.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flags.SavePath, "save-path", flags.SavePath, "Path to save results")
	fs.StringVar(&flags.Board, "board", flags.Board, "Preset board name")
	fs.StringVar(&flags.LayoutFile, "layout", flags.LayoutFile, "Board layout file, overrides --board")
	fs.IntVar(&flags.Rows, "rows", flags.Rows, "Rows of the layout file board")
	fs.IntVar(&flags.Columns, "columns", flags.Columns, "Columns of the layout file board")
	fs.Float64Var(&flags.WinReward, "win-reward", flags.WinReward, "Reward for entering a win cell, 0 keeps the board's")
	fs.Float64Var(&flags.LossReward, "loss-reward", flags.LossReward, "Reward for entering a loss cell, 0 keeps the board's")
	fs.Float64Var(&flags.StepReward, "step-reward", flags.StepReward, "Reward for every other step, 0 keeps the board's")

	fs.StringVar(&flags.Agent, "agent", flags.Agent, "Agent: qlearning or random")
	fs.Float64Var(&flags.Alpha, "alpha", flags.Alpha, "Learning rate")
	fs.Float64Var(&flags.Gamma, "gamma", flags.Gamma, "Discount factor")
	fs.Float64Var(&flags.Epsilon, "epsilon", flags.Epsilon, "Initial exploration rate")

	fs.IntVar(&flags.NumRuns, "num-runs", flags.NumRuns, "Number of runs")
	fs.IntVar(&flags.Episodes, "episodes", flags.Episodes, "Number of episodes")
	fs.IntVar(&flags.Cycles, "cycles", flags.Cycles, "Epsilon oscillation cycles")
	fs.IntVar(&flags.MaxSteps, "max-steps", flags.MaxSteps, "Step cap per episode, 0 for none")
	fs.Int64Var(&flags.Seed, "seed", flags.Seed, "Random seed")
	fs.IntVar(&flags.Parallelism, "parallelism", flags.Parallelism, "Number of parallel runs")

	fs.StringVar(&flags.Store, "store", flags.Store, "Store backend: file, sqlite or memory")
	fs.StringVar(&flags.StorePath, "store-path", flags.StorePath, "Store location, defaults under save path")
	fs.BoolVar(&flags.Charts, "charts", flags.Charts, "Write HTML charts")
	fs.BoolVar(&flags.Color, "color", flags.Color, "Colored board output")
	fs.BoolVar(&flags.Verbose, "verbose", flags.Verbose, "Write traces of the last episode and of events")
}
