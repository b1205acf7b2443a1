package common

import (
	"path"

	"github.com/zeu5/ladders-rl/util"
)

type Flags struct {
	BoardFlags
	AgentFlags
	RunFlags
	SavePath    string
	Parallelism int
	Store       string
	StorePath   string
	Charts      bool
	Color       bool
	Verbose     bool
}

// BoardFlags selects a preset or a layout file. Zero rewards keep the preset
// or board defaults.
type BoardFlags struct {
	Board      string
	LayoutFile string
	Rows       int
	Columns    int
	WinReward  float64
	LossReward float64
	StepReward float64
}

type AgentFlags struct {
	Agent   string
	Alpha   float64
	Gamma   float64
	Epsilon float64
}

type RunFlags struct {
	NumRuns  int
	Episodes int
	Cycles   int
	MaxSteps int
	Seed     int64
}

func DefaultFlags() *Flags {
	return &Flags{
		BoardFlags: BoardFlags{
			Board:   "extra",
			Rows:    10,
			Columns: 10,
		},
		AgentFlags: AgentFlags{
			Agent:   "qlearning",
			Alpha:   0.25,
			Gamma:   0.9,
			Epsilon: 0.25,
		},
		RunFlags: RunFlags{
			NumRuns:  1,
			Episodes: 1000,
			Cycles:   5,
			MaxSteps: 0,
			Seed:     1,
		},
		SavePath:    "results",
		Parallelism: 4,
		Store:       "file",
		StorePath:   "",
		Charts:      false,
		Color:       true,
		Verbose:     false,
	}
}

// StoreLocation is StorePath, or a default under SavePath for the backend.
func (f *Flags) StoreLocation() string {
	if f.StorePath != "" {
		return f.StorePath
	}
	if f.Store == "sqlite" {
		return path.Join(f.SavePath, "ladders.db")
	}
	return path.Join(f.SavePath, "runs")
}

func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
