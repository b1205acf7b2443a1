package board

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zeu5/ladders-rl/core"
)

var ErrUnknownPreset = errors.New("unknown board preset")

func cells(cs ...int) []core.Cell {
	out := make([]core.Cell, len(cs))
	for i, c := range cs {
		out[i] = core.Cell(c)
	}
	return out
}

func shortcuts(pairs ...[2]int) []Shortcut {
	out := make([]Shortcut, len(pairs))
	for i, p := range pairs {
		out[i] = Shortcut{From: core.Cell(p[0]), To: core.Cell(p[1])}
	}
	return out
}

var presets = map[string]Config{
	"extra": {
		Rows:       10,
		Columns:    10,
		Wins:       cells(100),
		Losses:     cells(16, 50, 80, 96),
		Ladders:    shortcuts([2]int{14, 46}, [2]int{21, 77}, [2]int{25, 36}, [2]int{68, 90}, [2]int{84, 100}),
		Chutes:     shortcuts([2]int{38, 18}, [2]int{73, 60}, [2]int{92, 86}),
		WinReward:  100,
		LossReward: -100,
		StepReward: -1,
	},
	"tutorial": {
		Rows:    10,
		Columns: 10,
		Wins:    cells(80, 100),
		Losses:  cells(23, 37, 45, 67, 89),
		Ladders: shortcuts(
			[2]int{8, 25}, [2]int{21, 82}, [2]int{43, 77}, [2]int{50, 91}, [2]int{62, 96}, [2]int{66, 87},
		),
		Chutes: shortcuts(
			[2]int{98, 28}, [2]int{95, 24}, [2]int{92, 51}, [2]int{83, 19}, [2]int{73, 1}, [2]int{64, 36}, [2]int{69, 33},
			[2]int{59, 17}, [2]int{55, 7}, [2]int{52, 11}, [2]int{44, 22}, [2]int{46, 5}, [2]int{48, 9},
		),
		WinReward:  50,
		LossReward: -50,
		StepReward: -1,
	},
	"advanced": {
		Rows:    10,
		Columns: 10,
		Wins:    cells(96),
		Losses:  cells(14, 56, 85),
		Ladders: shortcuts(
			[2]int{6, 26}, [2]int{7, 70}, [2]int{22, 58}, [2]int{60, 80}, [2]int{68, 93}, [2]int{84, 100}, [2]int{47, 65}, [2]int{33, 51},
		),
		Chutes:     shortcuts([2]int{25, 20}, [2]int{30, 13}, [2]int{57, 36}, [2]int{73, 61}),
		WinReward:  100,
		LossReward: -100,
		StepReward: -1,
	},
}

// Preset returns the configuration of a built-in board.
func Preset(name string) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg.Wins = append([]core.Cell(nil), cfg.Wins...)
	cfg.Losses = append([]core.Cell(nil), cfg.Losses...)
	cfg.Ladders = append([]Shortcut(nil), cfg.Ladders...)
	cfg.Chutes = append([]Shortcut(nil), cfg.Chutes...)
	return cfg, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
