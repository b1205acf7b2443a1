// Package experiments wires boards, agents, schedules, analyzers and stores
// together for the command line.
package experiments

import (
	"path/filepath"
	"strings"

	"github.com/zeu5/ladders-rl/board"
	"github.com/zeu5/ladders-rl/common"
)

// BuildBoard returns the board selected by the flags and its name. A layout
// file takes precedence over the preset. Non-zero reward flags override the
// board's own rewards.
func BuildBoard(f *common.Flags) (*board.Board, string, error) {
	var (
		cfg  board.Config
		name string
	)
	if f.LayoutFile != "" {
		layout, err := board.ReadLayout(f.LayoutFile, f.Rows, f.Columns)
		if err != nil {
			return nil, "", err
		}
		cfg = layout.Config(board.Rewards{})
		name = strings.TrimSuffix(filepath.Base(f.LayoutFile), filepath.Ext(f.LayoutFile))
	} else {
		preset, err := board.Preset(f.Board)
		if err != nil {
			return nil, "", err
		}
		cfg = preset
		name = f.Board
	}
	if f.WinReward != 0 {
		cfg.WinReward = f.WinReward
	}
	if f.LossReward != 0 {
		cfg.LossReward = f.LossReward
	}
	if f.StepReward != 0 {
		cfg.StepReward = f.StepReward
	}
	b, err := board.New(cfg)
	if err != nil {
		return nil, "", err
	}
	return b, name, nil
}
