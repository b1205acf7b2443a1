package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const EnvPrefix = "LADDERS_"

// LoadEnv loads the given .env files (".env" when none are given) if they
// exist and applies LADDERS_* variables over f. Variables already set in the
// process environment win over the files.
func LoadEnv(f *Flags, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading env file: %w", err)
	}

	strs := map[string]*string{
		"AGENT":      &f.Agent,
		"BOARD":      &f.Board,
		"LAYOUT":     &f.LayoutFile,
		"SAVE_PATH":  &f.SavePath,
		"STORE":      &f.Store,
		"STORE_PATH": &f.StorePath,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"ROWS":        &f.Rows,
		"COLUMNS":     &f.Columns,
		"RUNS":        &f.NumRuns,
		"EPISODES":    &f.Episodes,
		"CYCLES":      &f.Cycles,
		"MAX_STEPS":   &f.MaxSteps,
		"PARALLELISM": &f.Parallelism,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"ALPHA":       &f.Alpha,
		"GAMMA":       &f.Gamma,
		"EPSILON":     &f.Epsilon,
		"WIN_REWARD":  &f.WinReward,
		"LOSS_REWARD": &f.LossReward,
		"STEP_REWARD": &f.StepReward,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = x
	}

	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		f.Seed = seed
	}
	if v, ok := os.LookupEnv(EnvPrefix + "COLOR"); ok {
		color, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOLOR: %w", EnvPrefix, err)
		}
		f.Color = color
	}
	return nil
}
