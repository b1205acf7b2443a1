package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ladders-rl/common"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	flags = common.DefaultFlags()
	root := RootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestBoardCommand(t *testing.T) {
	out := execute(t, "board", "--board", "tutorial", "--color=false")
	assert.Contains(t, out, "Board: tutorial (10x10)")
	assert.Contains(t, out, " 100")
	assert.Contains(t, out, "Ladders: ")
	assert.Contains(t, out, "Chutes: ")
}

func TestTrainEvalRuns(t *testing.T) {
	dir := t.TempDir()
	shared := []string{"--save-path", dir, "--episodes", "40", "--max-steps", "2000", "--color=false"}

	out := execute(t, append([]string{"train"}, shared...)...)
	assert.Contains(t, out, "Run 0")
	assert.FileExists(t, filepath.Join(dir, "config.json"))

	out = execute(t, append([]string{"runs"}, shared...)...)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	runID := strings.Fields(lines[0])[0]
	assert.Contains(t, lines[0], "extra")

	out = execute(t, append([]string{"eval", runID, "--eval-episodes", "2"}, shared...)...)
	assert.Contains(t, out, "Trajectory")

	for _, name := range []string{"table.jsonl", "table.bin", "table.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "exports", name)
			out := execute(t, append([]string{"export", runID, path}, shared...)...)
			assert.Contains(t, out, "Exported")
			assert.FileExists(t, path)

			out = execute(t, append([]string{"eval", "--table", path}, shared...)...)
			assert.Contains(t, out, "Trajectory")
		})
	}
}

func TestEvalNeedsOneSource(t *testing.T) {
	for _, args := range [][]string{
		{"eval"},
		{"eval", "some-run", "--table", "table.json"},
	} {
		flags = common.DefaultFlags()
		root := RootCommand()
		root.SetOut(new(bytes.Buffer))
		root.SetErr(new(bytes.Buffer))
		root.SetArgs(append(args, "--save-path", t.TempDir()))
		assert.Error(t, root.Execute(), "%v", args)
	}
}

func TestUnknownBoard(t *testing.T) {
	flags = common.DefaultFlags()
	root := RootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"board", "--board", "missing"})
	assert.Error(t, root.Execute())
}
