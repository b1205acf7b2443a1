package util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestParallelOutput(t *testing.T) {
	out := NewParallelOutput()
	assert.Equal(t, "", out.Get())

	out.Set("first")
	assert.Equal(t, "first", out.Get())

	n, err := fmt.Fprintf(out, "episode 1\nepisode 2\n")
	require.NoError(t, err)
	assert.Equal(t, len("episode 1\nepisode 2\n"), n)
	assert.Equal(t, "episode 2", out.Get())
}

func TestTerminalPrinter(t *testing.T) {
	buf := &syncBuffer{}
	printer := NewTerminalPrinter(buf, 5*time.Millisecond)
	first := printer.NewOutput()
	second := printer.NewOutput()

	printer.Start(context.Background())
	first.Set("run 0 done")
	second.Set("run 1 done")
	printer.Stop()
	printer.Stop()

	assert.Contains(t, buf.String(), "run 0 done")
	assert.Contains(t, buf.String(), "run 1 done")
}

func TestTerminalPrinterStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	printer := NewTerminalPrinter(&syncBuffer{}, 0)
	printer.NewOutput().Set("x")
	printer.Start(ctx)
	cancel()
	printer.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	printer := NewTerminalPrinter(&syncBuffer{}, time.Millisecond)
	printer.NewOutput()
	printer.Stop()
}

func TestMisc(t *testing.T) {
	assert.Equal(t, 0.0, ClampFloat(-1, 0, 1))
	assert.Equal(t, 1.0, ClampFloat(3, 0, 1))
	assert.Equal(t, 0.5, ClampFloat(0.5, 0, 1))

	floats := []float64{1, 2}
	copied := CopyFloatSlice(floats)
	copied[0] = 5
	assert.Equal(t, 1.0, floats[0])

	ints := []int{1, 2}
	copiedInts := CopyIntSlice(ints)
	copiedInts[1] = 7
	assert.Equal(t, []int{1, 2}, ints)
}

func TestJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, SaveJson(path, in))

	out := make(map[string]int)
	require.NoError(t, ReadJson(path, &out))
	assert.Equal(t, in, out)

	err := ReadJson(filepath.Join(t.TempDir(), "missing.json"), &out)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	assert.Error(t, ReadJson(bad, &out))
}
