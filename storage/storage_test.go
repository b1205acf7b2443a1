package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ladders-rl/core"
	"google.golang.org/protobuf/encoding/protowire"
)

func sampleTable() map[core.QKey]float64 {
	return map[core.QKey]float64{
		{State: 1, Action: core.Decrement}:  -1.5,
		{State: 1, Action: core.Increment}:  2.25,
		{State: 5, Action: core.Auto}:       0.4,
		{State: 12, Action: core.Increment}: -0.125,
	}
}

func sampleSnapshot(runID string) Snapshot {
	s := NewSnapshot(runID, "extra", sampleTable())
	s.Alpha = 0.1
	s.Gamma = 0.9
	s.Epsilon0 = 0.5
	s.Episodes = 200
	return s
}

func sampleHistory() *core.TrainingHistory {
	h := core.NewTrainingHistory()
	h.Append(core.HistoryRecord{Episode: 1, Reward: -12, Steps: 13, Epsilon: 0.5, Outcome: core.OutcomeLost, MaxQ: map[core.Cell]float64{1: 0.5}})
	h.Append(core.HistoryRecord{Episode: 2, Reward: 91, Steps: 10, Epsilon: 0.25, Outcome: core.OutcomeWon, MaxQ: map[core.Cell]float64{1: 1.5, 5: 0.4}})
	return h
}

func assertSameSnapshot(t *testing.T, want, got Snapshot) {
	t.Helper()
	assert.Equal(t, want.VersionedRecord, got.VersionedRecord)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Board, got.Board)
	assert.Equal(t, want.Alpha, got.Alpha)
	assert.Equal(t, want.Gamma, got.Gamma)
	assert.Equal(t, want.Epsilon0, got.Epsilon0)
	assert.Equal(t, want.Episodes, got.Episodes)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created at %v != %v", want.CreatedAt, got.CreatedAt)
	assert.Equal(t, want.Entries, got.Entries)
}

func TestSnapshotTable(t *testing.T) {
	s := NewSnapshot("run", "extra", sampleTable())
	require.Len(t, s.Entries, 4)
	assert.Equal(t, Entry{State: 1, Action: "-1", Value: -1.5}, s.Entries[0])
	assert.Equal(t, Entry{State: 1, Action: "+1", Value: 2.25}, s.Entries[1])
	assert.Equal(t, Entry{State: 5, Action: "auto", Value: 0.4}, s.Entries[2])
	assert.NotEmpty(t, s.ID)

	table, err := s.Table()
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), table)

	s.Entries = append(s.Entries, Entry{State: 3, Action: "sideways"})
	_, err = s.Table()
	assert.ErrorIs(t, err, core.ErrUnknownAction)
}

func TestCodecs(t *testing.T) {
	s := sampleSnapshot("run-1")

	t.Run("json", func(t *testing.T) {
		payload, err := EncodeJSON(s)
		require.NoError(t, err)
		got, err := DecodeJSON(payload)
		require.NoError(t, err)
		assertSameSnapshot(t, s, got)
	})

	t.Run("binary", func(t *testing.T) {
		payload, err := EncodeBinary(s)
		require.NoError(t, err)
		got, err := DecodeBinary(payload)
		require.NoError(t, err)
		assertSameSnapshot(t, s, got)
	})

	t.Run("binary skips unknown fields", func(t *testing.T) {
		payload, err := EncodeBinary(s)
		require.NoError(t, err)
		payload = protowire.AppendTag(payload, 99, protowire.BytesType)
		payload = protowire.AppendString(payload, "future")
		got, err := DecodeBinary(payload)
		require.NoError(t, err)
		assertSameSnapshot(t, s, got)
	})

	t.Run("binary rejects truncated input", func(t *testing.T) {
		payload, err := EncodeBinary(s)
		require.NoError(t, err)
		_, err = DecodeBinary(payload[:len(payload)-3])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("version mismatch", func(t *testing.T) {
		old := s
		old.SchemaVersion = CurrentSchemaVersion + 1
		payload, err := EncodeJSON(old)
		require.NoError(t, err)
		_, err = DecodeJSON(payload)
		assert.ErrorIs(t, err, ErrVersionMismatch)

		payload, err = EncodeBinary(old)
		require.NoError(t, err)
		_, err = DecodeBinary(payload)
		assert.ErrorIs(t, err, ErrVersionMismatch)
	})

	t.Run("history", func(t *testing.T) {
		payload, err := EncodeHistory(sampleHistory())
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"outcome":"won"`)
		got, err := DecodeHistory(payload)
		require.NoError(t, err)
		assert.Equal(t, sampleHistory(), got)
	})
}

func TestTableLines(t *testing.T) {
	s := sampleSnapshot("run-1")
	payload := EncodeTableLines(s.Entries)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"state":"1","entries":{"+1":2.25,"-1":-1.5}}`, lines[0])

	got, err := DecodeTableLines(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, s.Entries, got)

	t.Run("blank lines", func(t *testing.T) {
		got, err := DecodeTableLines(strings.NewReader("\n" + string(payload) + "\n\n"))
		require.NoError(t, err)
		assert.Equal(t, s.Entries, got)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := DecodeTableLines(strings.NewReader(`{"state":"3","entries":{"jump":1}}`))
		assert.ErrorIs(t, err, core.ErrUnknownAction)
	})

	t.Run("bad state", func(t *testing.T) {
		_, err := DecodeTableLines(strings.NewReader(`{"state":"x","entries":{}}`))
		assert.Error(t, err)
	})
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	_, ok, err := store.GetSnapshot(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetHistory(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	s := sampleSnapshot("run-b")
	require.NoError(t, store.SaveSnapshot(ctx, s))
	got, ok, err := store.GetSnapshot(ctx, s.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameSnapshot(t, s, got)

	// saving again replaces
	s.Episodes = 400
	require.NoError(t, store.SaveSnapshot(ctx, s))
	got, ok, err = store.GetSnapshot(ctx, s.RunID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 400, got.Episodes)

	require.NoError(t, store.SaveHistory(ctx, "run-a", sampleHistory()))
	history, ok, err := store.GetHistory(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleHistory(), history)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, runs)
}

func TestStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		exerciseStore(t, NewMemoryStore())
	})
	t.Run("file", func(t *testing.T) {
		exerciseStore(t, NewFileStore(t.TempDir()))
	})
	t.Run("sqlite", func(t *testing.T) {
		exerciseStore(t, NewSQLiteStore(filepath.Join(t.TempDir(), "ladders.db")))
	})
}

func TestNewStore(t *testing.T) {
	for _, kind := range []string{"", "file", "memory", "sqlite"} {
		store, err := NewStore(kind, filepath.Join(t.TempDir(), "store"))
		require.NoError(t, err, kind)
		assert.NotNil(t, store)
	}
	_, err := NewStore("redis", "")
	assert.Error(t, err)
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "ladders.db"))
	err := store.SaveSnapshot(context.Background(), sampleSnapshot("run"))
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestFileStoreRejectsPathRunIDs(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Init(context.Background()))
	s := sampleSnapshot("../escape")
	assert.ErrorIs(t, store.SaveSnapshot(context.Background(), s), ErrInvalidRunID)
	_, _, err := store.GetHistory(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRunID)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	s := sampleSnapshot("run-1")

	for _, name := range []string{"table.json", "table.bin"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, ExportSnapshot(path, s))
			got, err := ImportSnapshot(path)
			require.NoError(t, err)
			assertSameSnapshot(t, s, got)
		})
	}

	t.Run("table.jsonl", func(t *testing.T) {
		path := filepath.Join(dir, "table.jsonl")
		require.NoError(t, ExportSnapshot(path, s))
		got, err := ImportSnapshot(path)
		require.NoError(t, err)
		assert.Equal(t, s.Entries, got.Entries)
		assert.Empty(t, got.RunID)
	})

	_, err := ImportSnapshot(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
