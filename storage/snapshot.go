package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/ladders-rl/core"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Entry struct {
	State  core.Cell `json:"state"`
	Action string    `json:"action"`
	Value  float64   `json:"value"`
}

// Snapshot is a persisted Q-table together with the hyperparameters it was
// trained with.
type Snapshot struct {
	VersionedRecord
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Board     string    `json:"board"`
	Alpha     float64   `json:"alpha"`
	Gamma     float64   `json:"gamma"`
	Epsilon0  float64   `json:"epsilon0"`
	Episodes  int       `json:"episodes"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// NewSnapshot builds a snapshot with entries sorted by state then action.
func NewSnapshot(runID, board string, table map[core.QKey]float64) Snapshot {
	s := Snapshot{
		VersionedRecord: VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              uuid.NewString(),
		RunID:           runID,
		Board:           board,
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	s.SetTable(table)
	return s
}

func (s *Snapshot) SetTable(table map[core.QKey]float64) {
	keys := make([]core.QKey, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].State != keys[j].State {
			return keys[i].State < keys[j].State
		}
		return keys[i].Action < keys[j].Action
	})
	s.Entries = make([]Entry, len(keys))
	for i, k := range keys {
		s.Entries[i] = Entry{State: k.State, Action: k.Action.String(), Value: table[k]}
	}
}

func (s Snapshot) Table() (map[core.QKey]float64, error) {
	out := make(map[core.QKey]float64, len(s.Entries))
	for _, e := range s.Entries {
		a, err := core.ParseAction(e.Action)
		if err != nil {
			return nil, fmt.Errorf("entry for state %d: %w", e.State, err)
		}
		out[core.QKey{State: e.State, Action: a}] = e.Value
	}
	return out, nil
}
