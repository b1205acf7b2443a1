package storage

import (
	"context"

	"github.com/zeu5/ladders-rl/core"
)

// Store persists trained tables and training histories keyed by run id.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	GetSnapshot(ctx context.Context, runID string) (Snapshot, bool, error)
	SaveHistory(ctx context.Context, runID string, history *core.TrainingHistory) error
	GetHistory(ctx context.Context, runID string) (*core.TrainingHistory, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
	Close() error
}
