package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeu5/ladders-rl/core"
	"github.com/zeu5/ladders-rl/util"
)

const (
	metaFile    = "meta.json"
	tableFile   = "qtable.jsonl"
	historyFile = "history.json"
)

var ErrInvalidRunID = errors.New("invalid run id")

// FileStore keeps one directory per run:
//
//	<root>/<run>/meta.json     snapshot without entries
//	<root>/<run>/qtable.jsonl  one line per state
//	<root>/<run>/history.json
type FileStore struct {
	root string
}

var _ Store = &FileStore{}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.root == "" {
		return errors.New("file store path is required")
	}
	return os.MkdirAll(s.root, 0755)
}

func (s *FileStore) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || filepath.Base(runID) != runID {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.root, runID), nil
}

func (s *FileStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	dir, err := s.runDir(snapshot.RunID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	meta := snapshot
	meta.Entries = nil
	if err := util.SaveJson(filepath.Join(dir, metaFile), meta); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, tableFile), EncodeTableLines(snapshot.Entries), 0644)
}

func (s *FileStore) GetSnapshot(_ context.Context, runID string) (Snapshot, bool, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return Snapshot{}, false, err
	}
	metaBytes, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	snapshot, err := DecodeJSON(metaBytes)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", runID, err)
	}
	tableBytes, err := os.ReadFile(filepath.Join(dir, tableFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, err
	}
	entries, err := DecodeTableLines(bytes.NewReader(tableBytes))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("decode table %s: %w", runID, err)
	}
	snapshot.Entries = entries
	return snapshot, true, nil
}

func (s *FileStore) SaveHistory(_ context.Context, runID string, history *core.TrainingHistory) error {
	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	return util.SaveJson(filepath.Join(dir, historyFile), history)
}

func (s *FileStore) GetHistory(_ context.Context, runID string) (*core.TrainingHistory, bool, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, false, err
	}
	history := core.NewTrainingHistory()
	if err := util.ReadJson(filepath.Join(dir, historyFile), history); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return history, true, nil
}

func (s *FileStore) ListRuns(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, f := range []string{metaFile, historyFile} {
			if _, err := os.Stat(filepath.Join(s.root, e.Name(), f)); err == nil {
				out = append(out, e.Name())
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) Close() error {
	return nil
}

// ExportSnapshot writes a single snapshot file. The extension picks the
// format: .bin for the binary encoding, .jsonl for bare table lines,
// anything else for JSON.
func ExportSnapshot(path string, snapshot Snapshot) error {
	var (
		payload []byte
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		payload, err = EncodeBinary(snapshot)
	case ".jsonl":
		payload = EncodeTableLines(snapshot.Entries)
	default:
		payload, err = EncodeJSON(snapshot)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0644)
}

func ImportSnapshot(path string) (Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return DecodeBinary(payload)
	case ".jsonl":
		entries, err := DecodeTableLines(bytes.NewReader(payload))
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{
			VersionedRecord: VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
			Entries:         entries,
		}, nil
	default:
		return DecodeJSON(payload)
	}
}
