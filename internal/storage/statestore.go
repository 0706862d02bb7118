// Package storage implements the durable local persistence adapter: the
// board state serialized to a single named JSON slot on disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// stateFileName is the single named slot holding the serialized board.
const stateFileName = "board.json"

// DefaultQuotaBytes caps the serialized slot size, mirroring the ~5 MB
// budget of the browser storage the original deployment ran against.
const DefaultQuotaBytes = 5 << 20

// StateStore persists the full board state. Implementations are purely
// synchronous and touch nothing beyond the slot itself.
type StateStore interface {
	Load() (models.BoardState, error)
	Save(state models.BoardState) error
}

// fileStateStore implements StateStore on a JSON file under basePath.
type fileStateStore struct {
	basePath   string
	quotaBytes int
}

// NewStateStore creates a StateStore writing to board.json in the given
// base directory with the default size quota.
func NewStateStore(basePath string) StateStore {
	return NewStateStoreWithQuota(basePath, DefaultQuotaBytes)
}

// NewStateStoreWithQuota creates a StateStore with an explicit size quota
// in bytes. quotaBytes <= 0 disables the quota.
func NewStateStoreWithQuota(basePath string, quotaBytes int) StateStore {
	return &fileStateStore{basePath: basePath, quotaBytes: quotaBytes}
}

func (s *fileStateStore) filePath() string {
	return filepath.Join(s.basePath, stateFileName)
}

// Load reads the slot. A missing file is a first run; corrupt JSON or a
// schema-version mismatch falls back to the default empty state with a
// sentinel error the caller may log. Load never returns an unusable state.
func (s *fileStateStore) Load() (models.BoardState, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultBoardState(), nil
		}
		return models.DefaultBoardState(), fmt.Errorf("loading board state: %w", err)
	}

	var state models.BoardState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.DefaultBoardState(), fmt.Errorf("loading board state: %w: %w", core.ErrMalformedState, err)
	}
	if state.Version != models.StateVersion {
		return models.DefaultBoardState(), fmt.Errorf("loading board state: %w: unsupported version %d", core.ErrMalformedState, state.Version)
	}
	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}
	if state.WarningDays <= 0 {
		state.WarningDays = models.DefaultWarningDays
	}

	return state, nil
}

// Save serializes the state into the slot. The write is atomic (temp file
// then rename) so a failure mid-write leaves the previous slot intact, and
// a payload over the quota fails with the distinct storage-quota error
// before anything is touched.
func (s *fileStateStore) Save(state models.BoardState) error {
	state.Version = models.StateVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("saving board state: marshalling: %w", err)
	}

	if s.quotaBytes > 0 && len(data) > s.quotaBytes {
		return fmt.Errorf("saving board state: %d bytes exceeds %d byte slot: %w",
			len(data), s.quotaBytes, core.ErrStorageQuota)
	}

	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving board state: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.basePath, stateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("saving board state: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("saving board state: writing: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving board state: closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.filePath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving board state: replacing slot: %w", err)
	}
	return nil
}
