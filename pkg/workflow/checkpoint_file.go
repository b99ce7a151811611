package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
)

// FileCheckpointStore persists one JSON file per ticket under a root
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written checkpoint behind.
type FileCheckpointStore struct {
	root string
}

var _ CheckpointStore = &FileCheckpointStore{}

func NewFileCheckpointStore(root string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileCheckpointStore{root: root}, nil
}

func (s *FileCheckpointStore) filePath(ticketID string) string {
	return path.Join(s.root, ticketID+".json")
}

func (s *FileCheckpointStore) Save(_ context.Context, state *State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.filePath(state.TicketID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath(state.TicketID))
}

func (s *FileCheckpointStore) Load(_ context.Context, ticketID string) (*State, error) {
	raw, err := os.ReadFile(s.filePath(ticketID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *FileCheckpointStore) Delete(_ context.Context, ticketID string) error {
	err := os.Remove(s.filePath(ticketID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileCheckpointStore) List(_ context.Context) ([]string, error) {
	entries, err := fs.Glob(os.DirFS(s.root), "*.json")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, strings.TrimSuffix(entry, ".json"))
	}
	return ids, nil
}
