package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckpointRecord is the gorm model backing PostgresCheckpointStore. The
// full state is stored as a JSON column; the indexed columns exist for
// operator queries only.
type CheckpointRecord struct {
	TicketID    string         `gorm:"primaryKey;column:ticket_id"`
	Status      string         `gorm:"column:status;index"`
	CurrentStep string         `gorm:"column:current_step"`
	State       datatypes.JSON `gorm:"column:state"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (CheckpointRecord) TableName() string {
	return "workflow_checkpoints"
}

// PostgresCheckpointStore is the production checkpoint backend.
type PostgresCheckpointStore struct {
	db *gorm.DB
}

var _ CheckpointStore = &PostgresCheckpointStore{}

func NewPostgresCheckpointStore(db *gorm.DB) (*PostgresCheckpointStore, error) {
	if err := db.AutoMigrate(&CheckpointRecord{}); err != nil {
		return nil, err
	}
	return &PostgresCheckpointStore{db: db}, nil
}

func (s *PostgresCheckpointStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	record := CheckpointRecord{
		TicketID:    state.TicketID,
		Status:      state.Status,
		CurrentStep: state.CurrentStep,
		State:       datatypes.JSON(raw),
		UpdatedAt:   time.Now().UTC(),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticket_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "current_step", "state", "updated_at"}),
	}).Create(&record).Error
}

func (s *PostgresCheckpointStore) Load(ctx context.Context, ticketID string) (*State, error) {
	var record CheckpointRecord
	err := s.db.WithContext(ctx).First(&record, "ticket_id = ?", ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(record.State, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *PostgresCheckpointStore) Delete(ctx context.Context, ticketID string) error {
	return s.db.WithContext(ctx).Delete(&CheckpointRecord{}, "ticket_id = ?", ticketID).Error
}

func (s *PostgresCheckpointStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&CheckpointRecord{}).Pluck("ticket_id", &ids).Error
	return ids, err
}
