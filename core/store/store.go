package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunRecord is the persisted summary of one reconciliation batch run.
type RunRecord struct {
	ID         string    `gorm:"primaryKey;size:36"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time
	InputPath  string
	OutputPath string
	RowCount   int
	Unmatched  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name.
func (RunRecord) TableName() string {
	return "runs"
}

// RowRecord is one reconciled mismatch row inside a run.
type RowRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"size:36;index;not null"`
	ETOF      string `gorm:"column:etof;index"`
	Agreement string
	CostType  string
	RateBy    string
	AppliesIf string
	Reason    string
	CreatedAt time.Time
}

// TableName overrides the default table name.
func (RowRecord) TableName() string {
	return "run_rows"
}

// Store persists batch runs and their per-row results.
type Store struct {
	db *gorm.DB
}

// New creates a Store and migrates its schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RunRecord{}, &RowRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Begin records the start of a batch run and returns its record.
func (s *Store) Begin(ctx context.Context, inputPath string) (*RunRecord, error) {
	run := &RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		InputPath: inputPath,
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	return run, nil
}

// Finish updates a run with its outcome and stores the per-row results.
func (s *Store) Finish(ctx context.Context, run *RunRecord, outputPath string, rows []RowRecord) error {
	run.FinishedAt = time.Now()
	run.OutputPath = outputPath
	run.RowCount = len(rows)

	for i := range rows {
		rows[i].RunID = run.ID
		if rows[i].RateBy == "" && rows[i].AppliesIf == "" {
			run.Unmatched++
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(run).Error; err != nil {
			return fmt.Errorf("failed to update run record: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("failed to store run rows: %w", err)
		}

		return nil
	})
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []RunRecord
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// Rows returns the stored results of one run.
func (s *Store) Rows(ctx context.Context, runID string) ([]RowRecord, error) {
	var rows []RowRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load run rows: %w", err)
	}

	return rows, nil
}
