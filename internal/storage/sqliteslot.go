package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is one row of the slots table.
type slotRecord struct {
	Key       string `gorm:"column:slot_key;primarykey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for slotRecord.
func (slotRecord) TableName() string {
	return "slots"
}

// sqliteSlot stores slots as rows of a local SQLite database.
type sqliteSlot struct {
	db *gorm.DB
}

// NewSQLiteSlot opens (and migrates) the SQLite database at path. Use
// ":memory:" for a throwaway database.
func NewSQLiteSlot(path string) (Slot, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("opening sqlite slot: creating directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite slot: %w", err)
	}
	// ":memory:" databases are per connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("opening sqlite slot: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return newSQLiteSlotFromDB(db)
}

func newSQLiteSlotFromDB(db *gorm.DB) (*sqliteSlot, error) {
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("opening sqlite slot: migrating: %w", err)
	}
	return &sqliteSlot{db: db}, nil
}

func (s *sqliteSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec slotRecord
	if err := s.db.WithContext(ctx).First(&rec, "slot_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return rec.Value, true, nil
}

func (s *sqliteSlot) Put(ctx context.Context, key string, data []byte) error {
	rec := slotRecord{Key: key, Value: data, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (s *sqliteSlot) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&slotRecord{}, "slot_key = ?", key).Error; err != nil {
		return fmt.Errorf("removing slot %s: %w", key, err)
	}
	return nil
}

func (s *sqliteSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("closing sqlite slot: %w", err)
	}
	return sqlDB.Close()
}
