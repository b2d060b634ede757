package storage

import (
	"context"
	"fmt"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// Slot is a durable named key/value slot. Get reports found=false for a key
// that was never written or has been removed. Remove is idempotent.
type Slot interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// OpenSlot opens the slot backend selected by cfg.
func OpenSlot(ctx context.Context, cfg models.StorageConfig) (Slot, error) {
	switch cfg.Backend {
	case models.BackendFile, "":
		return NewFileSlot(cfg.Dir)
	case models.BackendSQLite:
		return NewSQLiteSlot(cfg.SQLitePath)
	case models.BackendRedis:
		return NewRedisSlot(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case models.BackendMemory:
		return NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("opening slot: unknown backend %q", cfg.Backend)
}
