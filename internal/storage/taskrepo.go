package storage

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// TaskRepository persists the whole task collection in a single slot key.
// None of its methods return errors: failures are logged and degrade to an
// empty (Load) or unchanged (Save, Clear) stored state.
type TaskRepository struct {
	slot Slot
	key  string
	log  logrus.FieldLogger
}

// NewTaskRepository creates a TaskRepository storing the collection under
// key in slot. log may be nil.
func NewTaskRepository(slot Slot, key string, log logrus.FieldLogger) *TaskRepository {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &TaskRepository{
		slot: slot,
		key:  key,
		log:  log.WithField("slot_key", key),
	}
}

// Key returns the slot key holding the collection.
func (r *TaskRepository) Key() string {
	return r.key
}

// Load reads and decodes the stored collection. An absent slot yields an
// empty collection. Records without a status are migrated in memory only;
// the stored payload keeps its legacy shape until the next Save.
func (r *TaskRepository) Load(ctx context.Context) []models.Task {
	data, found, err := r.slot.Get(ctx, r.key)
	if err != nil {
		r.log.WithError(err).Error("loading tasks: reading slot")
		return []models.Task{}
	}
	if !found || len(data) == 0 {
		return []models.Task{}
	}

	tasks, skipped, err := DecodeTasks(data, FormatJSON)
	if err != nil {
		r.log.WithError(err).Error("loading tasks: stored payload is corrupt")
		r.preserveCorrupt(ctx, data)
		return []models.Task{}
	}
	for _, rec := range skipped {
		r.log.WithFields(logrus.Fields{
			"index":   rec.Index,
			"task_id": rec.ID,
		}).WithError(rec.Err).Warn("loading tasks: skipping unreadable record")
	}

	seen := make(map[string]struct{}, len(tasks))
	unique := tasks[:0]
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			r.log.WithField("task_id", t.ID).Warn("loading tasks: dropping duplicate id")
			continue
		}
		seen[t.ID] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}

// preserveCorrupt copies an undecodable payload to <key>.corrupt so the next
// Save does not destroy the only copy.
func (r *TaskRepository) preserveCorrupt(ctx context.Context, data []byte) {
	if err := r.slot.Put(ctx, r.key+".corrupt", data); err != nil {
		r.log.WithError(err).Error("loading tasks: preserving corrupt payload")
	}
}

// Save replaces the stored collection with tasks.
func (r *TaskRepository) Save(ctx context.Context, tasks []models.Task) {
	data, err := EncodeTasks(tasks, FormatJSON)
	if err != nil {
		r.log.WithError(err).Error("saving tasks: encoding")
		return
	}
	if err := r.slot.Put(ctx, r.key, data); err != nil {
		r.log.WithError(err).WithField("task_count", len(tasks)).Error("saving tasks: writing slot")
	}
}

// Clear removes the stored collection.
func (r *TaskRepository) Clear(ctx context.Context) {
	if err := r.slot.Remove(ctx, r.key); err != nil {
		r.log.WithError(err).Error("clearing tasks: removing slot")
	}
}
