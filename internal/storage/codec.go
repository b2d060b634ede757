package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for a task collection.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts user input into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid format %q: must be json or yaml", s)
}

// storedTask is the on-disk shape of a task. Timestamps are kept as strings
// so that a malformed record can be skipped without failing the whole
// collection, and status is optional so records written before the status
// field existed still decode.
type storedTask struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Deadline    string `json:"deadline" yaml:"deadline"`
	Completed   bool   `json:"completed" yaml:"completed"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string `json:"updatedAt" yaml:"updatedAt"`
}

// RecordError describes a stored record that could not be decoded.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (id %q): %v", e.Index, e.ID, e.Err)
}

// FormatTimestamp renders t losslessly as an RFC 3339 UTC string.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses an RFC 3339 timestamp. A bare YYYY-MM-DD date is
// accepted and read as midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}

// EncodeTasks serializes the full collection in the given format.
func EncodeTasks(tasks []models.Task, format Format) ([]byte, error) {
	records := make([]storedTask, len(tasks))
	for i, t := range tasks {
		records[i] = storedTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Deadline:    FormatTimestamp(t.Deadline),
			Completed:   t.Completed,
			Status:      string(t.Status),
			CreatedAt:   FormatTimestamp(t.CreatedAt),
			UpdatedAt:   FormatTimestamp(t.UpdatedAt),
		}
	}

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encoding tasks as yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encoding tasks as json: %w", err)
		}
		return data, nil
	}
}

// DecodeTasks parses a serialized collection. Records that cannot be decoded
// are returned as RecordErrors and left out of the result; a payload that is
// not a list at all is an error.
func DecodeTasks(data []byte, format Format) ([]models.Task, []RecordError, error) {
	var records []storedTask
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, nil, fmt.Errorf("decoding tasks yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, nil, fmt.Errorf("decoding tasks json: %w", err)
		}
	}

	tasks := make([]models.Task, 0, len(records))
	var skipped []RecordError
	for i, rec := range records {
		task, err := rec.toTask()
		if err != nil {
			skipped = append(skipped, RecordError{Index: i, ID: rec.ID, Err: err})
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, skipped, nil
}

// toTask converts a stored record, applying the status migration: a record
// without a recognized status gets done if completed, else todo.
func (rec storedTask) toTask() (models.Task, error) {
	if rec.ID == "" {
		return models.Task{}, fmt.Errorf("missing id")
	}
	deadline, err := ParseTimestamp(rec.Deadline)
	if err != nil {
		return models.Task{}, fmt.Errorf("deadline: %w", err)
	}
	createdAt, err := ParseTimestamp(rec.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := ParseTimestamp(rec.UpdatedAt)
	if err != nil || updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}

	status := models.TaskStatus(rec.Status)
	if !status.Valid() {
		status = models.StatusForCompletion(rec.Completed)
	}

	return models.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Deadline:    deadline,
		Completed:   rec.Completed,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
