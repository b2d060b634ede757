package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"pgregory.net/rapid"
)

func taskGenerator() *rapid.Generator[models.Task] {
	return rapid.Custom(func(t *rapid.T) models.Task {
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		created := base.Add(time.Duration(rapid.Int64Range(0, 5*365*24*3600).Draw(t, "createdSec")) * time.Second).
			Add(time.Duration(rapid.IntRange(0, 999999999).Draw(t, "createdNanos")))
		updated := created.Add(time.Duration(rapid.Int64Range(0, 1e15).Draw(t, "updatedDelta")))
		deadline := base.Add(time.Duration(rapid.Int64Range(-1e17, 1e17).Draw(t, "deadlineNanos")))

		// Deadlines may carry any zone; they round-trip as the same instant.
		zone := time.FixedZone("z", rapid.IntRange(-12, 14).Draw(t, "zoneHours")*3600)
		return models.Task{
			ID:          rapid.StringMatching(`[a-f0-9]{8}-[a-f0-9]{4}`).Draw(t, "id"),
			Title:       rapid.StringMatching(`[\p{L}\p{N} .,!?'"#:-]{0,30}`).Draw(t, "title"),
			Description: rapid.StringMatching(`[\p{L}\p{N} .,!?'"#:-]{0,60}`).Draw(t, "description"),
			Deadline:    deadline.In(zone),
			Completed:   rapid.Bool().Draw(t, "completed"),
			Status:      rapid.SampledFrom(models.Statuses).Draw(t, "status"),
			CreatedAt:   created,
			UpdatedAt:   updated,
		}
	})
}

func sameTask(a, b models.Task) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Deadline.Equal(b.Deadline) &&
		a.Completed == b.Completed &&
		a.Status == b.Status &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

// Feature: taskboard, Property 7: Codec Round-Trip
// For any collection of tasks, decoding the encoding SHALL yield the same
// tasks with the same instants, in both JSON and YAML.
func TestProperty_CodecRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGenerator(), 0, 10).Draw(rt, "tasks")
		format := rapid.SampledFrom([]Format{FormatJSON, FormatYAML}).Draw(rt, "format")

		data, err := EncodeTasks(tasks, format)
		if err != nil {
			rt.Fatalf("EncodeTasks: %v", err)
		}
		got, skipped, err := DecodeTasks(data, format)
		if err != nil {
			rt.Fatalf("DecodeTasks: %v", err)
		}
		if len(skipped) != 0 {
			rt.Fatalf("unexpected skipped records: %v", skipped)
		}
		if len(got) != len(tasks) {
			rt.Fatalf("decoded %d tasks, want %d", len(got), len(tasks))
		}
		for i := range tasks {
			if !sameTask(got[i], tasks[i]) {
				rt.Fatalf("task %d:\n got  %+v\n want %+v", i, got[i], tasks[i])
			}
		}
	})
}

func TestEncodeTasks_StoredShape(t *testing.T) {
	ts := time.Date(2025, 3, 11, 14, 30, 0, 123000000, time.FixedZone("x", 3600))
	data, err := EncodeTasks([]models.Task{{
		ID:        "abc",
		Title:     "Pay bills",
		Deadline:  ts,
		Status:    models.StatusInProgress,
		CreatedAt: ts,
		UpdatedAt: ts,
	}}, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(data)
	for _, want := range []string{
		`"id":"abc"`,
		`"title":"Pay bills"`,
		`"description":""`,
		`"deadline":"2025-03-11T13:30:00.123Z"`,
		`"completed":false`,
		`"status":"inProgress"`,
		`"createdAt":"2025-03-11T13:30:00.123Z"`,
		`"updatedAt":"2025-03-11T13:30:00.123Z"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded JSON missing %s: %s", want, s)
		}
	}
}

func TestEncodeTasks_EmptyIsArray(t *testing.T) {
	data, err := EncodeTasks(nil, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeTasks(nil) = %s, want []", data)
	}
}

func TestDecodeTasks_StatusMigration(t *testing.T) {
	payload := `[
		{"id":"1","title":"done","deadline":"2025-01-01T00:00:00Z","completed":true,"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"},
		{"id":"2","title":"open","deadline":"2025-01-01T00:00:00Z","completed":false,"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"},
		{"id":"3","title":"weird","deadline":"2025-01-01T00:00:00Z","completed":true,"status":"archived","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"},
		{"id":"4","title":"kept","deadline":"2025-01-01T00:00:00Z","completed":true,"status":"todo","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}
	]`
	tasks, skipped, err := DecodeTasks([]byte(payload), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped: %v", skipped)
	}

	want := map[string]models.TaskStatus{
		"1": models.StatusDone,
		"2": models.StatusTodo,
		"3": models.StatusDone,
		"4": models.StatusTodo,
	}
	for _, task := range tasks {
		if task.Status != want[task.ID] {
			t.Errorf("task %s: status %s, want %s", task.ID, task.Status, want[task.ID])
		}
	}
}

func TestDecodeTasks_SkipsUnreadableRecords(t *testing.T) {
	payload := `[
		{"id":"ok","title":"a","deadline":"2025-01-01","createdAt":"2025-01-01T00:00:00Z"},
		{"id":"bad-deadline","title":"b","deadline":"soon","createdAt":"2025-01-01T00:00:00Z"},
		{"id":"bad-created","title":"c","deadline":"2025-01-01","createdAt":""},
		{"title":"no id","deadline":"2025-01-01","createdAt":"2025-01-01T00:00:00Z"}
	]`
	tasks, skipped, err := DecodeTasks([]byte(payload), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "ok" {
		t.Fatalf("expected only task ok, got %+v", tasks)
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped records, got %d: %v", len(skipped), skipped)
	}
	if skipped[0].Index != 1 || skipped[0].ID != "bad-deadline" {
		t.Errorf("first skipped = %+v", skipped[0])
	}

	// A missing updatedAt falls back to createdAt; a bare date is UTC midnight.
	ok := tasks[0]
	if !ok.UpdatedAt.Equal(ok.CreatedAt) {
		t.Errorf("updatedAt %v, want createdAt %v", ok.UpdatedAt, ok.CreatedAt)
	}
	if want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC); !ok.Deadline.Equal(want) {
		t.Errorf("deadline %v, want %v", ok.Deadline, want)
	}
}

func TestDecodeTasks_UpdatedAtBeforeCreatedAt(t *testing.T) {
	payload := `[{"id":"1","title":"a","deadline":"2025-01-01T00:00:00Z","createdAt":"2025-02-01T00:00:00Z","updatedAt":"2025-01-15T00:00:00Z"}]`
	tasks, _, err := DecodeTasks([]byte(payload), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tasks[0].UpdatedAt.Equal(tasks[0].CreatedAt) {
		t.Errorf("updatedAt %v not clamped to createdAt %v", tasks[0].UpdatedAt, tasks[0].CreatedAt)
	}
}

func TestDecodeTasks_NotAList(t *testing.T) {
	for _, payload := range []string{`{"id":"1"}`, `not json`, `"string"`} {
		if _, _, err := DecodeTasks([]byte(payload), FormatJSON); err == nil {
			t.Errorf("DecodeTasks(%s) expected error", payload)
		}
	}
}

func TestDecodeTasks_YAML(t *testing.T) {
	payload := `
- id: "1"
  title: Pay bills
  deadline: "2025-03-11T00:00:00Z"
  completed: false
  status: inProgress
  createdAt: "2025-03-01T08:00:00Z"
  updatedAt: "2025-03-02T08:00:00Z"
`
	tasks, skipped, err := DecodeTasks([]byte(payload), FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 || len(tasks) != 1 {
		t.Fatalf("got tasks %+v skipped %v", tasks, skipped)
	}
	if tasks[0].Title != "Pay bills" || tasks[0].Status != models.StatusInProgress {
		t.Errorf("unexpected task %+v", tasks[0])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
