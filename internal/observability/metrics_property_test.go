package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var eventTypes = []string{
	"task.created",
	"task.updated",
	"task.completed",
	"task.reopened",
	"task.moved",
	"task.deleted",
	"tasks.cleared",
}

// Feature: taskboard, Property 8: Metrics Match Event Counts
// For any sequence of task events, each counter reported by the
// MetricsCalculator SHALL equal the number of events of its type, and the
// per-status move counts SHALL sum to the number of move events.
func TestProperty_MetricsMatchEventCounts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			rt.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		counts := make(map[string]int)

		for i := 0; i < n; i++ {
			typ := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("type_%d", i))
			event := Event{
				Time:    base.Add(time.Duration(i) * time.Minute),
				Type:    typ,
				TaskID:  fmt.Sprintf("t%d", i),
				Message: typ,
			}
			if typ == "task.moved" {
				to := rapid.SampledFrom([]string{"todo", "inProgress", "done"}).Draw(rt, fmt.Sprintf("to_%d", i))
				event.Data = map[string]any{"to": to}
			}
			if err := el.Write(event); err != nil {
				rt.Fatalf("writing event: %v", err)
			}
			counts[typ]++
		}

		m, err := NewMetricsCalculator(el).Calculate(base)
		if err != nil {
			rt.Fatalf("calculating metrics: %v", err)
		}

		if m.EventCount != n {
			rt.Fatalf("EventCount = %d, want %d", m.EventCount, n)
		}
		checks := map[string]int{
			"task.created":   m.TasksCreated,
			"task.updated":   m.TasksUpdated,
			"task.completed": m.TasksCompleted,
			"task.reopened":  m.TasksReopened,
			"task.deleted":   m.TasksDeleted,
		}
		for typ, got := range checks {
			if got != counts[typ] {
				rt.Fatalf("%s count = %d, want %d", typ, got, counts[typ])
			}
		}
		moves := 0
		for _, c := range m.MovesByStatus {
			moves += c
		}
		if moves != counts["task.moved"] {
			rt.Fatalf("moves = %d, want %d", moves, counts["task.moved"])
		}
	})
}
