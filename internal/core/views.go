package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ApproachingWindowDays is how many calendar days ahead a deadline counts as
// approaching.
const ApproachingWindowDays = 2

// BoardColumn is one Kanban column and the tasks placed in it.
type BoardColumn struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// GroupByStatus partitions tasks into the three status buckets, keeping the
// source order within each bucket. Every bucket is present, possibly empty.
func GroupByStatus(tasks []models.Task) map[models.TaskStatus][]models.Task {
	groups := make(map[models.TaskStatus][]models.Task, len(models.Statuses))
	for _, s := range models.Statuses {
		groups[s] = []models.Task{}
	}
	for _, t := range tasks {
		if _, ok := groups[t.Status]; ok {
			groups[t.Status] = append(groups[t.Status], t)
		}
	}
	return groups
}

// BoardColumns returns GroupByStatus in board column order.
func BoardColumns(tasks []models.Task) []BoardColumn {
	groups := GroupByStatus(tasks)
	cols := make([]BoardColumn, len(models.Statuses))
	for i, s := range models.Statuses {
		cols[i] = BoardColumn{Status: s, Tasks: groups[s]}
	}
	return cols
}

// FilterTasks returns the tasks matching mode: all of them, only the
// incomplete ones (active) or only the completed ones.
func FilterTasks(tasks []models.Task, mode models.FilterMode) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch mode {
		case models.FilterActive:
			if t.Completed {
				continue
			}
		case models.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// SortTasks returns a sorted copy of tasks: deadline ascending, createdAt
// descending, or title in the collation order of locale. Ties keep their
// source order.
func SortTasks(tasks []models.Task, key models.SortKey, locale language.Tag) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)

	switch key {
	case models.SortByCreatedAt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case models.SortByTitle:
		c := collate.New(locale, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Deadline.Before(out[j].Deadline)
		})
	}
	return out
}

// ClassifyDeadline reports where deadline stands relative to now. The checks
// run in order and the first match wins:
//
//	overdue      deadline is before now
//	today        deadline falls on now's calendar day
//	approaching  deadline is after now and on or before the calendar day
//	             two days from now
//	upcoming     anything later
//
// Calendar days are taken in now's location.
func ClassifyDeadline(deadline, now time.Time) models.DeadlineStatus {
	if deadline.Before(now) {
		return models.DeadlineOverdue
	}
	local := deadline.In(now.Location())
	if sameDay(local, now) {
		return models.DeadlineToday
	}
	limit := endOfDay(now.AddDate(0, 0, ApproachingWindowDays))
	if deadline.After(now) && !local.After(limit) {
		return models.DeadlineApproaching
	}
	return models.DeadlineUpcoming
}

// DeadlineSummary counts the incomplete tasks in each deadline class.
func DeadlineSummary(tasks []models.Task, now time.Time) map[models.DeadlineStatus]int {
	counts := map[models.DeadlineStatus]int{
		models.DeadlineOverdue:     0,
		models.DeadlineToday:       0,
		models.DeadlineApproaching: 0,
		models.DeadlineUpcoming:    0,
	}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		counts[ClassifyDeadline(t.Deadline, now)]++
	}
	return counts
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// ParseDeadline reads a user-supplied deadline: YYYY-MM-DD, RFC 3339,
// "today" or "tomorrow". Bare dates are due at the end of that calendar day
// in now's location.
func ParseDeadline(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return time.Time{}, fmt.Errorf("a deadline is required (YYYY-MM-DD)")
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, now.Location()); err == nil {
		return endOfDay(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q: use YYYY-MM-DD, RFC 3339, today or tomorrow", s)
}
