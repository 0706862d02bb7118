package core

import (
	"strings"
	"time"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

// FilterTasks returns the tasks matching the filter, evaluated at the given
// reference time. Pure projection over the collection; all criteria use AND
// logic.
//
// Status filtering carries the rework special cases: the revision filter
// also matches tasks currently in another status but flagged as having been
// revised (unless completed); the completed filter always matches completed
// tasks regardless of that flag; any other status filter excludes
// previously-revised tasks that have moved on to a different status, so a
// reworked item only shows under revision or its actual current state.
func FilterTasks(tasks []models.Task, filter models.TaskFilter, now time.Time) []models.Task {
	var result []models.Task
	for _, task := range tasks {
		if matchesFilter(task, filter, now) {
			result = append(result, task)
		}
	}
	return result
}

func matchesFilter(task models.Task, filter models.TaskFilter, now time.Time) bool {
	if filter.Status != "" && !matchesStatus(task, filter.Status) {
		return false
	}
	if filter.Priority != "" && task.Priority != filter.Priority {
		return false
	}
	if !matchesTimeRange(task, filter.TimeRange, now) {
		return false
	}
	if filter.Search != "" && !matchesSearch(task, filter.Search) {
		return false
	}
	return true
}

func matchesStatus(task models.Task, status models.TaskStatus) bool {
	switch status {
	case models.StatusRevision:
		if task.Status == models.StatusRevision {
			return true
		}
		return task.HasBeenRevised && task.Status != models.StatusCompleted
	case models.StatusCompleted:
		return task.Status == models.StatusCompleted
	default:
		if task.HasBeenRevised && task.Status != status && task.Status != models.StatusCompleted {
			return false
		}
		return task.Status == status
	}
}

// matchesTimeRange keeps tasks whose deadline falls inside a rolling window
// ending at now.
func matchesTimeRange(task models.Task, tr models.TimeRange, now time.Time) bool {
	if tr == "" || tr == models.RangeAll {
		return true
	}
	if task.Deadline.IsZero() {
		return false
	}

	var start time.Time
	switch tr {
	case models.RangeWeek:
		start = now.AddDate(0, 0, -7)
	case models.RangeMonth:
		start = now.AddDate(0, -1, 0)
	case models.RangeQuarter:
		start = now.AddDate(0, -3, 0)
	case models.RangeYear:
		start = now.AddDate(-1, 0, 0)
	default:
		return true
	}

	return !task.Deadline.Before(start) && !task.Deadline.After(now)
}

// matchesSearch does a case-insensitive substring match across the id and
// the spec fields.
func matchesSearch(task models.Task, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(task.ID), q) ||
		strings.Contains(strings.ToLower(task.Specs.Color), q) ||
		strings.Contains(strings.ToLower(task.Specs.Size), q) ||
		strings.Contains(strings.ToLower(task.Specs.Other), q)
}

// UpcomingDeadlines returns the tasks whose deadline falls within
// warningDays of now and whose status is not completed. Tasks already past
// their deadline are not included; overdue handling is a display concern.
func UpcomingDeadlines(tasks []models.Task, warningDays int, now time.Time) []models.Task {
	cutoff := now.AddDate(0, 0, warningDays)

	var result []models.Task
	for _, task := range tasks {
		if task.Status == models.StatusCompleted || task.Deadline.IsZero() {
			continue
		}
		if task.Deadline.After(now) && !task.Deadline.After(cutoff) {
			result = append(result, task)
		}
	}
	return result
}
