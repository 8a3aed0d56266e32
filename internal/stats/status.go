package stats

import (
	"time"

	"pulse-mcp/internal/tracker"
)

// StatusClass is the outcome of classifying a raw task status.
type StatusClass struct {
	Completed bool
	Late      bool
}

// ClassifyRaw classifies a free-text status and due date as received from
// the backend. An empty status is treated as "not completed"; an empty or
// unparseable due date never yields late.
func ClassifyRaw(rawStatus, rawDueDate string, now time.Time) StatusClass {
	completed := IsCompleted(tracker.ParseStatus(rawStatus))
	if completed || rawDueDate == "" {
		return StatusClass{Completed: completed}
	}
	due, err := tracker.ParseTime(rawDueDate)
	if err != nil {
		return StatusClass{}
	}
	return StatusClass{Late: due.Before(now)}
}

// IsCompleted reports whether a status counts as finished work.
func IsCompleted(s tracker.Status) bool {
	return s.IsTerminal()
}

// IsTaskLate reports whether a task is incomplete and past its due date.
func IsTaskLate(t tracker.Task, now time.Time) bool {
	if IsCompleted(t.Status) || t.DueDate == nil || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(now)
}
