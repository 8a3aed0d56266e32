package stats

import (
	"fmt"
	"time"

	"pulse-mcp/internal/tracker"

	"github.com/rs/zerolog/log"
)

// TasksForProject selects the tasks whose project reference matches id.
func TasksForProject(id string, tasks []tracker.Task) []tracker.Task {
	var out []tracker.Task
	for _, t := range tasks {
		if t.Project.ProjectID() == id {
			out = append(out, t)
		}
	}
	return out
}

// CalculateProjectMetrics derives the performance indicators of a single
// project from the full task collection.
func CalculateProjectMetrics(p tracker.Project, tasks []tracker.Task, now time.Time) PerformanceMetrics {
	return calculate(p, TasksForProject(p.ID, tasks), now)
}

// CalculateAll derives metrics for every project. A project whose
// calculation fails is logged and skipped so one bad record cannot abort
// the batch.
func CalculateAll(projects []tracker.Project, tasks []tracker.Task, now time.Time) []PerformanceMetrics {
	byProject := make(map[string][]tracker.Task)
	for _, t := range tasks {
		if id := t.Project.ProjectID(); id != "" {
			byProject[id] = append(byProject[id], t)
		}
	}

	results := make([]PerformanceMetrics, 0, len(projects))
	for _, p := range projects {
		m, err := safeCalculate(p, byProject[p.ID], now)
		if err != nil {
			log.Error().Err(err).Str("project", p.ID).Msg("Failed to calculate project metrics")
			continue
		}
		results = append(results, m)
	}
	return results
}

func safeCalculate(p tracker.Project, tasks []tracker.Task, now time.Time) (m PerformanceMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while calculating project %q: %v", p.ID, r)
		}
	}()
	return calculate(p, tasks, now), nil
}

func calculate(p tracker.Project, tasks []tracker.Task, now time.Time) PerformanceMetrics {
	m := PerformanceMetrics{
		ProjectID: p.ID,
		Name:      p.Name,
		TaskCount: len(tasks),
		TeamSize:  p.TeamSize(),
	}

	for _, t := range tasks {
		switch {
		case IsCompleted(t.Status):
			m.CompletedTaskCount++
		case IsTaskLate(t, now):
			m.LateTaskCount++
		}
	}

	m.CompletionRate = Percent(m.CompletedTaskCount, m.TaskCount)
	m.RiskLevel = Percent(m.LateTaskCount, m.TaskCount)

	completed := p.Status.IsTerminal()
	if p.StartDate != nil && p.EndDate != nil {
		m.PlannedDuration = max(1, DaysBetween(*p.StartDate, *p.EndDate))
		if completed {
			m.ActualDuration = max(1, DaysBetween(*p.StartDate, *p.EndDate))
		} else {
			m.ActualDuration = max(1, DaysBetween(*p.StartDate, now))
		}

		if completed && m.ActualDuration <= m.PlannedDuration {
			m.TimeEfficiency = 100
		} else {
			m.TimeEfficiency = Percent(m.PlannedDuration, m.ActualDuration)
		}
	}

	m.ResourceUtilization = resourceUtilization(m.TeamSize, m.TaskCount-m.CompletedTaskCount)
	m.Status = classify(completed, m)
	return m
}

// classify buckets a project. Terminal status wins; the efficiency rule
// only applies when the project's schedule is known.
func classify(completed bool, m PerformanceMetrics) Classification {
	switch {
	case completed:
		return ClassCompleted
	case m.RiskLevel > AtRiskThreshold:
		return ClassAtRisk
	case m.PlannedDuration > 0 && m.TimeEfficiency < DelayedThreshold:
		return ClassDelayed
	default:
		return ClassInProgress
	}
}

// resourceUtilization is the share of the team's open-task capacity in use.
func resourceUtilization(teamSize, openTasks int) int {
	if teamSize <= 0 {
		return 0
	}
	return Percent(openTasks, teamSize*TasksPerMemberTarget)
}
