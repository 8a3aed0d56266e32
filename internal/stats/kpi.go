package stats

// AggregateKPIs folds per-project metrics into portfolio indicators.
// An empty input yields a zero summary.
func AggregateKPIs(metrics []PerformanceMetrics) KPISummary {
	summary := KPISummary{TotalProjects: len(metrics)}
	if len(metrics) == 0 {
		return summary
	}

	completion := make([]int, 0, len(metrics))
	efficiency := make([]int, 0, len(metrics))
	for _, m := range metrics {
		completion = append(completion, m.CompletionRate)
		efficiency = append(efficiency, m.TimeEfficiency)

		summary.TotalRisks += m.LateTaskCount
		summary.TotalTasks += m.TaskCount
		summary.CompletedTasks += m.CompletedTaskCount
		if m.Status == ClassAtRisk {
			summary.ProjectsAtRisk++
		}
	}

	summary.AverageCompletionRate = Mean(completion)
	summary.AverageTimeEfficiency = Mean(efficiency)
	summary.MedianCompletionRate = CalculateMedianDiscrete(completion)
	return summary
}
