package stats

// BuildCharts reshapes per-project metrics for bar, pie and radar charts.
func BuildCharts(metrics []PerformanceMetrics) Charts {
	charts := Charts{
		Performance: make([]ProjectChartPoint, 0, len(metrics)),
		Radar:       make([]RadarSeries, 0, len(metrics)),
	}

	for _, m := range metrics {
		charts.Performance = append(charts.Performance, ProjectChartPoint{
			ProjectID:      m.ProjectID,
			Name:           m.Name,
			Completion:     m.CompletionRate,
			Efficiency:     m.TimeEfficiency,
			Risk:           m.RiskLevel,
			TaskCount:      m.TaskCount,
			CompletedTasks: m.CompletedTaskCount,
			LateTasks:      m.LateTaskCount,
		})
		charts.Radar = append(charts.Radar, RadarSeries{
			Name:        m.Name,
			Completion:  m.CompletionRate,
			Efficiency:  m.TimeEfficiency,
			Safety:      100 - m.RiskLevel,
			Utilization: m.ResourceUtilization,
		})

		switch m.Status {
		case ClassCompleted:
			charts.StatusDistribution.Completed++
		case ClassAtRisk:
			charts.StatusDistribution.AtRisk++
		case ClassDelayed:
			charts.StatusDistribution.Delayed++
		default:
			charts.StatusDistribution.InProgress++
		}
	}
	return charts
}
