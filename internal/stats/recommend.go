package stats

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

// FallbackRecommendation is returned when no rule applies.
var FallbackRecommendation = Recommendation{
	Type:    RecommendationInfo,
	Title:   "Not enough data",
	Message: "Add more projects and tasks with start, end and due dates to get tailored recommendations.",
}

// GenerateRecommendations evaluates the fixed advisory rules in order.
// The result is never empty.
func GenerateRecommendations(kpis KPISummary, metrics []PerformanceMetrics) (recs []Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recommendation generation failed")
			recs = []Recommendation{FallbackRecommendation}
		}
	}()

	if len(metrics) > 0 {
		if kpis.ProjectsAtRisk > 0 {
			recs = append(recs, Recommendation{
				Type:    RecommendationWarning,
				Title:   "Projects at risk",
				Message: fmt.Sprintf("%d project(s) have more than %d%% of their tasks overdue. Review priorities and reassign resources.", kpis.ProjectsAtRisk, AtRiskThreshold),
			})
		}

		if kpis.AverageTimeEfficiency < EfficiencyAdvisory {
			recs = append(recs, Recommendation{
				Type:    RecommendationWarning,
				Title:   "Schedule slippage",
				Message: fmt.Sprintf("Average time efficiency is %d%%. Revisit estimates and deadlines of the slowest projects.", kpis.AverageTimeEfficiency),
			})
		}

		if best, ok := bestProject(metrics); ok {
			recs = append(recs, Recommendation{
				Type:    RecommendationSuccess,
				Title:   "Top performer",
				Message: fmt.Sprintf("%q leads with %d%% completion and %d%% time efficiency. Reuse its practices on other projects.", best.Name, best.CompletionRate, best.TimeEfficiency),
			})
		}

		if kpis.TotalRisks > 0 {
			recs = append(recs, Recommendation{
				Type:    RecommendationInfo,
				Title:   "Overdue tasks",
				Message: fmt.Sprintf("%d task(s) are past their due date. Follow up with assignees.", kpis.TotalRisks),
			})
		}
	}

	if len(recs) == 0 {
		return []Recommendation{FallbackRecommendation}
	}
	return recs
}

// bestProject ranks by completion plus efficiency, descending; ties are
// broken by name for a stable answer.
func bestProject(metrics []PerformanceMetrics) (PerformanceMetrics, bool) {
	if len(metrics) == 0 {
		return PerformanceMetrics{}, false
	}
	ranked := slices.Clone(metrics)
	slices.SortStableFunc(ranked, func(a, b PerformanceMetrics) int {
		if c := cmp.Compare(b.CompletionRate+b.TimeEfficiency, a.CompletionRate+a.TimeEfficiency); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked[0], true
}
