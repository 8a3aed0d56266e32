package performance

import (
	"time"

	"pulse-mcp/internal/stats"
)

// Source says where the data behind a report came from.
type Source string

const (
	SourceNetwork    Source = "network"
	SourceCache      Source = "cache"
	SourceStaleCache Source = "stale-cache"
	SourceDefault    Source = "default"
)

// Report is the result of a performance request.
type Report struct {
	ID              string                     `json:"id"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
	Source          Source                     `json:"source"`
	DataFetchedAt   *time.Time                 `json:"dataFetchedAt,omitempty"`
	Projects        []stats.PerformanceMetrics `json:"projects"`
	KPIs            stats.KPISummary           `json:"kpis"`
	Charts          stats.Charts               `json:"charts"`
	Recommendations []stats.Recommendation     `json:"recommendations"`
	Warnings        []string                   `json:"warnings,omitempty"`
}

// buildReport runs the analytics pipeline over an already filtered set.
func buildReport(id string, now time.Time, source Source, metrics []stats.PerformanceMetrics) *Report {
	if metrics == nil {
		metrics = []stats.PerformanceMetrics{}
	}
	kpis := stats.AggregateKPIs(metrics)
	return &Report{
		ID:              id,
		GeneratedAt:     now,
		Source:          source,
		Projects:        metrics,
		KPIs:            kpis,
		Charts:          stats.BuildCharts(metrics),
		Recommendations: stats.GenerateRecommendations(kpis, metrics),
	}
}

// defaultReport is the zeroed result served when nothing can be fetched and
// nothing was cached.
func defaultReport(id string, now time.Time) *Report {
	return buildReport(id, now, SourceDefault, nil)
}
